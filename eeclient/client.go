package eeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"live-ndvi/ee"
)

const (
	// DefaultEndpoint is used unless option.WithEndpoint overrides it.
	DefaultEndpoint = "https://earthengine.googleapis.com/"
	Scope           = "https://www.googleapis.com/auth/earthengine"
	apiVersion      = "v1"
)

// Client talks to Earth Engine on behalf of one cloud project.
type Client struct {
	hc     *http.Client
	base   string
	parent string
	dest   Destination
}

// New connects to Earth Engine. Credentials, endpoint and HTTP client come
// from opts.
func New(ctx context.Context, project string, dest Destination, opts ...option.ClientOption) (*Client, error) {
	if project == "" {
		return nil, eris.New("eeclient: a cloud project is required")
	}
	if err := dest.validate(); err != nil {
		return nil, err
	}
	opts = append([]option.ClientOption{option.WithScopes(Scope)}, opts...)
	hc, endpoint, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "eeclient: create http client")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		hc:     hc,
		base:   strings.TrimSuffix(endpoint, "/") + "/" + apiVersion + "/",
		parent: "projects/" + project,
		dest:   dest,
	}, nil
}

// post sends body to the project-scoped method and decodes the reply into out.
func (c *Client) post(ctx context.Context, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return eris.Wrapf(err, "eeclient: encode %s", method)
	}
	url := c.base + c.parent + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrapf(err, "eeclient: build %s", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return eris.Wrapf(err, "eeclient: %s", method)
	}
	defer googleapi.CloseBody(resp)
	if err := googleapi.CheckResponse(resp); err != nil {
		return eris.Wrapf(err, "eeclient: %s", method)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "eeclient: decode %s reply", method)
	}
	return nil
}

// ExportTable starts a table export.
func (c *Client) ExportTable(ctx context.Context, export TableExport) (Task, error) {
	req, err := TableRequest(export, c.dest)
	if err != nil {
		return Task{}, err
	}
	logrus.Debugf("Submitting table export %s (%s)", req.Description, req.RequestID)
	var op Operation
	if err := c.post(ctx, "table:export", req, &op); err != nil {
		return Task{}, eris.Wrapf(err, "eeclient: export table %s", export.Description)
	}
	logrus.Infof("Started table export %s as %s", req.Description, op.Name)
	return Task{Description: req.Description, RequestID: req.RequestID, Operation: op.Name}, nil
}

// ExportImage starts an image export.
func (c *Client) ExportImage(ctx context.Context, export ImageExport) (Task, error) {
	req, err := ImageRequest(export, c.dest)
	if err != nil {
		return Task{}, err
	}
	logrus.Debugf("Submitting image export %s (%s)", req.Description, req.RequestID)
	var op Operation
	if err := c.post(ctx, "image:export", req, &op); err != nil {
		return Task{}, eris.Wrapf(err, "eeclient: export image %s", export.Description)
	}
	logrus.Infof("Started image export %s as %s", req.Description, op.Name)
	return Task{Description: req.Description, RequestID: req.RequestID, Operation: op.Name}, nil
}

// Compute evaluates value synchronously and returns the JSON result.
func (c *Client) Compute(ctx context.Context, value ee.Value) (json.RawMessage, error) {
	expr, _, err := Expression(value)
	if err != nil {
		return nil, err
	}
	var resp computeValueResponse
	if err := c.post(ctx, "value:compute", &ComputeValueRequest{Expression: expr}, &resp); err != nil {
		return nil, eris.Wrap(err, "eeclient: compute value")
	}
	if len(resp.Result) == 0 {
		return nil, eris.New("eeclient: compute returned no result")
	}
	return resp.Result, nil
}
