package eeclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"live-ndvi/ee"
)

type recordedCall struct {
	method string
	path   string
	body   map[string]any
}

func newTestClient(t *testing.T, dest Destination, reply func(path string) string) (*Client, *[]recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))

		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply(r.URL.Path))
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), "live-study", dest,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c, &calls
}

func operationReply(string) string {
	return `{"name": "projects/live-study/operations/OP1"}`
}

func TestExportTable(t *testing.T) {
	c, calls := newTestClient(t, Destination{Folder: "LIVE"}, operationReply)

	task, err := c.ExportTable(context.Background(), TableExport{
		Description: "NDVI_S2",
		Collection:  ee.LoadTable("users/someone/villages"),
	})
	require.NoError(t, err)
	assert.Equal(t, "NDVI_S2", task.Description)
	assert.Equal(t, "projects/live-study/operations/OP1", task.Operation)
	assert.NotEmpty(t, task.RequestID)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.True(t, strings.HasSuffix(call.path, "/v1/projects/live-study/table:export"), call.path)
	assert.Equal(t, "NDVI_S2", call.body["description"])
	assert.Equal(t, task.RequestID, call.body["requestId"])

	opts := call.body["fileExportOptions"].(map[string]any)
	assert.Equal(t, "CSV", opts["fileFormat"])
	drive := opts["driveDestination"].(map[string]any)
	assert.Equal(t, "LIVE", drive["folder"])
	assert.Equal(t, "NDVI_S2", drive["filenamePrefix"])
	assert.NotContains(t, opts, "gcsDestination")

	expr := call.body["expression"].(map[string]any)
	assert.NotEmpty(t, expr["result"])
}

func TestExportImageToBucket(t *testing.T) {
	c, calls := newTestClient(t, Destination{Kind: DestinationGCS, Bucket: "live-exports"}, operationReply)

	_, err := c.ExportImage(context.Background(), ImageExport{
		Description: "NDVI_2016",
		Image:       ee.LoadImage("img"),
		Scale:       10,
	})
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.True(t, strings.HasSuffix(call.path, "/v1/projects/live-study/image:export"), call.path)

	opts := call.body["fileExportOptions"].(map[string]any)
	assert.Equal(t, "GEO_TIFF", opts["fileFormat"])
	gcs := opts["gcsDestination"].(map[string]any)
	assert.Equal(t, "live-exports", gcs["bucket"])
	assert.Equal(t, "NDVI_2016", gcs["filenamePrefix"])
	assert.NotContains(t, opts, "driveDestination")

	expr := call.body["expression"].(map[string]any)
	values := expr["values"].(map[string]any)
	root := values[expr["result"].(string)].(map[string]any)
	invocation := root["functionInvocationValue"].(map[string]any)
	assert.Equal(t, "Image.clipToBoundsAndScale", invocation["functionName"])
}

func TestCompute(t *testing.T) {
	c, calls := newTestClient(t, Destination{}, func(string) string {
		return `{"result": {"type": "FeatureCollection", "features": [
			{"type": "Feature", "geometry": null, "properties": {"NDVI": 0.5}}
		]}}`
	})

	out, err := c.Compute(context.Background(), ee.LoadTable("t"))
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []any  `json:"features"`
	}
	require.NoError(t, json.Unmarshal(out, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 1)

	require.Len(t, *calls, 1)
	assert.True(t, strings.HasSuffix((*calls)[0].path, "/v1/projects/live-study/value:compute"))
}

func TestExportTableServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": {"code": 400, "message": "Asset not found"}}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), "live-study", Destination{},
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	_, err = c.ExportTable(context.Background(), TableExport{Description: "Rainfall", Collection: ee.LoadTable("missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rainfall")
	assert.Contains(t, err.Error(), "Asset not found")
}

func TestComputeWithoutResult(t *testing.T) {
	c, _ := newTestClient(t, Destination{}, func(string) string { return `{}` })
	_, err := c.Compute(context.Background(), ee.LoadTable("t"))
	assert.Error(t, err)
}

func TestExportRequestBodyMatchesExpression(t *testing.T) {
	c, calls := newTestClient(t, Destination{}, operationReply)
	collection := ee.LoadTable("users/someone/villages")

	_, err := c.ExportTable(context.Background(), TableExport{Description: "NDVI_S2", Collection: collection})
	require.NoError(t, err)

	want, err := ee.MarshalGraph(collection)
	require.NoError(t, err)
	got, err := json.Marshal((*calls)[0].body["expression"])
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestNewValidates(t *testing.T) {
	_, err := New(context.Background(), "", Destination{}, option.WithoutAuthentication())
	assert.Error(t, err)
	_, err = New(context.Background(), "p", Destination{Kind: DestinationGCS}, option.WithoutAuthentication())
	assert.Error(t, err)
	_, err = New(context.Background(), "p", Destination{Kind: "s3"}, option.WithoutAuthentication())
	assert.Error(t, err)
}
