package eeclient

import (
	"context"
	"encoding/json"
	"sync"

	"live-ndvi/ee"
)

// EmptyFeatureCollection is what a Recorder returns from Compute.
var EmptyFeatureCollection = json.RawMessage(`{"type":"FeatureCollection","features":[]}`)

// Recorder is a Platform that builds every request without sending it.
type Recorder struct {
	Dest Destination

	mu       sync.Mutex
	Tables   []*ExportTableRequest
	Images   []*ExportImageRequest
	Computed []*ee.Expression
}

func (r *Recorder) ExportTable(_ context.Context, export TableExport) (Task, error) {
	req, err := TableRequest(export, r.Dest)
	if err != nil {
		return Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tables = append(r.Tables, req)
	return Task{Description: req.Description, RequestID: req.RequestID}, nil
}

func (r *Recorder) ExportImage(_ context.Context, export ImageExport) (Task, error) {
	req, err := ImageRequest(export, r.Dest)
	if err != nil {
		return Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Images = append(r.Images, req)
	return Task{Description: req.Description, RequestID: req.RequestID}, nil
}

func (r *Recorder) Compute(_ context.Context, value ee.Value) (json.RawMessage, error) {
	expr, _, err := Expression(value)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Computed = append(r.Computed, expr)
	return EmptyFeatureCollection, nil
}
