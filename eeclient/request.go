// Package eeclient submits computation graphs to the Earth Engine REST API.
package eeclient

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"live-ndvi/ee"
)

const (
	FormatCSV     = "CSV"
	FormatGeoTIFF = "GEO_TIFF"

	DestinationDrive = "drive"
	DestinationGCS   = "gcs"
)

// requestNamespace seeds the deterministic request ids.
var requestNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://googleapis.com/live-ndvi"))

// Platform is the part of Earth Engine the pipelines need. Exports are
// fire and forget: the returned Task names the operation but nothing waits
// on it.
type Platform interface {
	ExportTable(ctx context.Context, export TableExport) (Task, error)
	ExportImage(ctx context.Context, export ImageExport) (Task, error)
	Compute(ctx context.Context, value ee.Value) (json.RawMessage, error)
}

// TableExport is a feature collection written out as a file.
type TableExport struct {
	Description string
	Collection  ee.Value
	Format      string
}

// ImageExport is a single image written out at a fixed scale.
type ImageExport struct {
	Description string
	Image       ee.Value
	Scale       float64
	Format      string
}

// Task identifies a submitted export.
type Task struct {
	Description string
	RequestID   string
	Operation   string
}

// Destination is where export files land. Drive is the default; the file
// name prefix is always the export description.
type Destination struct {
	Kind   string
	Folder string
	Bucket string
}

func (d Destination) validate() error {
	switch d.Kind {
	case "", DestinationDrive:
		return nil
	case DestinationGCS:
		if d.Bucket == "" {
			return eris.New("eeclient: gcs destination needs a bucket")
		}
		return nil
	}
	return eris.Errorf("eeclient: unknown destination %q", d.Kind)
}

func (d Destination) drive(prefix string) *DriveDestination {
	if d.Kind != "" && d.Kind != DestinationDrive {
		return nil
	}
	return &DriveDestination{Folder: d.Folder, FilenamePrefix: prefix}
}

func (d Destination) gcs(prefix string) *GcsDestination {
	if d.Kind != DestinationGCS {
		return nil
	}
	return &GcsDestination{Bucket: d.Bucket, FilenamePrefix: prefix}
}

// Expression serializes a graph into its wire form and the JSON bytes the
// request id is derived from.
func Expression(v ee.Value) (*ee.Expression, []byte, error) {
	expr, err := ee.Serialize(v)
	if err != nil {
		return nil, nil, err
	}
	raw, err := json.Marshal(expr)
	if err != nil {
		return nil, nil, eris.Wrap(err, "eeclient: encode expression")
	}
	return expr, raw, nil
}

// RequestID derives an idempotency key from what is being exported, so a
// resubmission of the same export is recognised by the platform.
func RequestID(kind, description string, expression []byte) string {
	name := make([]byte, 0, len(kind)+len(description)+len(expression)+2)
	name = append(name, kind...)
	name = append(name, 0)
	name = append(name, description...)
	name = append(name, 0)
	name = append(name, expression...)
	return uuid.NewSHA1(requestNamespace, name).String()
}

// TableRequest builds the body of a table:export call.
func TableRequest(export TableExport, dest Destination) (*ExportTableRequest, error) {
	if export.Description == "" {
		return nil, eris.New("eeclient: table export needs a description")
	}
	if err := dest.validate(); err != nil {
		return nil, err
	}
	expr, raw, err := Expression(export.Collection)
	if err != nil {
		return nil, eris.Wrapf(err, "eeclient: table export %s", export.Description)
	}
	format := export.Format
	if format == "" {
		format = FormatCSV
	}
	return &ExportTableRequest{
		Description: export.Description,
		Expression:  expr,
		RequestID:   RequestID("table", export.Description, raw),
		FileExportOptions: &TableFileExportOptions{
			FileFormat:       format,
			DriveDestination: dest.drive(export.Description),
			GcsDestination:   dest.gcs(export.Description),
		},
	}, nil
}

// ImageRequest builds the body of an image:export call. The scale is
// applied to the image itself, as the interactive clients do.
func ImageRequest(export ImageExport, dest Destination) (*ExportImageRequest, error) {
	if export.Description == "" {
		return nil, eris.New("eeclient: image export needs a description")
	}
	if export.Image == nil {
		return nil, eris.Errorf("eeclient: image export %s has no image", export.Description)
	}
	if export.Scale <= 0 {
		return nil, eris.Errorf("eeclient: image export %s needs a positive scale", export.Description)
	}
	if err := dest.validate(); err != nil {
		return nil, err
	}
	img := ee.ImageFrom(export.Image).ClipToBoundsAndScale(export.Scale)
	expr, raw, err := Expression(img)
	if err != nil {
		return nil, eris.Wrapf(err, "eeclient: image export %s", export.Description)
	}
	format := export.Format
	if format == "" {
		format = FormatGeoTIFF
	}
	return &ExportImageRequest{
		Description: export.Description,
		Expression:  expr,
		RequestID:   RequestID("image", export.Description, raw),
		FileExportOptions: &ImageFileExportOptions{
			FileFormat:       format,
			DriveDestination: dest.drive(export.Description),
			GcsDestination:   dest.gcs(export.Description),
		},
	}, nil
}
