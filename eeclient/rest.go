package eeclient

import (
	"encoding/json"

	"live-ndvi/ee"
)

// DriveDestination writes export files into a Drive folder.
type DriveDestination struct {
	Folder         string `json:"folder,omitempty"`
	FilenamePrefix string `json:"filenamePrefix,omitempty"`
}

// GcsDestination writes export files into a Cloud Storage bucket.
type GcsDestination struct {
	Bucket         string `json:"bucket,omitempty"`
	FilenamePrefix string `json:"filenamePrefix,omitempty"`
}

type TableFileExportOptions struct {
	FileFormat       string            `json:"fileFormat,omitempty"`
	DriveDestination *DriveDestination `json:"driveDestination,omitempty"`
	GcsDestination   *GcsDestination   `json:"gcsDestination,omitempty"`
}

type ImageFileExportOptions struct {
	FileFormat       string            `json:"fileFormat,omitempty"`
	DriveDestination *DriveDestination `json:"driveDestination,omitempty"`
	GcsDestination   *GcsDestination   `json:"gcsDestination,omitempty"`
}

// ExportTableRequest is the body of projects/{p}/table:export.
type ExportTableRequest struct {
	Expression        *ee.Expression          `json:"expression"`
	Description       string                  `json:"description,omitempty"`
	RequestID         string                  `json:"requestId,omitempty"`
	FileExportOptions *TableFileExportOptions `json:"fileExportOptions,omitempty"`
}

// ExportImageRequest is the body of projects/{p}/image:export.
type ExportImageRequest struct {
	Expression        *ee.Expression          `json:"expression"`
	Description       string                  `json:"description,omitempty"`
	RequestID         string                  `json:"requestId,omitempty"`
	FileExportOptions *ImageFileExportOptions `json:"fileExportOptions,omitempty"`
}

// ComputeValueRequest is the body of projects/{p}/value:compute.
type ComputeValueRequest struct {
	Expression *ee.Expression `json:"expression"`
}

type computeValueResponse struct {
	Result json.RawMessage `json:"result"`
}

// Operation is the long-running operation an export starts.
type Operation struct {
	Name string `json:"name"`
	Done bool   `json:"done,omitempty"`
}
