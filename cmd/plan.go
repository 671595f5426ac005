package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"live-ndvi/eeclient"
	"live-ndvi/study"
)

type plannedRequest struct {
	Kind        string `yaml:"kind"`
	Description string `yaml:"description"`
	RequestID   string `yaml:"request_id,omitempty"`
	Format      string `yaml:"format,omitempty"`
	Values      int    `yaml:"values"`
	File        string `yaml:"file"`
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build every pipeline's requests without sending them",
	Long: `Runs all five pipelines against a recorder. Each request body is
	written as JSON to <out>/plan/ and a summary is printed as YAML.
	Running plan twice with the same version gives identical files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := &eeclient.Recorder{Dest: destinationFromConfig()}
		if err := recordAll(cmd.Context(), rec); err != nil {
			return err
		}

		dir := filepath.Join(viper.GetString("out"), "plan")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create %s", dir)
		}
		planned, err := writePlan(rec, dir)
		if err != nil {
			return err
		}
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(planned)
	},
}

func recordAll(ctx context.Context, rec *eeclient.Recorder) error {
	if _, err := study.RunNDVITrend(ctx, rec); err != nil {
		return err
	}
	if _, err := study.RunCloudCover(ctx, rec); err != nil {
		return err
	}
	if _, err := study.RunNDVITable(ctx, rec); err != nil {
		return err
	}
	if _, err := study.RunNDVIImages(ctx, rec, 1); err != nil {
		return err
	}
	_, err := study.RunRainfall(ctx, rec)
	return err
}

func writePlan(rec *eeclient.Recorder, dir string) ([]plannedRequest, error) {
	var planned []plannedRequest
	write := func(p plannedRequest, body any) error {
		out, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return eris.Wrapf(err, "encode %s", p.Description)
		}
		p.File = filepath.Join(dir, p.File)
		if err := os.WriteFile(p.File, out, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", p.File)
		}
		planned = append(planned, p)
		return nil
	}

	computeNames := []string{"ndvi_trend", "cloud_cover"}
	for i, expr := range rec.Computed {
		name := computeNames[i%len(computeNames)]
		p := plannedRequest{Kind: "compute", Description: name, Values: len(expr.Values), File: name + ".json"}
		if err := write(p, expr); err != nil {
			return nil, err
		}
	}
	for _, req := range rec.Tables {
		p := plannedRequest{
			Kind:        "table",
			Description: req.Description,
			RequestID:   req.RequestID,
			Format:      req.FileExportOptions.FileFormat,
			Values:      len(req.Expression.Values),
			File:        req.Description + ".json",
		}
		if err := write(p, req); err != nil {
			return nil, err
		}
	}

	images := append([]*eeclient.ExportImageRequest(nil), rec.Images...)
	sort.Slice(images, func(i, j int) bool { return images[i].Description < images[j].Description })
	for _, req := range images {
		p := plannedRequest{
			Kind:        "image",
			Description: req.Description,
			RequestID:   req.RequestID,
			Format:      req.FileExportOptions.FileFormat,
			Values:      len(req.Expression.Values),
			File:        req.Description + ".json",
		}
		if err := write(p, req); err != nil {
			return nil, err
		}
	}
	return planned, nil
}

func init() {
	rootCmd.AddCommand(planCmd)
}
