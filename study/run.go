package study

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"live-ndvi/eeclient"
	"live-ndvi/series"
)

// Chart is a chart's data with its presentation options.
type Chart struct {
	Spec  ChartSpec
	Table series.Table
}

// RunNDVITrend computes the cropland NDVI series and builds the by-year and
// average day-of-year charts from it.
func RunNDVITrend(ctx context.Context, p eeclient.Platform) ([]Chart, error) {
	logrus.Debug("Entered RunNDVITrend")
	raw, err := p.Compute(ctx, NDVITrend(LoadInputs()))
	if err != nil {
		return nil, eris.Wrap(err, "ndvi trend")
	}
	obs, err := series.DecodeFeatures(raw, TimeStartField, NDVIBand)
	if err != nil {
		return nil, eris.Wrap(err, "ndvi trend")
	}
	logrus.Infof("Received %d NDVI observations", len(obs))

	byYear := series.DoyByYear(obs, series.Mean, TrendStartDay, TrendEndDay)
	average := series.Doy(obs, series.Mean, series.Mean, TrendStartDay, TrendEndDay, NDVIBand)
	logrus.Debug("Exited RunNDVITrend")
	return []Chart{
		{Spec: NDVIByYearChart(), Table: byYear},
		{Spec: NDVIAverageChart(), Table: average},
	}, nil
}

// RunCloudCover computes the cloud cover of every granule over the region.
func RunCloudCover(ctx context.Context, p eeclient.Platform) (Chart, error) {
	raw, err := p.Compute(ctx, CloudCover(LoadInputs()))
	if err != nil {
		return Chart{}, eris.Wrap(err, "cloud cover")
	}
	obs, err := series.DecodeFeatures(raw, TimeStartField, CloudCoverField)
	if err != nil {
		return Chart{}, eris.Wrap(err, "cloud cover")
	}
	logrus.Infof("Received %d cloud cover observations", len(obs))
	return Chart{Spec: CloudCoverChart(), Table: series.ByTime(obs, CloudCoverField)}, nil
}

// RunNDVITable submits the per-village NDVI table export.
func RunNDVITable(ctx context.Context, p eeclient.Platform) (eeclient.Task, error) {
	return p.ExportTable(ctx, eeclient.TableExport{
		Description: NDVITableDescription,
		Collection:  NDVITable(LoadInputs()),
		Format:      eeclient.FormatCSV,
	})
}

// RunNDVIImages submits one NDVI raster export per reference year, at most
// concurrency at a time. Tasks come back in year order.
func RunNDVIImages(ctx context.Context, p eeclient.Platform, concurrency int) ([]eeclient.Task, error) {
	images := NDVIImages(LoadInputs())
	tasks := make([]eeclient.Task, len(images))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			task, err := p.ExportImage(ctx, eeclient.ImageExport{
				Description: img.Description,
				Image:       img.Image,
				Scale:       ImageExportScale,
				Format:      eeclient.FormatGeoTIFF,
			})
			if err != nil {
				return err
			}
			tasks[i] = task
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// RunRainfall submits the per-village monthly rainfall table export.
func RunRainfall(ctx context.Context, p eeclient.Platform) (eeclient.Task, error) {
	return p.ExportTable(ctx, eeclient.TableExport{
		Description: RainfallDescription,
		Collection:  RainfallTable(LoadInputs()),
		Format:      eeclient.FormatCSV,
	})
}
