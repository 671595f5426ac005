package study

import (
	"live-ndvi/ee"
)

// TrendRanges are the yearly date filters of the NDVI trend.
func TrendRanges() []ee.DateRange {
	years := TrendYears()
	out := make([]ee.DateRange, len(years))
	for i, y := range years {
		out[i] = ee.DateRange{Start: ee.Day(y, 1, 1), End: ee.Day(y+1, 1, 1)}
	}
	return out
}

// VegetationIndices is the MODIS 16-day NDVI of the trend years.
func VegetationIndices() ee.ImageCollection {
	ranges := TrendRanges()
	filters := make([]ee.Filter, len(ranges))
	for i, r := range ranges {
		filters[i] = ee.Date(r)
	}
	return ee.LoadImageCollection(ModisVegIndex).
		Filter(ee.Or(filters...)).
		Select(NDVIBand)
}

// NDVITrend reduces every MODIS image to its mean NDVI over cropland. The
// result is a table of (system:time_start, NDVI) rows.
func NDVITrend(in Inputs) ee.FeatureCollection {
	cropland := CroplandVectors(in, TrendVectorScale).Geometry()
	return VegetationIndices().MapToFeatures(func(img ee.Image) ee.Feature {
		return ee.NewFeature(nil, map[string]ee.Value{
			TimeStartField: img.Get(TimeStartField),
			NDVIBand:       img.ReduceRegion(ee.MeanReducer(), cropland, TrendScale).Get(NDVIBand),
		})
	})
}

// CloudCover is a table of (system:time_start, CLOUD_COVERAGE_ASSESSMENT)
// rows, one per Sentinel-2 granule over the region of interest.
func CloudCover(in Inputs) ee.FeatureCollection {
	return ee.LoadImageCollection(Sentinel2).
		FilterBounds(in.ROI).
		FilterDate(CloudCoverRange()).
		MapToFeatures(func(img ee.Image) ee.Feature {
			return ee.NewFeature(nil, map[string]ee.Value{
				TimeStartField:  img.Get(TimeStartField),
				CloudCoverField: img.Get(CloudCoverField),
			})
		})
}
