package study

import (
	"fmt"
	"time"

	"live-ndvi/ee"
)

// Export descriptions, also used as file name prefixes.
const (
	NDVITableDescription = "NDVI_S2"
	RainfallDescription  = "Rainfall"
)

// NDVIImageDescription names the NDVI raster export of one year.
func NDVIImageDescription(year int) string {
	return fmt.Sprintf("NDVI_%d", year)
}

// NDVITable is one row per village per reference image with the mean
// cropland NDVI.
func NDVITable(in Inputs) ee.FeatureCollection {
	cropland := CroplandVectors(in, ReferenceVectorScale)
	ndvi := CropNDVI(ReferenceCollection(in.ROI, ReferenceWindows()...), cropland)
	return ndvi.MapToCollections(func(img ee.Image) ee.FeatureCollection {
		return img.ReduceRegions(in.Villages, ee.MeanReducer(), ZonalScale)
	}).Flatten()
}

// NDVIImage is the mean cropland NDVI of one reference window.
type NDVIImage struct {
	Year        int
	Description string
	Image       ee.Image
}

// NDVIImages builds one composite per reference window.
func NDVIImages(in Inputs) []NDVIImage {
	cropland := CroplandVectors(in, ReferenceVectorScale)
	windows := ReferenceWindows()
	out := make([]NDVIImage, len(windows))
	for i, w := range windows {
		ndvi := CropNDVI(ReferenceCollection(in.ROI, w), cropland)
		out[i] = NDVIImage{
			Year:        w.Year,
			Description: NDVIImageDescription(w.Year),
			Image:       ndvi.Select(NDVIBand).Mean(),
		}
	}
	return out
}

// Month is one calendar month of the rainfall series.
type Month struct {
	Year  int
	Month time.Month
}

// Start is the first instant of the month, UTC.
func (m Month) Start() time.Time {
	return ee.Day(m.Year, m.Month, 1)
}

// BandName is the band the month's total is stored under, e.g. 06_01_2018.
func (m Month) BandName() string {
	return m.Start().Format("01_02_2006")
}

// Index is the system:index the month carries in a stack starting at
// startYear: year offset and zero-based month, e.g. 2_5 for June 2018.
// toBands prefixes band names with it.
func (m Month) Index(startYear int) string {
	return fmt.Sprintf("%d_%d", m.Year-startYear, int(m.Month)-1)
}

// Column is the header the month gets in the exported rainfall table,
// e.g. 0_0_01_01_2016.
func (m Month) Column(startYear int) string {
	return m.Index(startYear) + "_" + m.BandName()
}

// Months lists every month of the years [startYear, endYear] in order.
func Months(startYear, endYear int) []Month {
	var out []Month
	for y := startYear; y <= endYear; y++ {
		for m := time.January; m <= time.December; m++ {
			out = append(out, Month{Year: y, Month: m})
		}
	}
	return out
}

// MonthlyTotal sums the daily precipitation of one month into a single
// band named after the month and dated to its first day.
func MonthlyTotal(daily ee.ImageCollection, m Month) ee.Image {
	return daily.
		Filter(ee.CalendarRange(m.Year, m.Year, "year")).
		Filter(ee.CalendarRange(int(m.Month), int(m.Month), "month")).
		Reduce(ee.SumReducer()).
		Set(TimeStartField, ee.DateValue(m.Start())).
		Rename(m.BandName())
}

// MonthlyRainfall stacks the monthly totals of [startYear, endYear] into one
// image, one band per month in time order. Months without any daily image
// reduce to a placeholder "constant" band and are dropped. Bands are named
// by Month.Column.
func MonthlyRainfall(startYear, endYear int) ee.Image {
	daily := ee.LoadImageCollection(ChirpsDaily)
	months := Months(startYear, endYear)
	totals := make([]ee.Image, len(months))
	for i, m := range months {
		totals[i] = MonthlyTotal(daily, m).Set(IndexField, ee.Constant(m.Index(startYear)))
	}
	return ee.ImagesOf(totals...).
		Filter(ee.ListContains(BandNamesField, "constant").Not()).
		Sort(TimeStartField).
		ToBands()
}

// RainfallTable is one row per village with one column per month.
func RainfallTable(in Inputs) ee.FeatureCollection {
	return MonthlyRainfall(RainfallStartYear, RainfallEndYear).
		ReduceRegions(in.Villages, ee.FirstReducer(), RainfallScale)
}
