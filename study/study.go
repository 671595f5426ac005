// Package study holds the LIVE Rwanda impact-evaluation pipelines: the
// assets, reference dates, thresholds and scales they use, and the graphs
// built from them.
package study

import (
	"time"

	"live-ndvi/ee"
)

// Assets and catalog collections.
const (
	VillagesAsset  = "users/romainfourmy/LIVE_Villages"
	LandUseAsset   = "users/romainfourmy/Rwanda_LandUse_Sentinel2"
	Sentinel2      = "COPERNICUS/S2"
	ModisVegIndex  = "MODIS/006/MOD13A1"
	ChirpsDaily    = "UCSB-CHG/CHIRPS/DAILY"
	TimeStartField = "system:time_start"
	BandNamesField = "system:band_names"
	IndexField     = "system:index"
)

// Land-cover classes of the Sentinel-2 based Rwanda land use map.
const (
	ClassNoData = iota
	ClassTrees
	ClassScrubs
	ClassGrass
	ClassCropland
	ClassAquaticVegetation
	ClassSparseVegetation
	ClassBare
	ClassBuiltUp
	ClassSnowIce
	ClassOpenWater
)

// LandUsePalette colours the classes above, in order.
var LandUsePalette = []string{
	"000000", "00A000", "966400", "FFB400", "FFFF64", "00DC82",
	"FFEBAF", "FFF5D7", "C31400", "FFFFFF", "0046C8",
}

// NDVIPalette is the visualisation ramp used for NDVI layers.
var NDVIPalette = []string{
	"FFFFFF", "CE7E45", "DF923D", "F1B555", "FCD163", "99B718", "74A901",
	"66A000", "529400", "3E8601", "207401", "056201", "004C00", "023B01",
	"012E01", "011D01", "011301",
}

const (
	QABand             = "QA60"
	CloudBit           = 10
	CirrusBit          = 11
	ReflectanceDivisor = 10000
	CloudyPixelField   = "CLOUDY_PIXEL_PERCENTAGE"
	MaxCloudyPixels    = 20
	CloudCoverField    = "CLOUD_COVERAGE_ASSESSMENT"

	NIRBand  = "B8"
	RedBand  = "B4"
	NDVIBand = "NDVI"

	ZoneLabel = "zone"

	// Vectorisation ground sample distance, metres.
	TrendVectorScale     = 9
	ReferenceVectorScale = 10

	ZonalScale       = 10
	ImageExportScale = 10
	TrendScale       = 500
	RainfallScale    = 30

	TrendStartDay = 1
	TrendEndDay   = 365
)

// ReferenceWindow is the short early-June window of one year that
// maximises NDVI and minimises cloud cover.
type ReferenceWindow struct {
	Year  int
	Range ee.DateRange
}

func window(year int, day int) ReferenceWindow {
	return ReferenceWindow{Year: year, Range: ee.DateRange{
		Start: ee.Day(year, time.June, day),
		End:   ee.Day(year, time.June, day+2),
	}}
}

// ReferenceWindows returns the yearly reference periods shared by the NDVI
// table and image exports.
func ReferenceWindows() []ReferenceWindow {
	return []ReferenceWindow{
		window(2016, 11),
		window(2017, 6),
		window(2018, 11),
		window(2019, 11),
		window(2020, 5),
	}
}

// TrendYears are the calendar years of the NDVI and cloud-cover trends.
func TrendYears() []int { return []int{2016, 2017, 2018, 2019, 2020} }

// CloudCoverRange spans the whole trend period.
func CloudCoverRange() ee.DateRange {
	return ee.DateRange{Start: ee.Day(2016, time.January, 1), End: ee.Day(2021, time.January, 1)}
}

const (
	RainfallStartYear = 2016
	RainfallEndYear   = 2021
)
