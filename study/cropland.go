package study

import (
	"live-ndvi/ee"
)

// Inputs are the platform-side references every pipeline starts from.
type Inputs struct {
	Villages ee.FeatureCollection
	ROI      ee.Geometry
	LandUse  ee.Image
}

// LoadInputs references the village boundaries, their union and the land
// use map.
func LoadInputs() Inputs {
	villages := ee.LoadTable(VillagesAsset)
	return Inputs{
		Villages: villages,
		ROI:      villages.Geometry(),
		LandUse:  ee.LoadImage(LandUseAsset),
	}
}

// CroplandMask is 1 on cropland pixels of the clipped land use map and
// masked everywhere else.
func CroplandMask(landUse ee.Image) ee.Image {
	crop := ee.ConstantImage(0).Where(landUse.Eq(ee.ConstantImage(ClassCropland)), ee.ConstantImage(1))
	return crop.UpdateMask(crop)
}

// CroplandVectors vectorizes the cropland of the region of interest at the
// given ground sample distance. Polygons are labelled with "zone" and carry
// the mean land use class. A region without cropland gives an empty
// collection.
func CroplandVectors(in Inputs, scale float64) ee.FeatureCollection {
	landUse := in.LandUse.Clip(in.ROI)
	return CroplandMask(landUse).AddBands(landUse).ReduceToVectors(ee.VectorOptions{
		Reducer:        ee.MeanReducer(),
		Geometry:       in.ROI,
		Crs:            in.ROI.Projection(),
		Scale:          scale,
		GeometryType:   "polygon",
		EightConnected: false,
		LabelProperty:  ZoneLabel,
	})
}
