package study

import (
	"live-ndvi/ee"
)

// CloudBitMasks are the QA60 flags that must both be clear for a pixel to
// be kept.
func CloudBitMasks() []int {
	return []int{1 << CloudBit, 1 << CirrusBit}
}

// ClearSky reports whether a QA60 value passes the cloud mask.
func ClearSky(qa int) bool {
	for _, m := range CloudBitMasks() {
		if qa&m != 0 {
			return false
		}
	}
	return true
}

// MaskClouds drops cloud and cirrus pixels flagged in QA60 and scales
// digital numbers to reflectance.
func MaskClouds(img ee.Image) ee.Image {
	qa := img.Select(QABand)
	var mask ee.Image
	for i, m := range CloudBitMasks() {
		isClear := qa.BitwiseAnd(ee.ConstantImage(m)).Eq(ee.ConstantImage(0))
		if i == 0 {
			mask = isClear
			continue
		}
		mask = mask.And(isClear)
	}
	return img.UpdateMask(mask).Divide(ee.ConstantImage(ReflectanceDivisor))
}

// AddNDVI appends (B8 - B4) / (B8 + B4) as the NDVI band.
func AddNDVI(img ee.Image) ee.Image {
	return img.AddBands(img.NormalizedDifference(NIRBand, RedBand).Rename(NDVIBand))
}

// ReferenceCollection is the cloud-masked Sentinel-2 imagery over the
// region of interest inside any of the windows.
func ReferenceCollection(roi ee.Geometry, windows ...ReferenceWindow) ee.ImageCollection {
	dates := make([]ee.Filter, len(windows))
	for i, w := range windows {
		dates[i] = ee.Date(w.Range)
	}
	var byDate ee.Filter
	if len(dates) == 1 {
		byDate = dates[0]
	} else {
		byDate = ee.Or(dates...)
	}
	return ee.LoadImageCollection(Sentinel2).
		FilterBounds(roi).
		Filter(byDate).
		Filter(ee.LessThan(CloudyPixelField, MaxCloudyPixels)).
		Map(MaskClouds)
}

// CropNDVI computes NDVI for every image and keeps it on cropland only.
func CropNDVI(images ee.ImageCollection, cropland ee.FeatureCollection) ee.ImageCollection {
	return images.Map(AddNDVI).
		Select(NDVIBand).
		Map(func(img ee.Image) ee.Image { return img.Clip(cropland) })
}
