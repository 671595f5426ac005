package series

import (
	"math"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// FromFeatures reads observations out of a computed feature collection.
// timeProp must hold epoch milliseconds. Features whose value is missing or
// null (an empty region, a fully masked image) become NaN so callers can see
// how many were dropped.
func FromFeatures(fc *geojson.FeatureCollection, timeProp, valueProp string) ([]Observation, error) {
	obs := make([]Observation, 0, len(fc.Features))
	for i, f := range fc.Features {
		ms, ok := number(f.Properties[timeProp])
		if !ok {
			return nil, eris.Errorf("series: feature %d has no numeric %q", i, timeProp)
		}
		value, ok := number(f.Properties[valueProp])
		if !ok {
			logrus.Debugf("Feature %d has no %s value", i, valueProp)
			value = math.NaN()
		}
		obs = append(obs, Observation{Time: time.UnixMilli(int64(ms)).UTC(), Value: value})
	}
	return obs, nil
}

// DecodeFeatures parses a GeoJSON feature collection and extracts
// observations from it.
func DecodeFeatures(data []byte, timeProp, valueProp string) ([]Observation, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "series: decode feature collection")
	}
	return FromFeatures(fc, timeProp, valueProp)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
