package ee

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeSingleInvocation(t *testing.T) {
	expr, err := Serialize(LoadImage("users/someone/landcover"))
	require.NoError(t, err)

	require.Len(t, expr.Values, 1)
	root := expr.Values[expr.Result]
	require.NotNil(t, root.FunctionInvocationValue)
	assert.Equal(t, "Image.load", root.FunctionInvocationValue.FunctionName)
	assert.Equal(t, "users/someone/landcover", root.FunctionInvocationValue.Arguments["id"].ConstantValue)
}

func TestSerializeIsDeterministic(t *testing.T) {
	build := func() Value {
		roi := LoadTable("users/someone/villages").Geometry()
		return LoadImageCollection("COPERNICUS/S2").
			FilterBounds(roi).
			Filter(LessThan("CLOUDY_PIXEL_PERCENTAGE", 20)).
			Map(func(img Image) Image { return img.Clip(roi) }).
			Mean()
	}
	a, err := MarshalGraph(build())
	require.NoError(t, err)
	b, err := MarshalGraph(build())
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, a, b)
}

func TestSerializeDeduplicatesSharedSubgraphs(t *testing.T) {
	// Two separately built but identical geometries collapse into one value.
	img := LoadImage("img").
		Clip(LoadTable("t").Geometry()).
		AddBands(LoadImage("other").Clip(LoadTable("t").Geometry()))

	expr, err := Serialize(img)
	require.NoError(t, err)

	var geometries int
	for _, v := range expr.Values {
		if v.FunctionInvocationValue != nil && v.FunctionInvocationValue.FunctionName == "Collection.geometry" {
			geometries++
		}
	}
	assert.Equal(t, 1, geometries)

	root := expr.Values[expr.Result].FunctionInvocationValue
	src := root.Arguments["srcImg"].FunctionInvocationValue
	dst := root.Arguments["dstImg"].FunctionInvocationValue
	require.NotNil(t, src)
	require.NotNil(t, dst)
	assert.NotEmpty(t, src.Arguments["geometry"].ValueReference)
	assert.Equal(t, src.Arguments["geometry"].ValueReference, dst.Arguments["geometry"].ValueReference)
}

func TestSerializeInlinesSingleUseValues(t *testing.T) {
	expr, err := Serialize(LoadImage("a").Select("B4"))
	require.NoError(t, err)

	require.Len(t, expr.Values, 1)
	root := expr.Values[expr.Result].FunctionInvocationValue
	assert.Equal(t, "Image.select", root.FunctionName)
	assert.Equal(t, "Image.load", root.Arguments["input"].FunctionInvocationValue.FunctionName)
	bands := root.Arguments["bandSelectors"].ArrayValue
	require.NotNil(t, bands)
	require.Len(t, bands.Values, 1)
	assert.Equal(t, "B4", bands.Values[0].ConstantValue)
}

func TestSerializeFunctionDefinition(t *testing.T) {
	c := LoadImageCollection("c").Map(func(img Image) Image { return img.Select("NDVI") })

	expr, err := Serialize(c)
	require.NoError(t, err)

	root := expr.Values[expr.Result].FunctionInvocationValue
	require.Equal(t, "Collection.map", root.FunctionName)
	fn := root.Arguments["baseAlgorithm"].FunctionDefinitionValue
	require.NotNil(t, fn)
	assert.Equal(t, []string{"_MAPPING_VAR_1_0"}, fn.ArgumentNames)

	body := expr.Values[fn.Body]
	require.NotNil(t, body)
	assert.Equal(t, "Image.select", body.FunctionInvocationValue.FunctionName)
	assert.Equal(t, "_MAPPING_VAR_1_0", body.FunctionInvocationValue.Arguments["input"].ArgumentReference)
}

func TestNestedLambdasGetDistinctNames(t *testing.T) {
	outer := LoadImageCollection("outer").Map(func(img Image) Image {
		return LoadImageCollection("inner").
			Map(func(other Image) Image { return other.AddBands(img) }).
			Mean()
	})

	params := make(map[string]bool)
	Walk(outer, func(n *Node) {
		for _, p := range n.Params() {
			params[p] = true
		}
	})
	assert.Equal(t, map[string]bool{"_MAPPING_VAR_1_0": true, "_MAPPING_VAR_2_0": true}, params)

	refs := make(map[string]bool)
	Walk(outer, func(n *Node) {
		if name := n.ArgumentName(); name != "" {
			refs[name] = true
		}
	})
	assert.Equal(t, params, refs)
}

func TestSerializeNull(t *testing.T) {
	f := NewFeature(nil, map[string]Value{"a": Constant(1)})
	b, err := MarshalGraph(f)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Contains(t, string(b), `"nullValue":"NULL_VALUE"`)
	assert.Contains(t, string(b), `"dictionaryValue"`)
}

func TestSerializeKeepsFalsyConstants(t *testing.T) {
	fc := LoadImage("a").ReduceToVectors(VectorOptions{
		Reducer:        MeanReducer(),
		Scale:          0,
		EightConnected: false,
	})
	b, err := MarshalGraph(fc)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"eightConnected":{"constantValue":false}`)
	assert.Contains(t, string(b), `"scale":{"constantValue":0}`)
}

func TestSerializeRejectsEmpty(t *testing.T) {
	_, err := Serialize(Image{})
	assert.Error(t, err)
}
