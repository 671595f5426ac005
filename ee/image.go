package ee

// Image is a single raster.
type Image struct{ node *Node }

func (i Image) Node() *Node { return i.node }

// ImageFrom wraps an arbitrary node, typically a mapping argument.
func ImageFrom(v Value) Image { return Image{v.Node()} }

// LoadImage references an image asset.
func LoadImage(id string) Image {
	return Image{Invoke("Image.load", map[string]Value{"id": Constant(id)})}
}

// ConstantImage is an image with one band of value v everywhere.
func ConstantImage(v any) Image {
	return Image{Invoke("Image.constant", map[string]Value{"value": Constant(v)})}
}

func (i Image) binary(fn string, other Image) Image {
	return Image{Invoke(fn, map[string]Value{"image1": i, "image2": other})}
}

func (i Image) Eq(other Image) Image         { return i.binary("Image.eq", other) }
func (i Image) And(other Image) Image        { return i.binary("Image.and", other) }
func (i Image) BitwiseAnd(other Image) Image { return i.binary("Image.bitwiseAnd", other) }
func (i Image) Divide(other Image) Image     { return i.binary("Image.divide", other) }

// Clip masks the image outside geom, which may be a geometry, feature or
// feature collection.
func (i Image) Clip(geom Value) Image {
	return Image{Invoke("Image.clip", map[string]Value{"input": i, "geometry": geom})}
}

// Where replaces pixels where test is non-zero with value.
func (i Image) Where(test, value Image) Image {
	return Image{Invoke("Image.where", map[string]Value{"input": i, "test": test, "value": value})}
}

func (i Image) UpdateMask(mask Image) Image {
	return Image{Invoke("Image.updateMask", map[string]Value{"image": i, "mask": mask})}
}

func (i Image) AddBands(src Image) Image {
	return Image{Invoke("Image.addBands", map[string]Value{"dstImg": i, "srcImg": src})}
}

func (i Image) Select(bands ...string) Image {
	return Image{Invoke("Image.select", map[string]Value{"input": i, "bandSelectors": Strings(bands...)})}
}

func (i Image) Rename(names ...string) Image {
	return Image{Invoke("Image.rename", map[string]Value{"input": i, "names": Strings(names...)})}
}

// NormalizedDifference computes (a - b) / (a + b) as a band named "nd".
func (i Image) NormalizedDifference(a, b string) Image {
	return Image{Invoke("Image.normalizedDifference", map[string]Value{"input": i, "bandNames": Strings(a, b)})}
}

// Set attaches a metadata property.
func (i Image) Set(key string, value Value) Image {
	return Image{Invoke("Element.set", map[string]Value{"object": i, "key": Constant(key), "value": value})}
}

// Get reads a metadata property.
func (i Image) Get(property string) *Node {
	return Invoke("Element.get", map[string]Value{"object": i, "property": Constant(property)})
}

// VectorOptions are the arguments of Image.reduceToVectors.
type VectorOptions struct {
	Reducer        Reducer
	Geometry       Value
	Crs            Value
	Scale          float64
	GeometryType   string
	EightConnected bool
	LabelProperty  string
}

// ReduceToVectors converts homogeneous regions of the first band into
// polygons, reducing the remaining bands over each polygon.
func (i Image) ReduceToVectors(opts VectorOptions) FeatureCollection {
	return FeatureCollection{Invoke("Image.reduceToVectors", map[string]Value{
		"image":          i,
		"reducer":        opts.Reducer,
		"geometry":       opts.Geometry,
		"crs":            opts.Crs,
		"scale":          Constant(opts.Scale),
		"geometryType":   Constant(opts.GeometryType),
		"eightConnected": Constant(opts.EightConnected),
		"labelProperty":  Constant(opts.LabelProperty),
	})}
}

// ReduceRegions applies reducer to the image within every feature of fc.
func (i Image) ReduceRegions(fc FeatureCollection, reducer Reducer, scale float64) FeatureCollection {
	return FeatureCollection{Invoke("Image.reduceRegions", map[string]Value{
		"image":      i,
		"collection": fc,
		"reducer":    reducer,
		"scale":      Constant(scale),
	})}
}

// ReduceRegion applies reducer to the image within geom.
func (i Image) ReduceRegion(reducer Reducer, geom Value, scale float64) Dictionary {
	return Dictionary{Invoke("Image.reduceRegion", map[string]Value{
		"image":    i,
		"reducer":  reducer,
		"geometry": geom,
		"scale":    Constant(scale),
	})}
}

// ClipToBoundsAndScale fixes the output scale of an export.
func (i Image) ClipToBoundsAndScale(scale float64) Image {
	return Image{Invoke("Image.clipToBoundsAndScale", map[string]Value{"input": i, "scale": Constant(scale)})}
}
