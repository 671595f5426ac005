package ee

// ImageCollection is a lazily filtered sequence of images.
type ImageCollection struct{ node *Node }

func (c ImageCollection) Node() *Node { return c.node }

// LoadImageCollection references a catalog collection.
func LoadImageCollection(id string) ImageCollection {
	return ImageCollection{Invoke("ImageCollection.load", map[string]Value{"id": Constant(id)})}
}

// ImagesOf builds a collection from explicit images.
func ImagesOf(images ...Image) ImageCollection {
	vals := make([]Value, len(images))
	for i, img := range images {
		vals[i] = img
	}
	return ImageCollection{Invoke("ImageCollection.fromImages", map[string]Value{"images": Array(vals...)})}
}

func (c ImageCollection) Filter(f Filter) ImageCollection {
	return ImageCollection{Invoke("Collection.filter", map[string]Value{"collection": c, "filter": f})}
}

func (c ImageCollection) FilterBounds(geom Value) ImageCollection {
	return c.Filter(Bounds(geom))
}

func (c ImageCollection) FilterDate(r DateRange) ImageCollection {
	return c.Filter(Date(r))
}

// Map applies fn to every image.
func (c ImageCollection) Map(fn func(Image) Image) ImageCollection {
	return ImageCollection{mapCollection(c, func(arg *Node) Value { return fn(Image{arg}) })}
}

// MapToFeatures turns every image into a feature.
func (c ImageCollection) MapToFeatures(fn func(Image) Feature) FeatureCollection {
	return FeatureCollection{mapCollection(c, func(arg *Node) Value { return fn(Image{arg}) })}
}

// MapToCollections turns every image into a feature collection. The result
// is a collection of collections and usually wants Flatten.
func (c ImageCollection) MapToCollections(fn func(Image) FeatureCollection) FeatureCollection {
	return FeatureCollection{mapCollection(c, func(arg *Node) Value { return fn(Image{arg}) })}
}

// Select keeps the named bands of every image.
func (c ImageCollection) Select(bands ...string) ImageCollection {
	return c.Map(func(img Image) Image { return img.Select(bands...) })
}

func (c ImageCollection) Reduce(reducer Reducer) Image {
	return Image{Invoke("ImageCollection.reduce", map[string]Value{"collection": c, "reducer": reducer})}
}

// Mean composites the collection keeping band names.
func (c ImageCollection) Mean() Image {
	return Image{Invoke("ImageCollection.mean", map[string]Value{"collection": c})}
}

func (c ImageCollection) Sort(property string) ImageCollection {
	return ImageCollection{Invoke("Collection.sort", map[string]Value{"collection": c, "key": Constant(property)})}
}

// ToBands stacks every image into one multi-band image in collection order.
func (c ImageCollection) ToBands() Image {
	return Image{Invoke("ImageCollection.toBands", map[string]Value{"collection": c})}
}

// FeatureCollection is a collection of vector features.
type FeatureCollection struct{ node *Node }

func (c FeatureCollection) Node() *Node { return c.node }

// LoadTable references a table asset.
func LoadTable(id string) FeatureCollection {
	return FeatureCollection{Invoke("Collection.loadTable", map[string]Value{"tableId": Constant(id)})}
}

// Geometry unions every feature geometry.
func (c FeatureCollection) Geometry() Geometry {
	return Geometry{Invoke("Collection.geometry", map[string]Value{"collection": c})}
}

// Flatten concatenates a collection of collections.
func (c FeatureCollection) Flatten() FeatureCollection {
	return FeatureCollection{Invoke("Collection.flatten", map[string]Value{"collection": c})}
}

func mapCollection(c Value, body func(arg *Node) Value) *Node {
	return Invoke("Collection.map", map[string]Value{
		"collection":    c,
		"baseAlgorithm": Lambda(body),
	})
}

// Feature is a geometry with properties.
type Feature struct{ node *Node }

func (f Feature) Node() *Node { return f.node }

// NewFeature builds a feature. A nil geometry gives a table row.
func NewFeature(geom Value, props map[string]Value) Feature {
	if geom == nil {
		geom = Null()
	}
	return Feature{Invoke("Feature", map[string]Value{"geometry": geom, "metadata": Dict(props)})}
}

// Geometry is a server-side geometry.
type Geometry struct{ node *Node }

func (g Geometry) Node() *Node { return g.node }

// Projection is the geometry's projection.
func (g Geometry) Projection() *Node {
	return Invoke("Geometry.projection", map[string]Value{"geometry": g})
}

// Dictionary is a server-side key/value map.
type Dictionary struct{ node *Node }

func (d Dictionary) Node() *Node { return d.node }

func (d Dictionary) Get(key string) *Node {
	return Invoke("Dictionary.get", map[string]Value{"dictionary": d, "key": Constant(key)})
}
