package celltools

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/golang/geo/s2"

	"live-ndvi/series"
)

func TestSummarizeRaster(t *testing.T) {
	path := setUpRaster(t)

	opts := NDVIOpts()
	opts.NumWorkers = 2
	summary, err := SummarizeRaster(path, opts)
	if err != nil {
		t.Fatal(err)
	}

	r := summary.Range
	if r.Valid != 12 || r.NoData != 2 || r.OutOfRange != 2 {
		t.Errorf("got valid=%d nodata=%d out=%d, want 12, 2, 2", r.Valid, r.NoData, r.OutOfRange)
	}
	if r.InRange() {
		t.Error("raster with 2.0 and -1.5 reported in range")
	}
	if r.Min != -1 || r.Max != 1 {
		t.Errorf("got range [%v, %v], want [-1, 1]", r.Min, r.Max)
	}

	var count int
	for i, cell := range summary.Cells {
		count += cell.Count
		if cell.Cell.Level() != opts.S2Lvl {
			t.Errorf("cell %v at level %d, want %d", cell.Cell, cell.Cell.Level(), opts.S2Lvl)
		}
		if cell.Data < -1 || cell.Data > 1 {
			t.Errorf("cell mean %v outside NDVI range", cell.Data)
		}
		if i > 0 && summary.Cells[i-1].Cell >= cell.Cell {
			t.Error("cells not sorted by id")
		}
	}
	if count != r.Valid {
		t.Errorf("cells hold %d pixels, want %d", count, r.Valid)
	}
}

func TestSummarizeRasterSum(t *testing.T) {
	path := setUpRaster(t)

	opts := NDVIOpts()
	opts.AggFunc = series.Sum
	summary, err := SummarizeRaster(path, opts)
	if err != nil {
		t.Fatal(err)
	}

	var total float64
	for _, cell := range summary.Cells {
		total += cell.Data
	}
	// 0.1+0.2+0.3+0.4 + 4*0.5 + (-1+1+0+0.25)
	if math.Abs(total-3.25) > 1e-6 {
		t.Errorf("got total %v, want 3.25", total)
	}
}

func TestSummarizeRasterOptions(t *testing.T) {
	opts := NDVIOpts()
	opts.NumWorkers = 0
	if _, err := SummarizeRaster("unused.tif", opts); err == nil {
		t.Error("expected an error for zero workers")
	}
	opts = NDVIOpts()
	opts.S2Lvl = 31
	if _, err := SummarizeRaster("unused.tif", opts); err == nil {
		t.Error("expected an error for level 31")
	}
	if _, err := SummarizeRaster(filepath.Join(t.TempDir(), "missing.tif"), NDVIOpts()); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSummarizeBlocksFailsOnUnreadableBlock(t *testing.T) {
	ds, err := godal.Open(setUpRaster(t))
	if err != nil {
		t.Fatal(err)
	}
	defer ds.Close()

	band := &BandContainer{Band: &ds.Bands()[0], Origin: Point{Lat: -1.5, Lng: 30.0}, XRes: 0.0001, YRes: -0.0001}
	blocks := make(chan godal.Block, 3)
	blocks <- godal.Block{X0: 0, Y0: 0, W: 4, H: 4}
	// Outside the 4x4 raster, so the band read fails.
	blocks <- godal.Block{X0: 64, Y0: 64, W: 4, H: 4}
	blocks <- godal.Block{X0: 0, Y0: 0, W: 4, H: 4}
	close(blocks)

	opts := NDVIOpts()
	opts.NumWorkers = 2
	summary, err := summarizeBlocks(band, blocks, opts)
	if err == nil {
		t.Fatalf("expected a read error, got range %+v", summary.Range)
	}
	if summary.Range.Valid != 0 || len(summary.Cells) != 0 {
		t.Errorf("partial summary returned alongside error: %+v", summary.Range)
	}
}

func TestBlockOrigin(t *testing.T) {
	block := godal.Block{X0: 256, Y0: 512, W: 256, H: 256}
	got := blockOrigin(block, 0.0001, -0.0001, Point{Lat: -1.5, Lng: 30.0})
	want := Point{Lat: -1.5 - 0.0512, Lng: 30.0 + 0.0256}
	if math.Abs(got.Lat-want.Lat) > 1e-12 || math.Abs(got.Lng-want.Lng) > 1e-12 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPointToS2(t *testing.T) {
	latLng := s2.LatLngFromDegrees(1.0, 2.0)
	s2Cell := s2.CellIDFromLatLng(latLng).Parent(11)

	desiredCell := s2.CellID(1154732675135700992)
	if s2Cell != desiredCell {
		t.Errorf("S2 cells are not equal, got %v, want %v", s2Cell, desiredCell)
	}
}

// setUpRaster writes a 4x4 NDVI raster over Rwanda with nodata, NaN and
// out-of-range pixels.
func setUpRaster(t testing.TB) string {
	t.Helper()
	godal.RegisterAll()

	path := filepath.Join(t.TempDir(), "ndvi.tif")
	ds, err := godal.Create(
		godal.GTiff,
		path,
		1,
		godal.Float32,
		4,
		4,
		godal.CreationOption("TILED=YES", "BLOCKXSIZE=16", "BLOCKYSIZE=16"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.SetGeoTransform([6]float64{30.0, 0.0001, 0.0, -1.5, 0.0, -0.0001}); err != nil {
		t.Fatal(err)
	}

	nan := float32(math.NaN())
	buf := []float32{
		0.1, 0.2, 0.3, 0.4,
		nan, -9999, 2.0, -1.5,
		0.5, 0.5, 0.5, 0.5,
		-1, 1, 0, 0.25,
	}
	bands := ds.Bands()
	if err := bands[0].SetNoData(-9999); err != nil {
		t.Fatal(err)
	}
	if err := bands[0].Write(0, 0, buf, 4, 4); err != nil {
		t.Fatal(err)
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}
