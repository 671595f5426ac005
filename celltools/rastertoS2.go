package celltools

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/golang/geo/s2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"live-ndvi/series"
)

type Point struct {
	Lat float64
	Lng float64
}

// BandContainer is a raster band with the georeferencing needed to place
// its pixels.
type BandContainer struct {
	Band      *godal.Band
	Origin    Point
	XRes      float64
	YRes      float64
	NoData    float64
	HasNoData bool
	mu        sync.Mutex
}

// ConfigOpts controls how an exported raster is summarised.
type ConfigOpts struct {
	NumWorkers int
	S2Lvl      int
	AggFunc    series.AggFunc
	// Pixels outside [ValidMin, ValidMax] are counted but not aggregated.
	ValidMin float64
	ValidMax float64
}

// NDVIOpts are the defaults for an exported NDVI raster.
func NDVIOpts() ConfigOpts {
	return ConfigOpts{
		NumWorkers: 4,
		S2Lvl:      14,
		AggFunc:    series.Mean,
		ValidMin:   -1,
		ValidMax:   1,
	}
}

// S2CellData is the aggregate of the pixels falling in one S2 cell.
type S2CellData struct {
	Cell       s2.CellID
	Data       float64
	Count      int
	AreaM2     float64
	GeomString string
}

// RangeReport counts how the pixels of a raster relate to the valid range.
type RangeReport struct {
	Valid      int
	OutOfRange int
	NoData     int
	Min        float64
	Max        float64
}

// InRange reports whether no pixel fell outside the valid range.
func (r RangeReport) InRange() bool { return r.OutOfRange == 0 }

func newRangeReport() RangeReport {
	return RangeReport{Min: math.Inf(1), Max: math.Inf(-1)}
}

func (r *RangeReport) merge(o RangeReport) {
	r.Valid += o.Valid
	r.OutOfRange += o.OutOfRange
	r.NoData += o.NoData
	r.Min = math.Min(r.Min, o.Min)
	r.Max = math.Max(r.Max, o.Max)
}

// Summary is the result of summarising one raster.
type Summary struct {
	Cells []S2CellData
	Range RangeReport
}

type blockResult struct {
	cells  map[s2.CellID][]float64
	report RangeReport
}

// SummarizeRaster reads the first band of a geographic (EPSG:4326) raster,
// checks every pixel against the valid range and aggregates the valid ones
// into S2 cells. Cells are returned in cell id order.
func SummarizeRaster(path string, opts ConfigOpts) (summary Summary, err error) {
	if opts.NumWorkers < 1 {
		return Summary{}, eris.Errorf("celltools: need at least one worker, got %d", opts.NumWorkers)
	}
	if opts.S2Lvl < 0 || opts.S2Lvl > s2.MaxLevel {
		return Summary{}, eris.Errorf("celltools: invalid S2 level %d", opts.S2Lvl)
	}
	if opts.AggFunc == nil {
		opts.AggFunc = series.Mean
	}
	godal.RegisterAll()

	ds, err := godal.Open(path)
	if err != nil {
		return Summary{}, eris.Wrapf(err, "celltools: open %s", path)
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	origin, xRes, yRes, err := getOriginAndResolution(ds)
	if err != nil {
		return Summary{}, err
	}
	if sr := ds.SpatialRef(); sr != nil && !sr.Geographic() {
		logrus.Warnf("%s is not in geographic coordinates, cell placement will be wrong", path)
	}

	band := &ds.Bands()[0]
	noData, hasNoData := band.NoData()
	if !hasNoData {
		logrus.Debug("NoData not set, only NaN pixels are skipped")
	}
	bandWithInfo := &BandContainer{
		Band:      band,
		Origin:    origin,
		XRes:      xRes,
		YRes:      yRes,
		NoData:    noData,
		HasNoData: hasNoData,
	}

	return summarizeBand(bandWithInfo, opts)
}

func summarizeBand(band *BandContainer, opts ConfigOpts) (Summary, error) {
	done := make(chan struct{})
	defer close(done)
	return summarizeBlocks(band, genBlocks(band, done), opts)
}

// summarizeBlocks fails as a whole when any block cannot be read, so the
// range report always covers every pixel.
func summarizeBlocks(band *BandContainer, blocks <-chan godal.Block, opts ConfigOpts) (Summary, error) {
	results, wait := processBlocks(band, blocks, opts)
	cells, report := groupByCell(results)
	if err := wait(); err != nil {
		return Summary{}, err
	}
	if report.Valid == 0 {
		report.Min, report.Max = math.NaN(), math.NaN()
	}
	return Summary{Cells: aggCellResults(cells, opts.AggFunc), Range: report}, nil
}

// Produce blocks from a raster band, putting them in a channel to be consumed
// downstream. Production is serial; reading dominates.
func genBlocks(band *BandContainer, done <-chan struct{}) <-chan godal.Block {
	logrus.Debug("Entered genBlocks")

	blocks := make(chan godal.Block)
	firstBlock := band.Band.Structure().FirstBlock()
	go func() {
		defer close(blocks)
		for block, ok := firstBlock, true; ok; block, ok = block.Next() {
			select {
			case blocks <- block:
			case <-done:
				return
			}
		}
	}()
	logrus.Debug("Exited genBlocks")
	return blocks
}

func processBlocks(band *BandContainer, blocks <-chan godal.Block, opts ConfigOpts) (<-chan blockResult, func() error) {
	logrus.Debug("Entered processBlocks")
	resCh := make(chan blockResult, opts.NumWorkers)
	g, ctx := errgroup.WithContext(context.Background())

	for i := 0; i < opts.NumWorkers; i++ {
		g.Go(func() error {
			for block := range blocks {
				logrus.Debugf("Processing block at [%v, %v]", block.X0, block.Y0)
				res, err := summarizeBlock(band, block, opts)
				if err != nil {
					return err
				}
				select {
				case resCh <- res:
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- g.Wait()
		close(resCh)
	}()

	logrus.Debug("Exited processBlocks")
	return resCh, func() error { return <-errCh }
}

func summarizeBlock(band *BandContainer, block godal.Block, opts ConfigOpts) (blockResult, error) {
	origin := blockOrigin(block, band.XRes, band.YRes, band.Origin)
	blockBuf := make([]float64, block.H*block.W)
	if err := lockedRead(band, block, blockBuf); err != nil {
		return blockResult{}, eris.Wrapf(err, "celltools: read block [%d, %d]", block.X0, block.Y0)
	}

	res := blockResult{cells: make(map[s2.CellID][]float64), report: newRangeReport()}
	for pix, value := range blockBuf {
		if math.IsNaN(value) || (band.HasNoData && value == band.NoData) {
			res.report.NoData++
			continue
		}
		if value < opts.ValidMin || value > opts.ValidMax {
			res.report.OutOfRange++
			continue
		}
		res.report.Valid++
		res.report.Min = math.Min(res.report.Min, value)
		res.report.Max = math.Max(res.report.Max, value)

		// GDAL is row-major
		row := pix / block.W
		col := pix % block.W
		lat := origin.Lat + (float64(row)+0.5)*band.YRes
		lng := origin.Lng + (float64(col)+0.5)*band.XRes

		cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng)).Parent(opts.S2Lvl)
		res.cells[cell] = append(res.cells[cell], value)
	}
	return res, nil
}

// Locking is required to read from compressed rasters.
func lockedRead(band *BandContainer, block godal.Block, blockBuf []float64) error {
	band.mu.Lock()
	defer band.mu.Unlock()
	return band.Band.Read(block.X0, block.Y0, blockBuf, block.W, block.H)
}

func groupByCell(results <-chan blockResult) (map[s2.CellID][]float64, RangeReport) {
	logrus.Debug("Entered groupByCell")
	outMap := make(map[s2.CellID][]float64)
	report := newRangeReport()
	for res := range results {
		report.merge(res.report)
		for cell, values := range res.cells {
			outMap[cell] = append(outMap[cell], values...)
		}
	}
	logrus.Debug("Exited groupByCell")
	return outMap, report
}

func aggCellResults(resMap map[s2.CellID][]float64, aggFunc series.AggFunc) []S2CellData {
	logrus.Debug("Entered aggCellResults")
	ids := make([]s2.CellID, 0, len(resMap))
	for id := range resMap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	aggResults := make([]S2CellData, 0, len(ids))
	for _, id := range ids {
		values := resMap[id]
		// Blocks arrive in any order; sort so order-sensitive reducers are stable.
		sort.Float64s(values)
		cell := s2.CellFromCellID(id)
		aggResults = append(aggResults, S2CellData{
			Cell:       id,
			Data:       aggFunc(values...),
			Count:      len(values),
			AreaM2:     cellArea(cell),
			GeomString: cellToWKT(cell),
		})
	}
	logrus.Debug("Exited aggCellResults")
	return aggResults
}

func getOriginAndResolution(ds *godal.Dataset) (Point, float64, float64, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return Point{}, 0, 0, eris.Wrap(err, "celltools: read geotransform")
	}
	origin := Point{gt[3], gt[0]}
	return origin, gt[1], gt[5], nil
}

func blockOrigin(block godal.Block, xRes, yRes float64, origin Point) Point {
	return Point{
		Lat: float64(block.Y0)*yRes + origin.Lat,
		Lng: float64(block.X0)*xRes + origin.Lng,
	}
}
