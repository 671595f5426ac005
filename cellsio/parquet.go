package cellsio

import (
	"math"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"live-ndvi/celltools"
	"live-ndvi/series"
)

type CellRow struct {
	S2id   int64   `parquet:"s2_id"`
	Value  float64 `parquet:"value"`
	Count  int64   `parquet:"count"`
	AreaM2 float64 `parquet:"area_m2"`
	Geom   string  `parquet:"geom"`
}

// ChartRow is one point of a chart in long form.
type ChartRow struct {
	Chart  string  `parquet:"chart"`
	Key    string  `parquet:"x_key"`
	X      float64 `parquet:"x"`
	Series string  `parquet:"series"`
	Value  float64 `parquet:"value"`
}

// NamedTable is a chart table with the name it is stored under.
type NamedTable struct {
	Name  string
	Table series.Table
}

func writeParquet[T any](path string, rows []T) (err error) {
	output, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "cellsio: create %s", path)
	}
	defer func() {
		if cerr := output.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "cellsio: close %s", path)
		}
	}()

	schema := parquet.SchemaOf(new(T))
	writer := parquet.NewGenericWriter[T](output, schema, parquet.Compression(&parquet.Snappy))
	if _, err := writer.Write(rows); err != nil {
		return eris.Wrapf(err, "cellsio: write %s", path)
	}
	if err := writer.Close(); err != nil {
		return eris.Wrapf(err, "cellsio: finish %s", path)
	}
	logrus.Infof("Wrote %d rows to %s", len(rows), path)
	return nil
}

// WriteCellsParquet writes the cell summary as a snappy compressed parquet
// file.
func WriteCellsParquet(cellData []celltools.S2CellData, path string) error {
	rows := make([]CellRow, len(cellData))
	for i, cell := range cellData {
		rows[i] = CellRow{int64(cell.Cell), cell.Data, int64(cell.Count), cell.AreaM2, cell.GeomString}
	}
	return writeParquet(path, rows)
}

// WriteTablesParquet writes chart tables in long form, one row per
// non-missing point.
func WriteTablesParquet(tables []NamedTable, path string) error {
	var rows []ChartRow
	for _, nt := range tables {
		for _, r := range nt.Table.Rows {
			for col, v := range r.Values {
				if math.IsNaN(v) || col >= len(nt.Table.Columns) {
					continue
				}
				rows = append(rows, ChartRow{
					Chart:  nt.Name,
					Key:    r.Key,
					X:      r.X,
					Series: nt.Table.Columns[col],
					Value:  v,
				})
			}
		}
	}
	return writeParquet(path, rows)
}
