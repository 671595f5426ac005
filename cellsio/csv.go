package cellsio

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"live-ndvi/celltools"
	"live-ndvi/series"
)

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(path string, header []string, rows func(yield func([]string) error) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "cellsio: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "cellsio: close %s", path)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "cellsio: write header")
	}
	if err := rows(w.Write); err != nil {
		return eris.Wrap(err, "cellsio: write row")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "cellsio: flush csv")
	}
	return f.Sync()
}

// WriteTableCSV writes a chart table in wide form: the x label, then one
// column per series. Missing values are left empty.
func WriteTableCSV(table series.Table, path string) error {
	header := append([]string{table.XLabel}, table.Columns...)
	return writeCSV(path, header, func(write func([]string) error) error {
		for _, row := range table.Rows {
			record := make([]string, 0, len(row.Values)+1)
			record = append(record, row.Key)
			for _, v := range row.Values {
				record = append(record, formatValue(v))
			}
			if err := write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCellsCSV writes one line per S2 cell.
func WriteCellsCSV(cellData []celltools.S2CellData, path string) error {
	header := []string{"s2_id", "value", "count", "area_m2", "geom"}
	return writeCSV(path, header, func(write func([]string) error) error {
		for i, cell := range cellData {
			if i%10000 == 0 {
				logrus.Infof("Writing cell %d", i)
			}
			record := []string{
				strconv.FormatInt(int64(cell.Cell), 10),
				formatValue(cell.Data),
				strconv.Itoa(cell.Count),
				formatValue(cell.AreaM2),
				cell.GeomString,
			}
			if err := write(record); err != nil {
				return err
			}
		}
		return nil
	})
}
