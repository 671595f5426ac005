package cmd

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"live-ndvi/cellsio"
	"live-ndvi/study"
)

var ndviTrendCmd = &cobra.Command{
	Use:   "ndvi-trend",
	Short: "Chart cropland NDVI by day of year for 2016-2020",
	Long: `Computes the mean MODIS NDVI over the region's cropland for every
	16-day composite of 2016-2020 and writes two charts to --out:

		ndvi_doy_by_year.csv   one column per year
		ndvi_doy_average.csv   across-year mean

	Each chart gets a .yaml file with its display options, and both are
	also written in long form to ndvi_trend.parquet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPlatform(cmd.Context())
		if err != nil {
			return err
		}
		charts, err := study.RunNDVITrend(cmd.Context(), p)
		if err != nil {
			return err
		}
		return saveCharts(charts, "ndvi_trend.parquet")
	},
}

var cloudCoverCmd = &cobra.Command{
	Use:   "cloud-cover",
	Short: "Chart Sentinel-2 cloud cover over the villages for 2016-2020",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPlatform(cmd.Context())
		if err != nil {
			return err
		}
		chart, err := study.RunCloudCover(cmd.Context(), p)
		if err != nil {
			return err
		}
		return saveCharts([]study.Chart{chart}, "cloud_cover.parquet")
	},
}

// saveCharts writes charts under --out. A dry run computes nothing, so its
// empty charts are not written over real ones.
func saveCharts(charts []study.Chart, parquetName string) error {
	if viper.GetBool("dry-run") {
		logrus.Infof("Dry run, not writing %d charts to %s", len(charts), viper.GetString("out"))
		return nil
	}
	return writeCharts(charts, viper.GetString("out"), parquetName)
}

// writeCharts stores every chart as CSV with a YAML spec, then all of them
// together as parquet.
func writeCharts(charts []study.Chart, dir, parquetName string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create %s", dir)
	}

	tables := make([]cellsio.NamedTable, 0, len(charts))
	for _, c := range charts {
		if len(c.Table.Rows) == 0 {
			logrus.Warnf("Chart %s is empty", c.Spec.Name)
		}
		if err := cellsio.WriteTableCSV(c.Table, filepath.Join(dir, c.Spec.Name+".csv")); err != nil {
			return err
		}
		if err := cellsio.WriteYAML(c.Spec, filepath.Join(dir, c.Spec.Name+".yaml")); err != nil {
			return err
		}
		tables = append(tables, cellsio.NamedTable{Name: c.Spec.Name, Table: c.Table})
		logrus.Infof("Wrote chart %s (%d rows)", c.Spec.Name, len(c.Table.Rows))
	}
	return cellsio.WriteTablesParquet(tables, filepath.Join(dir, parquetName))
}

func init() {
	rootCmd.AddCommand(ndviTrendCmd)
	rootCmd.AddCommand(cloudCoverCmd)
}
