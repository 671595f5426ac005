package cmd

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"live-ndvi/cellsio"
	"live-ndvi/celltools"
	"live-ndvi/series"
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [tif_file] [output_path]",
	Short: "Check an exported NDVI raster and aggregate it to S2 cells",
	Long: `Reads an NDVI GeoTIFF exported by ndvi-images, counts pixels
	outside [-1, 1], and aggregates the valid pixels into S2 cells. The
	output is parquet unless output_path ends in .csv.

	Use tiled rasters for best performance. Untiled rasters can exceed
	memory limits when stripes are read.

	Options:
		--numWorkers: Number of workers to spawn for parallel processing. Not recommended
		              to exceed number of CPU cores.
		--s2Lvl:      S2 cell level to generate results for. Essentially output resolution.
		--aggFunc:    Function to use when aggregating to S2 cell. Default is the mean,
		              choose from: mean, sum, max, min, first
		--strict:     Fail when any pixel is outside the NDVI range.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := celltools.NDVIOpts()
		opts.NumWorkers = viper.GetInt("numWorkers")
		opts.S2Lvl = viper.GetInt("s2Lvl")
		opts.AggFunc = chooseAggFunc(viper.GetString("aggFunc"))

		summary, err := celltools.SummarizeRaster(args[0], opts)
		if err != nil {
			return err
		}
		r := summary.Range
		logrus.Infof("%d valid pixels in [%v, %v], %d nodata, %d cells", r.Valid, r.Min, r.Max, r.NoData, len(summary.Cells))
		if !r.InRange() {
			logrus.Warnf("%d pixels of %s are outside [-1, 1]", r.OutOfRange, args[0])
			if viper.GetBool("strict") {
				return eris.Errorf("%s has %d out-of-range pixels", args[0], r.OutOfRange)
			}
		}

		if strings.EqualFold(filepath.Ext(args[1]), ".csv") {
			return cellsio.WriteCellsCSV(summary.Cells, args[1])
		}
		return cellsio.WriteCellsParquet(summary.Cells, args[1])
	},
}

func chooseAggFunc(funcFlag string) series.AggFunc {
	fn, ok := series.AggFuncByName(funcFlag)
	if !ok {
		logrus.Warnf("Aggregation function %s not recognized, using mean", funcFlag)
		return series.Mean
	}
	return fn
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	defaults := celltools.NDVIOpts()
	summarizeCmd.Flags().IntP("numWorkers", "n", defaults.NumWorkers, "Number of workers to spawn for parallel processing")
	summarizeCmd.Flags().IntP("s2Lvl", "l", defaults.S2Lvl, "S2 cell level to generate results for. Essentially output resolution")
	summarizeCmd.Flags().StringP("aggFunc", "a", "mean", "Function to use when aggregating to S2 cell: mean, sum, max, min, first")
	summarizeCmd.Flags().Bool("strict", false, "Fail when any pixel is outside [-1, 1]")

	for _, name := range []string{"numWorkers", "s2Lvl", "aggFunc", "strict"} {
		if err := viper.BindPFlag(name, summarizeCmd.Flags().Lookup(name)); err != nil {
			logrus.Exit(1)
		}
	}
}
