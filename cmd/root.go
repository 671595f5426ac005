package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "live-ndvi",
	Short: "Earth Engine pipelines for the LIVE Rwanda impact evaluation",
	Long: `Builds the LIVE study's Earth Engine computations and submits them.

	Charts (computed and written locally):
		ndvi-trend   Cropland NDVI by day of year, 2016-2020 (MODIS)
		cloud-cover  Sentinel-2 cloud cover over the villages, 2016-2020
	Exports (submitted, not awaited):
		ndvi-values  Per-village NDVI for the June reference windows (CSV)
		ndvi-images  Cropland NDVI rasters for the reference windows (GeoTIFF)
		rainfall     Per-village monthly CHIRPS rainfall, 2016-2021 (CSV)
	Local tools:
		plan         Build every request without sending it
		fetch        Download exported files from a bucket
		summarize    Check and aggregate an exported NDVI raster to S2 cells`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setLogLevels()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./live-ndvi.yaml)")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.BoolP("debug", "d", false, "Debug output")
	flags.String("project", "", "Cloud project registered for Earth Engine")
	flags.String("credentials", "", "Service account key file (default: application default credentials)")
	flags.String("destination", "drive", "Export destination: drive or gcs")
	flags.String("folder", "", "Drive folder for exports")
	flags.String("bucket", "", "Cloud Storage bucket for exports")
	flags.Bool("dry-run", false, "Build requests without sending them")
	flags.String("out", ".", "Directory for local outputs")

	for _, name := range []string{"verbose", "debug", "project", "credentials", "destination", "folder", "bucket", "dry-run", "out"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			logrus.Exit(1)
		}
	}
}

// initConfig reads a .env file, the config file and LIVE_ environment
// variables, in increasing order of precedence below flags.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Could not read .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("live-ndvi")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("LIVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			logrus.Warnf("Could not read config: %v", err)
		}
		return
	}
	logrus.Debugf("Using config file %s", viper.ConfigFileUsed())
}

func setLogLevels() {
	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	} else if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}
