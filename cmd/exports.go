package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"live-ndvi/eeclient"
	"live-ndvi/study"
)

var ndviValuesCmd = &cobra.Command{
	Use:   "ndvi-values",
	Short: "Export per-village cropland NDVI for the June reference windows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPlatform(cmd.Context())
		if err != nil {
			return err
		}
		task, err := study.RunNDVITable(cmd.Context(), p)
		if err != nil {
			return err
		}
		printTasks(cmd.OutOrStdout(), task)
		return nil
	},
}

var ndviImagesCmd = &cobra.Command{
	Use:   "ndvi-images",
	Short: "Export one cropland NDVI raster per June reference window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPlatform(cmd.Context())
		if err != nil {
			return err
		}
		tasks, err := study.RunNDVIImages(cmd.Context(), p, viper.GetInt("parallel"))
		if err != nil {
			return err
		}
		printTasks(cmd.OutOrStdout(), tasks...)
		return nil
	},
}

var rainfallCmd = &cobra.Command{
	Use:   "rainfall",
	Short: "Export per-village monthly rainfall for 2016-2021",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPlatform(cmd.Context())
		if err != nil {
			return err
		}
		task, err := study.RunRainfall(cmd.Context(), p)
		if err != nil {
			return err
		}
		printTasks(cmd.OutOrStdout(), task)
		return nil
	},
}

func printTasks(w io.Writer, tasks ...eeclient.Task) {
	for _, t := range tasks {
		op := t.Operation
		if op == "" {
			op = "(not submitted)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Description, t.RequestID, op)
	}
	logrus.Infof("%d export(s) submitted; progress is reported by Earth Engine", len(tasks))
}

func init() {
	rootCmd.AddCommand(ndviValuesCmd)
	rootCmd.AddCommand(ndviImagesCmd)
	rootCmd.AddCommand(rainfallCmd)

	ndviImagesCmd.Flags().IntP("parallel", "p", 2, "Exports to submit at once")
	if err := viper.BindPFlag("parallel", ndviImagesCmd.Flags().Lookup("parallel")); err != nil {
		logrus.Exit(1)
	}
}
