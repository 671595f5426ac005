package cmd

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"live-ndvi/gcsfetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [prefix]",
	Short: "Download finished exports from the export bucket",
	Long: `Downloads every object of --bucket whose name starts with prefix
	(for example NDVI_ or Rainfall) into --out. Only exports sent with
	--destination gcs end up in the bucket.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket := viper.GetString("bucket")
		if bucket == "" {
			return eris.New("fetch needs --bucket")
		}
		var prefix string
		if len(args) == 1 {
			prefix = args[0]
		}

		store, err := gcsfetch.NewGCS(cmd.Context(), clientOptions()...)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logrus.Error(err)
			}
		}()

		paths, err := gcsfetch.Fetch(cmd.Context(), store, bucket, prefix, viper.GetString("out"), viper.GetInt("downloads"))
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().Int("downloads", 4, "Files to download at once")
	if err := viper.BindPFlag("downloads", fetchCmd.Flags().Lookup("downloads")); err != nil {
		logrus.Exit(1)
	}
}
