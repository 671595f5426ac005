package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"google.golang.org/api/option"

	"live-ndvi/eeclient"
)

func destinationFromConfig() eeclient.Destination {
	return eeclient.Destination{
		Kind:   viper.GetString("destination"),
		Folder: viper.GetString("folder"),
		Bucket: viper.GetString("bucket"),
	}
}

func clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if path := viper.GetString("credentials"); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	return opts
}

// newPlatform connects to Earth Engine, or returns a Recorder when
// --dry-run is set.
func newPlatform(ctx context.Context) (eeclient.Platform, error) {
	dest := destinationFromConfig()
	if viper.GetBool("dry-run") {
		logrus.Info("Dry run, nothing will be submitted")
		return &eeclient.Recorder{Dest: dest}, nil
	}
	return eeclient.New(ctx, viper.GetString("project"), dest, clientOptions()...)
}
