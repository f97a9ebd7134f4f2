package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var root = &cobra.Command{
		Use:           "daydigest",
		Short:         "Extract reading clusters, task sessions and search missions from a day of activity",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (default searches ./config and .)")
	root.AddCommand(digestCMD(), serveCMD(), tokenCMD())
	return root
}
