package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tauraamui/panoexport/pkg/log"
	"github.com/tauraamui/panoexport/pkg/panoexport"
)

// rootCmd hands every token to the panoexport resolver, which owns flag
// grammar and its warnings.
var rootCmd = &cobra.Command{
	Use:                "panoexport -i <stream> [options]",
	Short:              "Export camera images or panoramas from a recorded multi-camera stream",
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return panoexport.Run(args, panoexport.WithOutput(cmd.OutOrStdout()))
	},
}

func init() {
	log.Configure(os.Getenv("PANOEXPORT_LOGGING_LEVEL"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
