package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/miraveja/miraveja/version"
)

var RootCmd = &cobra.Command{
	Use:   "miraveja",
	Short: "miraveja " + version.Version,
	Long: `miraveja ` + version.Version + "." + `
AI-image gallery tool: extract generation metadata (prompt, sampler, seed...)
embedded in PNG / JPEG files, and serve the gallery.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

var (
	flagVerbose bool
	// FlagConfig is the --config value, read by subcommands via config.Load.
	FlagConfig string
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose (debug) logging")
	RootCmd.PersistentFlags().StringVarP(&FlagConfig, "config", "", "", "Config file path (TOML)")
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}
