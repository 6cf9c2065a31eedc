// Package cmd implements the flowrun command tree (part of C12): run,
// types, validate, and trace, sharing a single cobra root the way the
// teacher's own CLI binaries are structured.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "flowrun",
	Short: "Load and run flow-based-programming graphs",
	Long:  "flowrun compiles a specfile YAML document into a container node and runs it to completion or until interrupted.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
