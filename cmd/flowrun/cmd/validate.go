package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solcore/flowrt/cliutil"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <specfile.yaml>",
	Short: "Compile a specfile without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadGraph(args[0])
		if err != nil {
			cliutil.PrintRecursive(err)
			cliutil.CheckCLI(err)
			return nil
		}
		fmt.Printf("%s: ok (%d input ports, %d output ports)\n", t.Name, len(t.PortsIn), len(t.PortsOut))
		return nil
	},
}
