package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solcore/flowrt/builtin"
	"github.com/solcore/flowrt/pkttype"
)

func init() {
	rootCmd.AddCommand(typesCmd)
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List registered node types and packet types",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("node types:")
		for _, t := range builtin.Registry.ByCategoryPrefix("") {
			fmt.Printf("  %-20s %s\n", t.Name, t.Category)
		}
		fmt.Println("packet types:")
		for _, t := range pkttype.ByCategoryPrefix("") {
			fmt.Printf("  %-20s %s\n", t.Name, t.Category)
		}
		return nil
	},
}
