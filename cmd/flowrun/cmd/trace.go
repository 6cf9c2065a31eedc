package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/solcore/flowrt/builtin"
	"github.com/solcore/flowrt/cliutil"
	"github.com/solcore/flowrt/inspect"
	"github.com/solcore/flowrt/mainloop"
)

func init() {
	rootCmd.AddCommand(traceCmd)
}

var traceCmd = &cobra.Command{
	Use:   "trace <specfile.yaml>",
	Short: "Run a graph, printing the canonical DEBUG trace to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer cliutil.RecoverCLI(1)
		defer builtin.Registry.Dispose()
		inspect.Install(inspect.NewTracer(os.Stdout).Hooks())

		loop := mainloop.New()
		mainloop.Install(loop)

		root, err := startGraph(args[0])
		if err != nil {
			cliutil.CheckCLI(err)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, unix.SIGTERM, unix.SIGINT, unix.SIGQUIT)
		go func() {
			<-sigCh
			loop.Stop()
		}()

		loop.Run()
		return stopGraph(root)
	},
}
