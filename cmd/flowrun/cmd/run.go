package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/solcore/flowrt/builtin"
	"github.com/solcore/flowrt/cliutil"
	"github.com/solcore/flowrt/inspect"
	"github.com/solcore/flowrt/mainloop"
	"github.com/solcore/flowrt/node"
)

var (
	flagWatch bool
	flagTrace bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "rebuild and restart the graph when the specfile changes")
	runCmd.Flags().BoolVarP(&flagTrace, "trace", "t", false, "print the canonical DEBUG trace to stderr while running")
}

var runCmd = &cobra.Command{
	Use:   "run <specfile.yaml>",
	Short: "Instantiate a graph and run it until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer cliutil.RecoverCLI(1)
		defer builtin.Registry.Dispose()
		path := args[0]

		if flagTrace {
			inspect.Install(inspect.NewTracer(os.Stderr).Hooks())
		}

		// the driver must be in place before the graph opens: timer and
		// exec nodes resolve it from their Open hooks
		loop := mainloop.New()
		mainloop.Install(loop)

		root, err := startGraph(path)
		if err != nil {
			cliutil.CheckCLI(err)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, unix.SIGTERM, unix.SIGINT, unix.SIGQUIT)
		go func() {
			<-sigCh
			loop.Stop()
		}()

		if flagWatch {
			closer, err := watchSpec(path, loop, &root)
			if err != nil {
				cliutil.CheckCLI(err)
			}
			defer closer.Close()
		}

		// this goroutine is the mainloop thread from here on: every
		// timer tick, exec line, and watch-triggered rebuild dispatches
		// inside Run
		loop.Run()
		return stopGraph(root)
	},
}

func startGraph(path string) (*node.Instance, error) {
	t, err := loadGraph(path)
	if err != nil {
		return nil, err
	}
	return node.New(t, "", 0, 0, nil, nil, nil)
}

func stopGraph(root *node.Instance) error {
	return root.Close(nil)
}

// watchSpec rebuilds the graph whenever the specfile changes on disk.
// The fsnotify pump goroutine never touches the graph itself; each
// rebuild (teardown of the old root included) is posted to the loop so
// it runs on the mainloop thread like every other dispatch.
func watchSpec(path string, loop *mainloop.Loop, root **node.Instance) (io.Closer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				loop.Post(func() {
					newRoot, err := rebuild(path)
					if err != nil {
						logrus.WithError(err).Warn("rebuild failed, keeping previous graph running")
						return
					}
					if err := stopGraph(*root); err != nil {
						logrus.WithError(err).Warn("error tearing down previous graph")
					}
					*root = newRoot
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logrus.WithError(err).Warn("watcher error")
			}
		}
	}()
	return watcher, nil
}

func rebuild(path string) (*node.Instance, error) {
	var s *spinner.Spinner
	if term.IsTerminal(int(os.Stderr.Fd())) {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " rebuilding graph"
		s.Start()
		defer s.Stop()
	}
	return startGraph(path)
}
