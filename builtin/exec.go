package builtin

import (
	"bufio"
	"io"
	"os/exec"

	"github.com/creack/pty"
	"github.com/sirupsen/logrus"

	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/mainloop"
	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/pkttype"
	"github.com/solcore/flowrt/port"
)

// Exec runs a fixed shell command under a pty every time it receives a
// trigger on IN, streaming each output line as a STRING packet on OUT. A
// non-zero exit status is reported as an ERROR packet rather than failing
// the node itself.
//
// The trigger callback only starts the subprocess; reading its output
// happens on a goroutine that never dispatches itself — every line and
// the final completion are posted back to the mainloop thread, so the
// process callback returns immediately and the graph keeps running while
// the command does.
var Exec = &node.Type{
	Name:     "exec",
	Category: "builtin.exec",
	Options: options.Schema{
		{Name: "command", Type: "string", Default: ""},
	},
	PortsIn: []port.Type{
		{Name: "IN", Dir: port.In, PacketType: pkttype.Any, Process: execTrigger},
	},
	PortsOut: []port.Type{
		{Name: "OUT", Dir: port.Out, PacketType: pkttype.String},
	},
	Open:  execOpen,
	Close: execClose,
}

type execState struct {
	inst    *node.Instance
	loop    *mainloop.Loop
	command string
	running *exec.Cmd // non-nil while a child is in flight; loop thread only
}

func execOpen(inst *node.Instance, opts *options.Values) (any, error) {
	cmd, _ := opts.Get("command")
	loop := mainloop.Current()
	if loop == nil {
		return nil, flowerr.New(flowerr.NotFound, "exec: no mainloop driver installed")
	}
	return &execState{inst: inst, loop: loop, command: cmd.(string)}, nil
}

func execTrigger(priv any, _ int, _ int, _ *packet.Packet) error {
	s := priv.(*execState)
	if s.command == "" {
		return flowerr.New(flowerr.InvalidPort, "exec node has no command configured")
	}
	if s.running != nil {
		return flowerr.New(flowerr.Busy, "exec: %q still running", s.command)
	}

	// s.command is the -c script itself, not a token to embed inside one;
	// os/exec already hands it to /bin/sh as a single argv entry, so no
	// quoting layer belongs between them.
	c := exec.Command("/bin/sh", "-c", s.command)
	f, err := pty.Start(c)
	if err != nil {
		emitErrorf(s.inst, 2, "exec: start %q: %v", s.command, err)
		return nil
	}
	s.running = c

	send := sendFunc(s.inst)
	go func() {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			s.loop.Post(func() {
				if err := send(0, packet.NewString(line)); err != nil {
					logrus.Warnf("exec: send: %v", err)
				}
			})
		}
		// a pty read error at EOF is routine (the kernel tears down the
		// slave side), so only log genuinely unexpected scan failures.
		if err := scanner.Err(); err != nil && err != io.EOF {
			logrus.Warnf("exec: reading output of %q: %v", s.command, err)
		}
		f.Close()
		waitErr := c.Wait()
		s.loop.Post(func() {
			s.running = nil
			if waitErr != nil {
				emitErrorf(s.inst, 2, "exec: %q exited: %v", s.command, waitErr)
			}
		})
	}()
	return nil
}

func execClose(_ *node.Instance, priv any) error {
	s := priv.(*execState)
	if s.running != nil && s.running.Process != nil {
		// the reader goroutine observes the kill as EOF + Wait error and
		// winds itself down
		return s.running.Process.Kill()
	}
	return nil
}
