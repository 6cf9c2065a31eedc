package builtin

import (
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/pkttype"
	"github.com/solcore/flowrt/port"
)

// Console renders every packet it receives via Packet.Render and logs it
// at INFO, with an optional colored "label: " prefix when stdout is a
// terminal.
var Console = &node.Type{
	Name:     "console",
	Category: "builtin.console",
	Options: options.Schema{
		{Name: "label", Type: "string", Default: "console"},
	},
	PortsIn: []port.Type{
		{Name: "IN", Dir: port.In, PacketType: pkttype.Any, Process: consoleProcess},
	},
	Open: consoleOpen,
}

type consoleState struct {
	label  string
	colors bool
}

func consoleOpen(_ *node.Instance, opts *options.Values) (any, error) {
	label, _ := opts.Get("label")
	return &consoleState{
		label:  label.(string),
		colors: term.IsTerminal(int(os.Stdout.Fd())),
	}, nil
}

func consoleProcess(priv any, _ int, _ int, pkt *packet.Packet) error {
	s := priv.(*consoleState)
	rendered := pkt.Render()
	if s.colors {
		logrus.Infof("%s: %s", color.CyanString(s.label), rendered)
	} else {
		logrus.Infof("%s: %s", s.label, rendered)
	}
	return nil
}
