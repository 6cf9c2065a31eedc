package builtin

import (
	"time"

	"github.com/solcore/flowrt/flowerr"
	"github.com/solcore/flowrt/mainloop"
	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/pkttype"
	"github.com/solcore/flowrt/port"
)

// Timer emits an EMPTY tick packet on OUT every interval_ms milliseconds,
// stopping after repeat ticks (0 means unbounded) or at Close, whichever
// comes first. Ticks are scheduled through the installed mainloop driver,
// so the send itself always runs on the mainloop thread like every other
// dispatch in the process.
var Timer = &node.Type{
	Name:     "timer",
	Category: "builtin.timer",
	Options: options.Schema{
		{Name: "interval_ms", Type: "int", Default: "1000"},
		{Name: "repeat", Type: "int", Default: "0"},
	},
	PortsOut: []port.Type{
		{Name: "OUT", Dir: port.Out, PacketType: pkttype.Empty},
	},
	Open:  timerOpen,
	Close: timerClose,
}

type timerState struct {
	cancel func()
}

func timerOpen(inst *node.Instance, opts *options.Values) (any, error) {
	intervalRaw, _ := opts.Get("interval_ms")
	repeatRaw, _ := opts.Get("repeat")
	interval := time.Duration(intervalRaw.(int64)) * time.Millisecond
	repeat := repeatRaw.(int64)

	loop := mainloop.Current()
	if loop == nil {
		return nil, flowerr.New(flowerr.NotFound, "timer: no mainloop driver installed")
	}

	s := &timerState{}
	send := sendFunc(inst)
	ticks := int64(0)
	// the callback only ever runs on the loop thread, so ticks needs no
	// synchronization
	s.cancel = loop.Ticker(interval, func() {
		if err := send(0, packet.NewEmpty()); err != nil {
			emitErrorf(inst, 1, "timer: send: %v", err)
		}
		ticks++
		if repeat > 0 && ticks >= repeat {
			s.cancel()
		}
	})
	return s, nil
}

func timerClose(_ *node.Instance, priv any) error {
	priv.(*timerState).cancel()
	return nil
}
