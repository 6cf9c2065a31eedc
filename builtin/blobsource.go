package builtin

import (
	"os"

	"github.com/solcore/flowrt/node"
	"github.com/solcore/flowrt/options"
	"github.com/solcore/flowrt/packet"
	"github.com/solcore/flowrt/pkttype"
	"github.com/solcore/flowrt/port"
)

// BlobSource reads a file into memory once at open and emits it as a
// single BLOB packet on OUT each time it is triggered on IN, cloning (Ref-
// bumping) the same backing buffer for every emission rather than
// re-reading the file.
var BlobSource = &node.Type{
	Name:     "blob-source",
	Category: "builtin.blobsource",
	Options: options.Schema{
		{Name: "path", Type: "string", Default: ""},
		{Name: "blob_type", Type: "string", Default: "raw"},
	},
	PortsIn: []port.Type{
		{Name: "IN", Dir: port.In, PacketType: pkttype.Any, Process: blobSourceTrigger},
	},
	PortsOut: []port.Type{
		{Name: "OUT", Dir: port.Out, PacketType: pkttype.Blob},
	},
	Open: blobSourceOpen,
}

type blobSourceState struct {
	inst *node.Instance
	blob *packet.Blob
}

func blobSourceOpen(inst *node.Instance, opts *options.Values) (any, error) {
	path, _ := opts.Get("path")
	blobType, _ := opts.Get("blob_type")

	var mem []byte
	if path.(string) != "" {
		data, err := os.ReadFile(path.(string))
		if err != nil {
			emitErrorf(inst, 3, "blob-source: read %q: %v", path.(string), err)
		} else {
			mem = data
		}
	}
	return &blobSourceState{inst: inst, blob: packet.NewBlob(mem, nil, blobType.(string))}, nil
}

func blobSourceTrigger(priv any, _ int, _ int, _ *packet.Packet) error {
	s := priv.(*blobSourceState)
	return sendFunc(s.inst)(0, packet.NewBlobPacket(s.blob))
}
