package packet

import (
	"fmt"
	"strings"

	"github.com/solcore/flowrt/pkttype"
)

// Render produces the canonical textual representation used in inspector
// traces and golden-file tests (§6 of the design): <empty>, <any>,
// <true>|<false>, <0xNN>, <val:I|min:I|max:I|step:I>, <"string">,
// <mem=P|size=S|refcnt=R|type=T|parent=P>, an ISO-8601 UTC timestamp, or
// <COMPOSED-PACKET {...}> for composed packets.
func (p *Packet) Render() string {
	switch p.Type {
	case pkttype.Empty:
		return "<empty>"
	case pkttype.Any:
		return "<any>"
	case pkttype.Boolean:
		v, _ := p.Boolean()
		if v {
			return "<true>"
		}
		return "<false>"
	case pkttype.Byte:
		v, _ := p.Byte()
		return fmt.Sprintf("<0x%02X>", v)
	case pkttype.IRange:
		v, _ := p.IRange()
		return fmt.Sprintf("<val:%d|min:%d|max:%d|step:%d>", v.Val, v.Min, v.Max, v.Step)
	case pkttype.DRange:
		v, _ := p.DRange()
		return fmt.Sprintf("<val:%g|min:%g|max:%g|step:%g>", v.Val, v.Min, v.Max, v.Step)
	case pkttype.String:
		v, _ := p.String()
		return fmt.Sprintf("<%q>", v)
	case pkttype.Blob:
		b, _ := p.Blob()
		parent := "<nil>"
		if b.Parent() != nil {
			parent = fmt.Sprintf("%p", b.Parent())
		}
		return fmt.Sprintf("<mem=%p|size=%d|refcnt=%d|type=%s|parent=%s>", b.Mem(), b.Size(), b.RefCount(), b.Type(), parent)
	case pkttype.Timestamp:
		v, _ := p.Timestamp()
		return "<" + v.UTC().Format("2006-01-02T15:04:05Z") + ">"
	case pkttype.Error:
		v, _ := p.Error()
		return fmt.Sprintf("<code:%d|message:%q>", v.Code, v.Message)
	default:
		if p.Type.Composed {
			children, _ := p.Members()
			parts := make([]string, len(children))
			for i, c := range children {
				parts[i] = c.Render()
			}
			return "<COMPOSED-PACKET {" + strings.Join(parts, "") + "}>"
		}
		return fmt.Sprintf("<%v>", p.value)
	}
}
