package packet

import (
	"fmt"

	"github.com/solcore/flowrt/pkttype"
)

// NewErrorf builds an ERROR packet from a code and a printf-style message,
// the first of the three constructor shapes in the error-packet path (C9).
func NewErrorf(code int, format string, args ...interface{}) *Packet {
	return newSimple(pkttype.Error, ErrorValue{Code: code, Message: fmt.Sprintf(format, args...)})
}

// NewErrorErrno builds an ERROR packet from a code and an underlying errno
// (or any error), rendering err's message as the packet's message.
func NewErrorErrno(code int, err error) *Packet {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return newSimple(pkttype.Error, ErrorValue{Code: code, Message: msg})
}

// NewError builds an ERROR packet from a code and a literal message.
func NewError(code int, message string) *Packet {
	return newSimple(pkttype.Error, ErrorValue{Code: code, Message: message})
}

// Error returns the stored (code, message); ok is false if p is not
// ERROR.
func (p *Packet) Error() (ErrorValue, bool) {
	v, ok := p.value.(ErrorValue)
	return v, ok
}
