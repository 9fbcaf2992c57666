package ethermq

import (
	"bytes"
	"fmt"
	"net"
	"strings"
)

// Frame is one raw frame as read from the tap device, *including* the packet information prefix.
// The prefix is never touched, it travels with the frame end to end.
type Frame []byte

// NewFrame returns b as a Frame, or ErrUndersizedFrame if b is too short to hold the prefix and
// both hardware addresses.
func NewFrame(b []byte) (Frame, error) {
	if len(b) < MinFrameSize {
		return nil, fmt.Errorf(
			"%w: frame must be at least %d bytes, got %d bytes", ErrUndersizedFrame, MinFrameSize, len(b),
		)
	}

	return Frame(b), nil
}

// Prefix returns the packet information prefix of the frame.
func (f Frame) Prefix() []byte {
	return f[:FramePrefixSize]
}

// Destination returns the destination hardware address field of the frame.
func (f Frame) Destination() net.HardwareAddr {
	return net.HardwareAddr(f[FramePrefixSize : FramePrefixSize+HardwareAddrSize])
}

// Source returns the source hardware address field of the frame.
func (f Frame) Source() net.HardwareAddr {
	return net.HardwareAddr(f[FramePrefixSize+HardwareAddrSize : MinFrameSize])
}

// NodeIdentity is the hardware address of the local interface -- it is how a node recognizes its
// own traffic.
type NodeIdentity [HardwareAddrSize]byte

// NewNodeIdentity returns a NodeIdentity for the hardware address addr.
func NewNodeIdentity(addr net.HardwareAddr) (NodeIdentity, error) {
	var id NodeIdentity

	if len(addr) != HardwareAddrSize {
		return id, fmt.Errorf(
			"%w: hardware address must be %d bytes, got %d bytes", ErrBind, HardwareAddrSize, len(addr),
		)
	}

	copy(id[:], addr)

	return id, nil
}

// Equal reports whether the hardware address addr is this identity.
func (n NodeIdentity) Equal(addr net.HardwareAddr) bool {
	return bytes.Equal(n[:], addr)
}

// HardwareAddr returns the identity as a net.HardwareAddr.
func (n NodeIdentity) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(n[:])
}

// String returns the upper-case, colon separated hex form of the identity. This is also the node
// topic, so it has to match what every other node on the segment derives from our address.
func (n NodeIdentity) String() string {
	return strings.ToUpper(n.HardwareAddr().String())
}

func isUnicast(addr net.HardwareAddr) bool {
	return len(addr) == HardwareAddrSize && addr[0]&0x01 == 0
}
