package ethermq

import (
	"encoding/binary"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// describeFrame returns a short human readable summary of f for debug logging. It never fails, a
// frame gopacket cannot make sense of is described by its raw address fields.
func describeFrame(f Frame) string {
	proto := layers.EthernetType(binary.BigEndian.Uint16(f.Prefix()[2:]))

	eth := &layers.Ethernet{}

	err := eth.DecodeFromBytes(f[FramePrefixSize:], gopacket.NilDecodeFeedback)
	if err != nil {
		return fmt.Sprintf(
			"dst: %s, src: %s, proto: %s, len: %d",
			f.Destination(), f.Source(), proto, len(f),
		)
	}

	return fmt.Sprintf(
		"dst: %s, src: %s, proto: %s, type: %s, len: %d",
		eth.DstMAC, eth.SrcMAC, proto, eth.EthernetType, len(f),
	)
}
