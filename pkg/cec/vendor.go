package cec

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// SimpLink vendor command codes sent by LG displays.
const (
	simplinkInit               byte = 0x01
	simplinkAckInit            byte = 0x02
	simplinkConnectRequest     byte = 0x04
	simplinkSetDeviceMode      byte = 0x05
	simplinkRequestPowerStatus byte = 0xA0

	simplinkInitTypeRecorder byte = 0x05
)

// vendorHandshakes maps our advertised vendor id to the replies owed for
// each vendor command code the display sends.
var vendorHandshakes = map[uint32]map[byte]Message{
	VendorLG: {
		simplinkInit:               VendorCommand{Data: []byte{simplinkAckInit, simplinkInitTypeRecorder}},
		simplinkConnectRequest:     VendorCommand{Data: []byte{simplinkSetDeviceMode, simplinkInitTypeRecorder}},
		simplinkRequestPowerStatus: ReportPowerStatus{Status: PowerOn},
	},
}

// VendorReply returns the handshake reply for a vendor command received
// while advertising vendorID, if one is defined.
func VendorReply(vendorID uint32, cmd VendorCommand) (Message, bool) {
	if len(cmd.Data) == 0 {
		return nil, false
	}
	table, ok := vendorHandshakes[vendorID]
	if !ok {
		return nil, false
	}
	reply, ok := table[cmd.Data[0]]
	return reply, ok
}

func (c *Controller) handleVendorCommand(from LogicalAddress, cmd VendorCommand) {
	reply, ok := VendorReply(c.opts.VendorID, cmd)
	if !ok {
		log.Debug().
			Str("from", from.String()).
			Hex("data", cmd.Data).
			Msg("Unhandled vendor command")
		return
	}

	log.Info().
		Str("from", from.String()).
		Str("code", fmt.Sprintf("0x%02x", cmd.Data[0])).
		Str("reply", reply.Opcode().String()).
		Msg("Vendor handshake")
	c.reply(from, reply)
}
