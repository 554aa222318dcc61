//go:build linux

package vchiq

import (
	"encoding/binary"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/urmzd/cecvol/pkg/cec"
)

// CEC notification reasons (bit flags in the low half of word 0).
const (
	cecNotifyTX              = 1 << 0
	cecNotifyRX              = 1 << 1
	cecNotifyButtonPressed   = 1 << 2
	cecNotifyButtonRelease   = 1 << 3
	cecNotifyRemotePressed   = 1 << 4
	cecNotifyRemoteRelease   = 1 << 5
	cecNotifyLogicalAddr     = 1 << 6
	cecNotifyTopology        = 1 << 7
	cecNotifyLogicalAddrLost = 1 << 15
)

const (
	cecNotifySize = 5 * 4
	tvNotifySize  = 3 * 4
)

// cecNotification is one record read from the CEC notify service.
type cecNotification struct {
	reason uint16
	length int
	rc     uint8
	params [4]uint32
}

func decodeCECNotification(b []byte) cecNotification {
	w0 := binary.LittleEndian.Uint32(b[0:4])
	n := cecNotification{
		reason: uint16(w0 & 0xFFFF),
		length: int((w0 >> 16) & 0xFF),
		rc:     uint8(w0 >> 24),
	}
	for i := range n.params {
		n.params[i] = binary.LittleEndian.Uint32(b[4+4*i:])
	}
	return n
}

// frame returns the bus frame carried in params 1-4.
func (n cecNotification) frame() []byte {
	var raw [16]byte
	for i, p := range n.params {
		binary.LittleEndian.PutUint32(raw[4*i:], p)
	}
	length := n.length
	if length > len(raw) {
		length = len(raw)
	}
	out := make([]byte, length)
	copy(out, raw[:length])
	return out
}

// HDMIReason is a bit set describing a display/HDMI status change.
type HDMIReason uint32

const (
	HDMIUnplugged       HDMIReason = 1 << 0
	HDMIAttached        HDMIReason = 1 << 1
	HDMIDVI             HDMIReason = 1 << 2
	HDMIHDMI            HDMIReason = 1 << 3
	HDMIHDCPUnauth      HDMIReason = 1 << 4
	HDMIHDCPAuth        HDMIReason = 1 << 5
	HDMIHDCPKeyDownload HDMIReason = 1 << 6
	HDMIHDCPSRMDownload HDMIReason = 1 << 7
	HDMIChangingMode    HDMIReason = 1 << 8
)

var hdmiReasonNames = []struct {
	bit  HDMIReason
	name string
}{
	{HDMIUnplugged, "unplugged"},
	{HDMIAttached, "attached"},
	{HDMIDVI, "dvi"},
	{HDMIHDMI, "hdmi"},
	{HDMIHDCPUnauth, "hdcp_unauth"},
	{HDMIHDCPAuth, "hdcp_auth"},
	{HDMIHDCPKeyDownload, "hdcp_key_download"},
	{HDMIHDCPSRMDownload, "hdcp_srm_download"},
	{HDMIChangingMode, "changing_mode"},
}

func (r HDMIReason) String() string {
	var parts []string
	for _, n := range hdmiReasonNames {
		if r&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// HDMIStatus is one record read from the TV notify service.
type HDMIStatus struct {
	Reason HDMIReason
	Param1 uint32
	Param2 uint32
}

func decodeHDMIStatus(b []byte) HDMIStatus {
	return HDMIStatus{
		Reason: HDMIReason(binary.LittleEndian.Uint32(b[0:4])),
		Param1: binary.LittleEndian.Uint32(b[4:8]),
		Param2: binary.LittleEndian.Uint32(b[8:12]),
	}
}

// SetHDMICallback registers the handler for display/HDMI status changes.
func (h *HardwareInterface) SetHDMICallback(fn func(HDMIStatus)) {
	h.cbMu.Lock()
	h.hdmiCb = fn
	h.cbMu.Unlock()
}

// dispatchCEC routes one decoded notification to the registered callbacks.
func (h *HardwareInterface) dispatchCEC(n cecNotification) {
	switch {
	case n.reason&cecNotifyRX != 0:
		cmd, err := cec.Parse(n.frame())
		if err != nil {
			log.Warn().Err(err).Str("frame", cec.FormatFrame(n.frame())).Msg("Failed to decode received CEC frame")
			return
		}
		h.cbMu.Lock()
		fn := h.rxCb
		h.cbMu.Unlock()
		if fn != nil {
			fn(cmd)
		}

	case n.reason&cecNotifyTX != 0:
		if n.rc != 0 {
			log.Warn().Uint8("rc", n.rc).Str("frame", cec.FormatFrame(n.frame())).Msg("CEC transmit reported failure")
		}
		cmd, err := cec.Parse(n.frame())
		if err != nil {
			log.Warn().Err(err).Str("frame", cec.FormatFrame(n.frame())).Msg("Failed to decode transmitted CEC frame")
			return
		}
		h.cbMu.Lock()
		fn := h.txCb
		h.cbMu.Unlock()
		if fn != nil {
			fn(cmd)
		}

	case n.reason&cecNotifyLogicalAddr != 0:
		log.Info().
			Str("logical_address", cec.LogicalAddress(n.params[0]&0xF).String()).
			Str("physical_address", cec.PhysicalAddress(n.params[1]&0xFFFF).String()).
			Msg("CEC logical address allocated")

	case n.reason&cecNotifyLogicalAddrLost != 0:
		log.Warn().Uint32("previous", n.params[0]).Msg("CEC logical address lost")

	case n.reason&cecNotifyTopology != 0:
		log.Debug().Msg("CEC topology changed")

	case n.reason&(cecNotifyButtonPressed|cecNotifyButtonRelease|cecNotifyRemotePressed|cecNotifyRemoteRelease) != 0:
		log.Debug().Uint16("reason", n.reason).Uint32("param1", n.params[0]).Msg("CEC button notification")

	default:
		log.Debug().Uint16("reason", n.reason).Msg("Unhandled CEC notification")
	}
}

// cecNotifyLoop drains the CEC notify service until it closes.
func (h *HardwareInterface) cecNotifyLoop() {
	defer h.wg.Done()

	svc := h.services[svcCECNotify]
	buf := make([]byte, cecNotifySize)
	for svc.signal.Wait() {
		for {
			n, err := h.dequeue(svc, buf)
			if errors.Is(err, unix.EAGAIN) {
				break
			}
			if err != nil {
				if !h.closed.Load() {
					log.Error().Err(err).Msg("CEC notify dequeue failed")
				}
				return
			}
			if n < cecNotifySize {
				log.Info().Int("bytes", n).Msg("CEC notify channel closed")
				return
			}
			h.dispatchCEC(decodeCECNotification(buf))
		}
	}
}

// tvNotifyLoop drains the TV notify service until it closes.
func (h *HardwareInterface) tvNotifyLoop() {
	defer h.wg.Done()

	svc := h.services[svcTVNotify]
	buf := make([]byte, tvNotifySize)
	for svc.signal.Wait() {
		for {
			n, err := h.dequeue(svc, buf)
			if errors.Is(err, unix.EAGAIN) {
				break
			}
			if err != nil {
				if !h.closed.Load() {
					log.Error().Err(err).Msg("TV notify dequeue failed")
				}
				return
			}
			if n < tvNotifySize {
				log.Info().Int("bytes", n).Msg("TV notify channel closed")
				return
			}

			status := decodeHDMIStatus(buf)
			log.Debug().Str("reason", status.Reason.String()).Msg("HDMI status changed")

			h.cbMu.Lock()
			fn := h.hdmiCb
			h.cbMu.Unlock()
			if fn != nil {
				fn(status)
			}
		}
	}
}
