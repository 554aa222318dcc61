//go:build linux

package vchiq

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
	"unsafe"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/urmzd/cecvol/pkg/cec"
)

// CEC service command codes.
const (
	cmdRegisterCmd        = 0
	cmdRegisterAll        = 1
	cmdDeregisterCmd      = 2
	cmdDeregisterAll      = 3
	cmdSendMsg            = 4
	cmdGetLogicalAddr     = 5
	cmdAllocLogicalAddr   = 6
	cmdReleaseLogicalAddr = 7
	cmdGetTopology        = 8
	cmdSetVendorID        = 9
	cmdSetOSDName         = 10
	cmdGetPhysicalAddr    = 11
	cmdGetVendorID        = 12
	cmdPollAddr           = 13
	cmdSetLogicalAddr     = 14
	cmdAddDevice          = 15
	cmdSetPassive         = 16
)

const (
	sendMsgPayloadLen = 16
	sendMsgParamLen   = 4 + 4 + sendMsgPayloadLen + 4
	osdNameLen        = 14
)

// encodeSendMessage builds the SEND_MSG parameter block. payload is the
// frame without its header byte; an empty payload polls follower.
func encodeSendMessage(follower cec.LogicalAddress, payload []byte) ([]byte, error) {
	if len(payload) > cec.MaxFrameLen-1 {
		return nil, fmt.Errorf("%w: payload of %d bytes", cec.ErrInvalidLength, len(payload))
	}
	b := make([]byte, sendMsgParamLen)
	binary.LittleEndian.PutUint32(b[0:4], uint32(follower))
	binary.LittleEndian.PutUint32(b[4:8], uint32(len(payload)))
	copy(b[8:8+sendMsgPayloadLen], payload)
	binary.LittleEndian.PutUint32(b[8+sendMsgPayloadLen:], 0) // is_reply
	return b, nil
}

func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func encodeOSDName(name string) ([]byte, error) {
	if len(name) > osdNameLen || !utf8.ValidString(name) {
		return nil, fmt.Errorf("%w: osd name %q", cec.ErrInvalidText, name)
	}
	b := make([]byte, osdNameLen)
	copy(b, name)
	return b, nil
}

func encodeSetLogicalAddress(la cec.LogicalAddress, dt cec.DeviceType, vendorID uint32) []byte {
	b := make([]byte, 12)
	binary.LittleEndian.PutUint32(b[0:4], uint32(la))
	binary.LittleEndian.PutUint32(b[4:8], uint32(dt))
	binary.LittleEndian.PutUint32(b[8:12], vendorID)
	return b
}

// command queues one command on the CEC client service and, when
// wantReply is set, waits for its status word.
func (h *HardwareInterface) command(code uint32, params []byte, wantReply bool) (uint32, error) {
	if h.closed.Load() {
		return 0, ErrClosed
	}

	h.cmdMu.Lock()
	defer h.cmdMu.Unlock()

	svc := h.services[svcCECClient]
	if _, err := ioctl(h.fd, iocUseService, uintptr(svc.handle)); err != nil {
		return 0, fmt.Errorf("use service %s: %w", svc.name, err)
	}
	defer func() {
		if _, err := ioctl(h.fd, iocReleaseService, uintptr(svc.handle)); err != nil {
			log.Warn().Err(err).Str("service", svc.name).Msg("Release service failed")
		}
	}()

	binary.LittleEndian.PutUint32(h.cmdWord[:], code)
	h.elements[0] = element{data: unsafe.Pointer(&h.cmdWord[0]), size: uint32(len(h.cmdWord))}
	count := uint32(1)
	if len(params) > 0 {
		n := copy(h.cmdParam[:], params)
		h.elements[1] = element{data: unsafe.Pointer(&h.cmdParam[0]), size: uint32(n)}
		count = 2
	}
	h.queue = queueMessageArgs{
		handle:   svc.handle,
		count:    count,
		elements: unsafe.Pointer(&h.elements[0]),
	}
	if _, err := ioctlPtr(h.fd, iocQueueMessage, unsafe.Pointer(&h.queue)); err != nil {
		return 0, fmt.Errorf("queue command %d: %w", code, err)
	}

	if !wantReply {
		return 0, nil
	}
	return h.waitReply(svc)
}

// waitReply dequeues the next reply on svc, sleeping on its signal while
// nothing is pending.
func (h *HardwareInterface) waitReply(svc *service) (uint32, error) {
	for {
		n, err := h.dequeue(svc, h.cmdReply[:])
		switch {
		case errors.Is(err, unix.EAGAIN):
			if !svc.signal.Wait() {
				return 0, ErrClosed
			}
			continue
		case err != nil:
			return 0, fmt.Errorf("dequeue reply: %w", err)
		case n < 1:
			return 0, ErrMissingStatus
		}

		var word [4]byte
		copy(word[:], h.cmdReply[:n])
		return binary.LittleEndian.Uint32(word[:]), nil
	}
}

// Transmit sends cmd through the firmware and returns its delivery status.
// The initiator nibble is chosen by the firmware.
func (h *HardwareInterface) Transmit(cmd cec.Command) error {
	frame, err := cmd.Bytes()
	if err != nil {
		return err
	}
	param, err := encodeSendMessage(cmd.Destination, frame[1:])
	if err != nil {
		return err
	}

	status, err := h.command(cmdSendMsg, param, true)
	if err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	if err := statusError(status & 0xFF); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	return nil
}

func (h *HardwareInterface) LogicalAddress() (cec.LogicalAddress, error) {
	v, err := h.command(cmdGetLogicalAddr, nil, true)
	if err != nil {
		return cec.Broadcast, err
	}
	return cec.LogicalAddress(v & 0xF), nil
}

func (h *HardwareInterface) PhysicalAddress() (cec.PhysicalAddress, error) {
	v, err := h.command(cmdGetPhysicalAddr, nil, true)
	if err != nil {
		return cec.UnassignedPhysicalAddress, err
	}
	return cec.PhysicalAddress(v & 0xFFFF), nil
}

// AllocLogicalAddress asks the firmware to claim a logical address. The
// outcome is reported asynchronously on the notify service.
func (h *HardwareInterface) AllocLogicalAddress() error {
	_, err := h.command(cmdAllocLogicalAddr, nil, false)
	return err
}

func (h *HardwareInterface) SetVendorID(id uint32) error {
	_, err := h.command(cmdSetVendorID, encodeUint32(id), false)
	return err
}

func (h *HardwareInterface) SetOSDName(name string) error {
	param, err := encodeOSDName(name)
	if err != nil {
		return err
	}
	_, err = h.command(cmdSetOSDName, param, false)
	return err
}

// PollAddress polls la and reports whether some device acknowledged.
func (h *HardwareInterface) PollAddress(la cec.LogicalAddress) error {
	status, err := h.command(cmdPollAddr, encodeUint32(uint32(la)), true)
	if err != nil {
		return err
	}
	return statusError(status & 0xFF)
}

func (h *HardwareInterface) SetLogicalAddress(la cec.LogicalAddress, dt cec.DeviceType, vendorID uint32) error {
	status, err := h.command(cmdSetLogicalAddr, encodeSetLogicalAddress(la, dt, vendorID), true)
	if err != nil {
		return err
	}
	return statusError(status & 0xFF)
}

// SetPassive toggles passive mode, in which the firmware stops
// answering bus requests on our behalf.
func (h *HardwareInterface) SetPassive(enabled bool) error {
	var v uint32
	if enabled {
		v = 1
	}
	status, err := h.command(cmdSetPassive, encodeUint32(v), true)
	if err != nil {
		return err
	}
	return statusError(status & 0xFF)
}

// Claim announces osdName and vendorID and requests a logical address if
// none is held yet but the physical address is known.
func (h *HardwareInterface) Claim(osdName string, vendorID uint32) error {
	if err := h.SetOSDName(osdName); err != nil {
		return fmt.Errorf("set osd name: %w", err)
	}
	if err := h.SetVendorID(vendorID); err != nil {
		return fmt.Errorf("set vendor id: %w", err)
	}

	la, err := h.LogicalAddress()
	if err != nil {
		return fmt.Errorf("get logical address: %w", err)
	}
	pa, err := h.PhysicalAddress()
	if err != nil {
		return fmt.Errorf("get physical address: %w", err)
	}

	log.Info().
		Str("logical_address", la.String()).
		Str("physical_address", pa.String()).
		Msg("CEC addresses")

	if la == cec.Broadcast && pa != cec.UnassignedPhysicalAddress {
		if err := h.AllocLogicalAddress(); err != nil {
			return fmt.Errorf("alloc logical address: %w", err)
		}
	}
	return nil
}

func (h *HardwareInterface) SetRxCallback(fn func(cec.Command)) {
	h.cbMu.Lock()
	h.rxCb = fn
	h.cbMu.Unlock()
}

func (h *HardwareInterface) SetTxCallback(fn func(cec.Command)) {
	h.cbMu.Lock()
	h.txCb = fn
	h.cbMu.Unlock()
}

var _ cec.Connection = (*HardwareInterface)(nil)
