package usbcec

import "fmt"

// Adapter framing bytes
const (
	msgStart   = 0xFF
	msgEnd     = 0xFE
	msgEscape  = 0xFD
	escOffset  = 3
	maxMsgBody = 64

	flagEOM  = 0x80
	flagACK  = 0x40
	codeMask = 0x3F
)

// Message codes
const (
	codeNothing                   = 0
	codePing                      = 1
	codeTimeoutError              = 2
	codeHighError                 = 3
	codeLowError                  = 4
	codeFrameStart                = 5
	codeFrameData                 = 6
	codeReceiveFailed             = 7
	codeCommandAccepted           = 8
	codeCommandRejected           = 9
	codeSetAckMask                = 10
	codeTransmit                  = 11
	codeTransmitEOM               = 12
	codeTransmitIdleTime          = 13
	codeTransmitAckPolarity       = 14
	codeTransmitLineTimeout       = 15
	codeTransmitSucceeded         = 16
	codeTransmitFailedLine        = 17
	codeTransmitFailedAck         = 18
	codeTransmitFailedTimeoutData = 19
	codeTransmitFailedTimeoutLine = 20
	codeFirmwareVersion           = 21
	codeSetControlled             = 24
	codeGetPhysicalAddress        = 31
)

// message is one decoded adapter message.
type message struct {
	code  byte
	eom   bool
	ack   bool
	param []byte
}

func (m message) String() string {
	return fmt.Sprintf("code=%d eom=%t ack=%t param=%x", m.code, m.eom, m.ack, m.param)
}

// encodeMessage frames code and params with escaping.
func encodeMessage(code byte, params ...byte) []byte {
	out := make([]byte, 0, 2+2*(len(params)+1))
	out = append(out, msgStart)
	out = appendEscaped(out, code)
	for _, b := range params {
		out = appendEscaped(out, b)
	}
	return append(out, msgEnd)
}

func appendEscaped(out []byte, b byte) []byte {
	if b >= msgEscape {
		return append(out, msgEscape, b-escOffset)
	}
	return append(out, b)
}

func decodeBody(body []byte) (message, error) {
	if len(body) == 0 {
		return message{}, fmt.Errorf("%w: empty message", ErrFraming)
	}
	m := message{
		code: body[0] & codeMask,
		eom:  body[0]&flagEOM != 0,
		ack:  body[0]&flagACK != 0,
	}
	if len(body) > 1 {
		m.param = append([]byte(nil), body[1:]...)
	}
	return m, nil
}

// decoder reassembles messages from the adapter byte stream.
type decoder struct {
	buf     []byte
	inMsg   bool
	escaped bool
}

// feed consumes one byte and returns a completed message body, if any.
func (d *decoder) feed(b byte) ([]byte, bool) {
	switch {
	case b == msgStart:
		d.buf = d.buf[:0]
		d.inMsg = true
		d.escaped = false
		return nil, false

	case !d.inMsg:
		return nil, false

	case b == msgEnd:
		d.inMsg = false
		body := append([]byte(nil), d.buf...)
		d.buf = d.buf[:0]
		return body, len(body) > 0

	case b == msgEscape:
		d.escaped = true
		return nil, false
	}

	if d.escaped {
		b += escOffset
		d.escaped = false
	}
	d.buf = append(d.buf, b)
	if len(d.buf) > maxMsgBody {
		d.buf = d.buf[:0]
		d.inMsg = false
	}
	return nil, false
}
