package usbcec

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// BaudRate is the fixed line speed of Pulse-Eight style adapters.
const BaudRate = 38400

// SerialPort wraps a serial connection to the USB-CEC adapter.
type SerialPort struct {
	port serial.Port
	mu   sync.Mutex
}

// OpenSerial opens the serial port at 38400 baud, 8N1.
func OpenSerial(portPath string) (*SerialPort, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portPath, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portPath, err)
	}

	// The adapter resets its controller on a DTR edge; keep it asserted.
	if err := port.SetDTR(true); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set DTR: %w", err)
	}

	log.Info().Str("port", portPath).Msg("Serial port opened")

	return &SerialPort{port: port}, nil
}

// ListPorts returns the serial ports present on the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

// Write sends raw bytes to the serial port.
func (s *SerialPort) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Write(data)
}

// Read reads raw bytes from the serial port.
func (s *SerialPort) Read(buf []byte) (int, error) {
	return s.port.Read(buf)
}

// Close closes the serial port.
func (s *SerialPort) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}

var _ io.ReadWriteCloser = (*SerialPort)(nil)
