package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrCECSettingsNotFound = errors.New("cec settings not found")

// ErrInvalidSettings indicates a settings value outside its allowed range.
var ErrInvalidSettings = errors.New("invalid cec settings")

// Transport kinds
const (
	TransportVCHIQ  = "vchiq"
	TransportSerial = "serial"
	TransportNull   = "null"
)

// CECSettings selects the bus transport and the identity announced on it.
type CECSettings struct {
	ProfileID    int64
	Transport    string
	DevicePath   string
	SerialPort   string
	OSDName      string
	VendorID     uint32
	DeviceType   uint8
	PollInterval time.Duration
	EchoTimeout  time.Duration
	UpdatedAt    time.Time
}

// DefaultCECSettings returns the settings used before anything is configured.
func DefaultCECSettings() CECSettings {
	return CECSettings{
		Transport:    TransportNull,
		DevicePath:   "/dev/vchiq",
		OSDName:      "cecvol",
		VendorID:     0x00E091,
		DeviceType:   1,
		PollInterval: 60 * time.Second,
		EchoTimeout:  200 * time.Millisecond,
	}
}

// Validate checks field ranges.
func (s *CECSettings) Validate() error {
	switch s.Transport {
	case TransportVCHIQ, TransportSerial, TransportNull:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidSettings, s.Transport)
	}
	if s.Transport == TransportSerial && s.SerialPort == "" {
		return fmt.Errorf("%w: serial transport needs a port", ErrInvalidSettings)
	}
	if len(s.OSDName) == 0 || len(s.OSDName) > 14 {
		return fmt.Errorf("%w: osd name must be 1-14 bytes", ErrInvalidSettings)
	}
	if s.VendorID > 0xFFFFFF {
		return fmt.Errorf("%w: vendor id %#x exceeds 24 bits", ErrInvalidSettings, s.VendorID)
	}
	if s.DeviceType > 7 {
		return fmt.Errorf("%w: device type %d", ErrInvalidSettings, s.DeviceType)
	}
	if s.PollInterval < 0 || s.EchoTimeout < 0 {
		return fmt.Errorf("%w: negative interval", ErrInvalidSettings)
	}
	return nil
}

// CECSettingsStore reads and writes per-profile bus settings.
type CECSettingsStore interface {
	Get(ctx context.Context, profileID int64) (*CECSettings, error)
	Save(ctx context.Context, s *CECSettings) error
}

// CECSettings returns a CECSettingsStore for this database.
func (db *DB) CECSettings() CECSettingsStore {
	return &cecSettingsStore{db: db}
}

type cecSettingsStore struct {
	db *DB
}

func (s *cecSettingsStore) Get(ctx context.Context, profileID int64) (*CECSettings, error) {
	c := &CECSettings{}
	var pollSeconds, echoMs int64
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT profile_id, transport, device_path, serial_port, osd_name, vendor_id,
		       device_type, poll_interval_seconds, echo_timeout_ms, updated_at
		FROM cec_settings WHERE profile_id = ?
	`, profileID).Scan(&c.ProfileID, &c.Transport, &c.DevicePath, &c.SerialPort, &c.OSDName,
		&c.VendorID, &c.DeviceType, &pollSeconds, &echoMs, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCECSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	c.PollInterval = time.Duration(pollSeconds) * time.Second
	c.EchoTimeout = time.Duration(echoMs) * time.Millisecond
	c.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return c, nil
}

// Save inserts or replaces the settings row for s.ProfileID.
func (s *cecSettingsStore) Save(ctx context.Context, c *CECSettings) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cec_settings (profile_id, transport, device_path, serial_port, osd_name,
		                          vendor_id, device_type, poll_interval_seconds, echo_timeout_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
		    transport = excluded.transport,
		    device_path = excluded.device_path,
		    serial_port = excluded.serial_port,
		    osd_name = excluded.osd_name,
		    vendor_id = excluded.vendor_id,
		    device_type = excluded.device_type,
		    poll_interval_seconds = excluded.poll_interval_seconds,
		    echo_timeout_ms = excluded.echo_timeout_ms,
		    updated_at = datetime('now')
	`, c.ProfileID, c.Transport, c.DevicePath, c.SerialPort, c.OSDName, c.VendorID, c.DeviceType,
		int64(c.PollInterval/time.Second), c.EchoTimeout.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to save cec settings: %w", err)
	}
	return nil
}
