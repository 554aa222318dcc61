package db

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Bootstrap seeds an empty database with the default profile, API
// listen address and bus settings.
func (db *DB) Bootstrap(ctx context.Context) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return fmt.Errorf("failed to check profiles: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err := db.seedProfile(ctx, &Profile{Name: "default", IsActive: true})
	return err
}

// CreateProfile adds an inactive profile carrying the default API listen
// address and bus settings.
func (db *DB) CreateProfile(ctx context.Context, name string) (*Profile, error) {
	if name == "" {
		return nil, errors.New("profile name is required")
	}
	if _, err := db.Profiles().GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileExists, name)
	} else if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	return db.seedProfile(ctx, &Profile{Name: name})
}

func (db *DB) seedProfile(ctx context.Context, profile *Profile) (*Profile, error) {
	if err := db.Profiles().Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create %s profile: %w", profile.Name, err)
	}

	if err := db.APIServers().Save(ctx, &APIServer{ProfileID: profile.ID, Host: "0.0.0.0", Port: 8080}); err != nil {
		return nil, fmt.Errorf("failed to create default API server: %w", err)
	}

	settings := DefaultCECSettings()
	settings.ProfileID = profile.ID
	settings.Transport = detectTransport(settings.DevicePath)
	if err := db.CECSettings().Save(ctx, &settings); err != nil {
		return nil, fmt.Errorf("failed to create default cec settings: %w", err)
	}
	return profile, nil
}

// detectTransport picks vchiq when its device node exists.
func detectTransport(devicePath string) string {
	if _, err := os.Stat(devicePath); err == nil {
		return TransportVCHIQ
	}
	return TransportNull
}

// NeedsBootstrap reports whether the database has no profiles yet.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
