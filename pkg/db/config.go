package db

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoActiveProfile = errors.New("no active profile found")

// Config is the runtime configuration of the active profile.
type Config struct {
	Profile   *Profile
	APIServer *APIServer
	CEC       CECSettings
}

// APIAddress returns the API server listen address.
func (c *Config) APIAddress() string {
	if c.APIServer == nil {
		return "0.0.0.0:8080"
	}
	return c.APIServer.Address()
}

// ActiveConfig loads the configuration of the active profile. Missing
// rows fall back to defaults.
func (db *DB) ActiveConfig(ctx context.Context) (*Config, error) {
	profile, err := db.Profiles().GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrNoActiveProfile
		}
		return nil, fmt.Errorf("failed to get active profile: %w", err)
	}

	config := &Config{Profile: profile}

	apiServer, err := db.APIServers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrAPIServerNotFound) {
		return nil, fmt.Errorf("failed to get API server config: %w", err)
	}
	config.APIServer = apiServer

	settings, err := db.CECSettings().Get(ctx, profile.ID)
	switch {
	case errors.Is(err, ErrCECSettingsNotFound):
		config.CEC = DefaultCECSettings()
		config.CEC.ProfileID = profile.ID
	case err != nil:
		return nil, fmt.Errorf("failed to get cec settings: %w", err)
	default:
		config.CEC = *settings
	}

	return config, nil
}
