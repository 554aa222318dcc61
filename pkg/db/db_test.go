package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "cecvol.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := database.Prepare(context.Background()); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	return database
}

func TestMigrate_Idempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := database.SchemaVersion(ctx)
	if err != nil || v != currentSchemaVersion {
		t.Errorf("got version %d, %v", v, err)
	}
}

func TestBootstrap_DefaultConfig(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	needs, err := database.NeedsBootstrap(ctx)
	if err != nil || needs {
		t.Fatalf("expected bootstrapped database, got %v, %v", needs, err)
	}

	cfg, err := database.ActiveConfig(ctx)
	if err != nil {
		t.Fatalf("active config: %v", err)
	}
	if cfg.Profile.Name != "default" {
		t.Errorf("unexpected profile %q", cfg.Profile.Name)
	}
	if cfg.APIAddress() != "0.0.0.0:8080" {
		t.Errorf("unexpected address %q", cfg.APIAddress())
	}
	if cfg.CEC.OSDName != "cecvol" || cfg.CEC.VendorID != 0x00E091 {
		t.Errorf("unexpected identity %+v", cfg.CEC)
	}
	if cfg.CEC.EchoTimeout != 200*time.Millisecond || cfg.CEC.PollInterval != time.Minute {
		t.Errorf("unexpected timings %+v", cfg.CEC)
	}
}

func TestBootstrap_RunsOnce(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := database.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	profiles, err := database.Profiles().List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 1 {
		t.Errorf("expected 1 profile, got %d", len(profiles))
	}
}

func TestCECSettings_SaveAndGet(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	cfg, err := database.ActiveConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}

	s := cfg.CEC
	s.Transport = TransportSerial
	s.SerialPort = "/dev/ttyACM0"
	s.OSDName = "living room"
	s.EchoTimeout = 350 * time.Millisecond
	if err := database.CECSettings().Save(ctx, &s); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := database.CECSettings().Get(ctx, cfg.Profile.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Transport != TransportSerial || got.SerialPort != "/dev/ttyACM0" || got.OSDName != "living room" {
		t.Errorf("unexpected settings %+v", got)
	}
	if got.EchoTimeout != 350*time.Millisecond {
		t.Errorf("unexpected echo timeout %s", got.EchoTimeout)
	}
}

func TestCECSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CECSettings)
	}{
		{"unknown transport", func(s *CECSettings) { s.Transport = "ip" }},
		{"serial without port", func(s *CECSettings) { s.Transport = TransportSerial }},
		{"long osd name", func(s *CECSettings) { s.OSDName = "fifteen chars!!" }},
		{"vendor overflow", func(s *CECSettings) { s.VendorID = 0x1000000 }},
		{"device type", func(s *CECSettings) { s.DeviceType = 8 }},
	}
	for _, tt := range tests {
		s := DefaultCECSettings()
		tt.mutate(&s)
		if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
			t.Errorf("%s: expected ErrInvalidSettings, got %v", tt.name, err)
		}
	}

	s := DefaultCECSettings()
	if err := s.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestCECSettings_NotFound(t *testing.T) {
	database := openTestDB(t)
	if _, err := database.CECSettings().Get(context.Background(), 999); !errors.Is(err, ErrCECSettingsNotFound) {
		t.Errorf("expected ErrCECSettingsNotFound, got %v", err)
	}
}

func TestProfiles_SetActive(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	p := &Profile{Name: "bedroom"}
	if err := database.Profiles().Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := database.Profiles().SetActive(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	active, err := database.Profiles().GetActive(ctx)
	if err != nil || active.Name != "bedroom" {
		t.Errorf("got %+v, %v", active, err)
	}

	// a profile without settings rows still yields a usable config
	cfg, err := database.ActiveConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIServer != nil || cfg.CEC.ProfileID != p.ID || cfg.CEC.Transport != TransportNull {
		t.Errorf("unexpected fallback config %+v", cfg)
	}

	if err := database.Profiles().SetActive(ctx, 999); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := database.Profiles().GetByName(ctx, "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestAPIServers_Save(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	cfg, _ := database.ActiveConfig(ctx)
	if err := database.APIServers().Save(ctx, &APIServer{ProfileID: cfg.Profile.ID, Host: "127.0.0.1", Port: 9090}); err != nil {
		t.Fatal(err)
	}
	got, err := database.APIServers().Get(ctx, cfg.Profile.ID)
	if err != nil || got.Address() != "127.0.0.1:9090" {
		t.Errorf("got %+v, %v", got, err)
	}
	if err := database.APIServers().Save(ctx, &APIServer{ProfileID: cfg.Profile.ID, Port: 0}); err == nil {
		t.Error("expected error for port 0")
	}
}

func TestCreateProfile_SeedsDefaults(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	p, err := database.CreateProfile(ctx, "den")
	if err != nil {
		t.Fatal(err)
	}
	if p.IsActive {
		t.Error("new profile should not be active")
	}

	api, err := database.APIServers().Get(ctx, p.ID)
	if err != nil || api.Address() != "0.0.0.0:8080" {
		t.Errorf("got %+v, %v", api, err)
	}
	settings, err := database.CECSettings().Get(ctx, p.ID)
	if err != nil || settings.OSDName != DefaultCECSettings().OSDName {
		t.Errorf("got %+v, %v", settings, err)
	}

	profiles, err := database.Profiles().List(ctx)
	if err != nil || len(profiles) != 2 {
		t.Fatalf("got %d profiles, %v", len(profiles), err)
	}

	if _, err := database.CreateProfile(ctx, "den"); !errors.Is(err, ErrProfileExists) {
		t.Errorf("expected ErrProfileExists, got %v", err)
	}
	if _, err := database.CreateProfile(ctx, ""); err == nil {
		t.Error("expected error for empty name")
	}
}
