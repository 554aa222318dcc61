package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/urmzd/cecvol/pkg/device"
)

func displaySetSchema() json.RawMessage {
	return json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"power": {"type": "string", "enum": ["on", "standby"]},
			"volume_steps": {"type": "integer", "minimum": -50, "maximum": 50},
			"mute": {"type": "boolean"},
			"input": {"type": "string", "pattern": "^([Hh][Dd][Mm][Ii] ?)?[1-4]$"}
		},
		"additionalProperties": false
	}`)
}

func TestValidate_ValidPayload(t *testing.T) {
	v := NewValidator()

	err := v.Validate(displaySetSchema(), map[string]any{
		"power":        "on",
		"volume_steps": float64(-5),
		"mute":         false,
		"input":        "HDMI 2",
	})
	if err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"invalid enum", map[string]any{"power": "off"}},
		{"out of range", map[string]any{"volume_steps": float64(51)}},
		{"fractional steps", map[string]any{"volume_steps": float64(1.5)}},
		{"wrong type", map[string]any{"mute": "yes"}},
		{"bad input", map[string]any{"input": "HDMI 5"}},
		{"unknown property", map[string]any{"power": "on", "brightness": float64(3)}},
	}

	v := NewValidator()
	for _, tt := range tests {
		if err := v.Validate(displaySetSchema(), tt.payload); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	v := NewValidator()

	for _, doc := range []json.RawMessage{nil, json.RawMessage(`{}`), json.RawMessage(`null`)} {
		if err := v.Validate(doc, map[string]any{"anything": "goes"}); err != nil {
			t.Errorf("%q: empty schema should skip validation, got: %v", doc, err)
		}
	}
}

func TestValidate_MalformedSchema(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(json.RawMessage(`{"type":`), map[string]any{}); err == nil {
		t.Error("expected error for malformed schema")
	}
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()
	schema := displaySetSchema()

	if err := v.Validate(schema, map[string]any{"power": "on"}); err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(schema, map[string]any{"power": "standby"}); err != nil {
		t.Fatal(err)
	}

	v.mu.RLock()
	cacheSize := len(v.cache)
	v.mu.RUnlock()
	if cacheSize != 1 {
		t.Errorf("expected 1 cached schema, got %d", cacheSize)
	}
}

func TestValidateDevice_WrapsValidationError(t *testing.T) {
	v := NewValidator()
	dev := &device.Device{ID: "tv", StateSchema: displaySetSchema()}

	err := v.ValidateDevice(dev, map[string]any{"power": "off"})
	if !errors.Is(err, device.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if err := v.ValidateDevice(nil, map[string]any{"power": "off"}); err != nil {
		t.Errorf("nil device should skip validation, got %v", err)
	}
}
