package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/urmzd/cecvol/pkg/device"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDecode(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"decode", "4f:82:10:00"}, []string{"playback1 -> broadcast", "active_source", "1.0.0.0"}},
		{[]string{"decode", "10", "47", "74", "76"}, []string{"recording1 -> tv", "set_osd_name", "tv"}},
		{[]string{"decode", "40"}, []string{"playback1 -> tv poll"}},
	}

	for _, tt := range tests {
		out, err := run(t, tt.args...)
		if err != nil {
			t.Errorf("%v: %v", tt.args, err)
			continue
		}
		for _, want := range tt.want {
			if !strings.Contains(out, want) {
				t.Errorf("%v: output %q missing %q", tt.args, out, want)
			}
		}
	}
}

func TestDecode_Rejects(t *testing.T) {
	for _, frame := range []string{"zz", "10:01", "10:84:10"} {
		if _, err := run(t, "decode", frame); err == nil {
			t.Errorf("%q: expected error", frame)
		}
	}
}

func TestConfig_SetAndShow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cecvol.db")

	_, err := run(t, "--db", dbPath, "config", "set",
		"--transport", "null",
		"--osd-name", "den",
		"--vendor-id", "0x001a11",
		"--device-type", "playback",
		"--poll-interval", "30s",
		"--listen", "127.0.0.1:9090",
	)
	if err != nil {
		t.Fatalf("config set: %v", err)
	}

	out, err := run(t, "--db", dbPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"null", "den", "001a11", "playback", "30s", "127.0.0.1:9090"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cecvol.db")

	tests := [][]string{
		{"--transport", "ip"},
		{"--osd-name", "a name far too long"},
		{"--device-type", "speaker"},
		{"--vendor-id", "xyz"},
		{"--listen", "nohost"},
	}
	for _, flags := range tests {
		args := append([]string{"--db", dbPath, "config", "set"}, flags...)
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected error", flags)
		}
	}
}

func TestProfile_CreateUseList(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cecvol.db")

	if _, err := run(t, "--db", dbPath, "profile", "create", "den"); err != nil {
		t.Fatalf("profile create: %v", err)
	}
	out, err := run(t, "--db", dbPath, "profile", "list")
	if err != nil {
		t.Fatalf("profile list: %v", err)
	}
	if !strings.Contains(out, "* default") || !strings.Contains(out, "  den") {
		t.Errorf("unexpected list:\n%s", out)
	}

	if _, err := run(t, "--db", dbPath, "profile", "use", "den"); err != nil {
		t.Fatalf("profile use: %v", err)
	}
	if _, err := run(t, "--db", dbPath, "config", "set", "--osd-name", "basement"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, _ = run(t, "--db", dbPath, "config", "show")
	if !strings.Contains(out, "den") || !strings.Contains(out, "basement") {
		t.Errorf("expected den profile settings:\n%s", out)
	}

	// settings stay with the profile they were written to
	if _, err := run(t, "--db", dbPath, "profile", "use", "default"); err != nil {
		t.Fatal(err)
	}
	out, _ = run(t, "--db", dbPath, "config", "show")
	if strings.Contains(out, "basement") {
		t.Errorf("default profile picked up den settings:\n%s", out)
	}
}

func TestProfile_Rejects(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cecvol.db")

	if _, err := run(t, "--db", dbPath, "profile", "use", "attic"); err == nil {
		t.Error("expected error for unknown profile")
	}
	if _, err := run(t, "--db", dbPath, "profile", "create", "default"); err == nil {
		t.Error("expected error for existing profile")
	}

	if _, err := run(t, "--db", dbPath, "profile", "create", "attic", "--use"); err != nil {
		t.Fatal(err)
	}
	out, _ := run(t, "--db", dbPath, "profile", "list")
	if !strings.Contains(out, "* attic") {
		t.Errorf("expected attic active:\n%s", out)
	}
}

func TestControl_NullTransport(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cecvol.db")
	if _, err := run(t, "--db", dbPath, "config", "set", "--transport", "null", "--echo-timeout", "5ms"); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"power", "off"},
		{"volume", "-2"},
		{"mute"},
		{"input", "HDMI", "2"},
		{"raw", "10:8f"},
	} {
		if _, err := run(t, append([]string{"--db", dbPath}, args...)...); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}

	for _, args := range [][]string{
		{"power", "dim"},
		{"volume", "loud"},
		{"input", "HDMI 7"},
		{"raw", "10:01"},
	} {
		if _, err := run(t, append([]string{"--db", dbPath}, args...)...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestWatchURL(t *testing.T) {
	tests := map[string]string{
		"pi.local:8080":                "ws://pi.local:8080/api/v1/bus/ws",
		"http://pi.local:8080/":        "ws://pi.local:8080/api/v1/bus/ws",
		"https://pi.local":             "wss://pi.local/api/v1/bus/ws",
		"ws://pi.local:8080/custom/ws": "ws://pi.local:8080/custom/ws",
		"wss://pi.local/api/v1/bus/ws": "wss://pi.local/api/v1/bus/ws",
	}
	for in, want := range tests {
		got, err := watchURL(in)
		if err != nil || got != want {
			t.Errorf("%q: got %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := watchURL("ftp://pi.local"); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}

func TestWatch_PrintsEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		_ = conn.WriteJSON(device.Event{Type: device.EventFrameReceived, Frame: "0f:36", Timestamp: ts})
		_ = conn.WriteJSON(device.Event{Type: device.EventHDMIStatusChanged, Message: "attached", Timestamp: ts})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	out, err := run(t, "watch", srv.URL)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	for _, want := range []string{"frame_rx", "tv -> broadcast standby", "hdmi_status", "attached"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
