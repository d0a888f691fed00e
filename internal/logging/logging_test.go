package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: " warn ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewHandler_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelInfo, FormatJSON)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	log := slog.New(h)
	log.Debug("hidden")
	log.Info("resync completed", "kind", "statefulsets")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1 (debug filtered)", len(lines))
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["msg"] != "resync completed" || rec["kind"] != "statefulsets" {
		t.Fatalf("record = %v", rec)
	}
}

func TestNewHandler_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelDebug, FormatText)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	slog.New(h).Debug("state changed", "to", "WATCHING")

	if out := buf.String(); !strings.Contains(out, "state changed") || !strings.Contains(out, "WATCHING") {
		t.Fatalf("text output = %q", out)
	}
}

func TestNewHandler_UnknownFormat(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(&bytes.Buffer{}, slog.LevelInfo, "xml"); err == nil {
		t.Fatal("NewHandler(xml) succeeded, want error")
	}
}
