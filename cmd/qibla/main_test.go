package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"qibla"}, args...))
	return out.String(), err
}

func TestBearingCommand(t *testing.T) {
	out, err := runApp(t, "bearing", "--lat", "40.7128", "--lon", "-74.0060")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "bearing:  58.48°") {
		t.Fatalf("output = %q", out)
	}
}

func TestBearingCommandRejectsBadLatitude(t *testing.T) {
	if _, err := runApp(t, "bearing", "--lat", "95", "--lon", "0"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCompassCommandReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headings.csv")
	if err := os.WriteFile(path, []byte("offset_ms,degrees\n0,100\n40,100\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv("COMPASS_GAIN", "0.5")

	out, err := runApp(t, "compass", "--lat", "40.7128", "--lon", "-74.006", "--replay", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q, want header plus 2 readings", lines)
	}
	if !strings.HasPrefix(lines[2], "100.00\t50.00\t") || !strings.HasPrefix(lines[3], "100.00\t75.00\t") {
		t.Fatalf("readings = %q", lines[2:])
	}
}

func TestCompassCommandSimulate(t *testing.T) {
	out, err := runApp(t, "compass", "--lat", "51.5", "--lon", "0",
		"--simulate", "90", "--samples", "200", "--interval", "0s", "--noise", "2", "--gain", "0.15")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 202 {
		t.Fatalf("lines = %d, want 202", len(lines))
	}
	fields := strings.Split(lines[len(lines)-1], "\t")
	smoothed, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		t.Fatalf("parse smoothed %q: %v", fields[1], err)
	}
	if smoothed < 88 || smoothed > 92 {
		t.Fatalf("final smoothed = %v, want near 90", smoothed)
	}
}

func TestCompassCommandNeedsOneSource(t *testing.T) {
	if _, err := runApp(t, "compass", "--lat", "0", "--lon", "0"); err == nil {
		t.Fatal("expected error without a source")
	}
}
