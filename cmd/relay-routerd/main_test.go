package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalsfoundry/relay-router/core"
)

func writeConstellation(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "constellation.txt")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write constellation file: %v", err)
	}
	return path
}

func TestLoadConstellation(t *testing.T) {
	path := writeConstellation(t, "SAT,S1,0,0,1000\nSAT,S2,0,45,1000\n")

	net := core.NewNetwork()
	if err := loadConstellation(net, path, ""); err != nil {
		t.Fatalf("loadConstellation: %v", err)
	}
	if net.Len() != 2 {
		t.Errorf("Len() = %d, want 2", net.Len())
	}
}

func TestLoadConstellation_Errors(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		tleAt   string
		wantErr string
	}{
		{"missing input flag", "", "", "-input is required"},
		{"nonexistent file", filepath.Join(t.TempDir(), "absent.txt"), "", "failed to open"},
		{"bad instant", writeConstellation(t, "SAT,S1,0,0,1000\n"), "yesterday", "-tle-at"},
		{"bad record", writeConstellation(t, "SAT,S1,zero,0,1000\n"), "", "line 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := loadConstellation(core.NewNetwork(), tc.path, tc.tleAt)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("loadConstellation() = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}
