package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	if cfg.Stars.Count != 20 || cfg.Session.Coins != 5 {
		t.Errorf("stars = %d, coins = %d", cfg.Stars.Count, cfg.Session.Coins)
	}
	if cfg.Claw.InitialStars != 0 {
		t.Errorf("initial stars = %d, want 0", cfg.Claw.InitialStars)
	}
	if cfg.Derived.DT32 <= 0 || cfg.Derived.DTMs < 16 || cfg.Derived.DTMs > 17 {
		t.Errorf("derived dt = %v / %v ms", cfg.Derived.DT32, cfg.Derived.DTMs)
	}
	box := cfg.Machine.AABB()
	if box.Size().X != 3 || box.Min.Y != 0 {
		t.Errorf("machine box = %+v", box)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := "stars:\n  count: 3\nsession:\n  coins: 9\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Stars.Count != 3 || cfg.Session.Coins != 9 {
		t.Errorf("overrides not applied: stars %d coins %d", cfg.Stars.Count, cfg.Session.Coins)
	}
	// Untouched keys keep their defaults.
	if cfg.Stars.Points != 5 || cfg.Candy.Count != 20 {
		t.Errorf("defaults lost: points %d candy %d", cfg.Stars.Points, cfg.Candy.Count)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), "reading config file"},
		{"bad yaml", write("bad.yaml", "stars: [1, 2"), "parsing config file"},
		{"empty machine", write("empty.yaml", "machine:\n  max: { x: -2, y: 1, z: 1 }\n"), "machine box is empty"},
		{"zero dt", write("dt.yaml", "simulation:\n  dt: 0\n"), "simulation.dt"},
		{"few points", write("points.yaml", "stars:\n  points: 2\n"), "stars.points"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestWriteYAMLReloads(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Bot.Rounds = 42

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Bot.Rounds != 42 || again.Chute != cfg.Chute {
		t.Errorf("snapshot did not round trip: %+v", again.Bot)
	}
}

func TestInitAndCfg(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatal(err)
	}
	if Cfg().Screen.TargetFPS != 60 {
		t.Errorf("target fps = %d", Cfg().Screen.TargetFPS)
	}
}
