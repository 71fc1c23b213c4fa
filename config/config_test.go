package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stuarthighley/doomview/render"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if c.Render.Options() != render.DefaultOptions() {
		t.Errorf("default render options %+v", c.Render.Options())
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := writeConfig(t, `
display:
  screen_width: 640
wad:
  map: map01
render:
  max_visplanes: 128
camera:
  turn_speed: 5
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if c.Display.ScreenWidth != 640 || c.Display.ScreenHeight != def.Display.ScreenHeight {
		t.Errorf("display = %+v", c.Display)
	}
	if c.WAD.Map != "map01" || c.WAD.Path != def.WAD.Path {
		t.Errorf("wad = %+v", c.WAD)
	}
	if c.Render.MaxVisplanes != 128 || c.Render.MaxDrawSegs != def.Render.MaxDrawSegs {
		t.Errorf("render = %+v", c.Render)
	}
	if c.Camera.TurnSpeed != 5 || c.Camera.EyeHeight != def.Camera.EyeHeight {
		t.Errorf("camera = %+v", c.Camera)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"zero width", "display:\n  screen_width: 0\n", ErrInvalid},
		{"huge height", "display:\n  screen_height: 40000\n", ErrInvalid},
		{"zero scale", "display:\n  scale: 0\n", ErrInvalid},
		{"negative capacity", "render:\n  max_draw_segs: -1\n", ErrInvalid},
		{"no wad", "wad:\n  path: \"\"\n", ErrInvalid},
		{"negative speed", "camera:\n  move_speed: -2\n", ErrInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.text))
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := LoadConfig(writeConfig(t, "display: [")); err == nil {
		t.Errorf("bad yaml accepted")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestMustLoadConfigPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("no panic")
		}
	}()
	MustLoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLogger(t *testing.T) {
	if _, closer, err := (LogConfig{Output: "none"}).Logger(); err != nil || closer != nil {
		t.Errorf("none: closer %v, err %v", closer, err)
	}

	path := filepath.Join(t.TempDir(), "view.log")
	logger, closer, err := LogConfig{Output: path}.Logger()
	if err != nil {
		t.Fatal(err)
	}
	logger.Print("hello")
	closer.Close()
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		t.Errorf("log file %q, err %v", data, err)
	}
}
