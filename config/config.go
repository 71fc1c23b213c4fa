package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stuarthighley/doomview/render"
)

// Config holds the viewer configuration
type Config struct {
	Display DisplayConfig `yaml:"display"`
	WAD     WADConfig     `yaml:"wad"`
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Log     LogConfig     `yaml:"log"`
}

// DisplayConfig sizes the frame buffer. The window is Scale times larger.
type DisplayConfig struct {
	ScreenWidth  int    `yaml:"screen_width"`
	ScreenHeight int    `yaml:"screen_height"`
	Scale        int    `yaml:"scale"`
	WindowTitle  string `yaml:"window_title"`
	Resizable    bool   `yaml:"resizable"`
}

type WADConfig struct {
	Path string `yaml:"path"`
	Map  string `yaml:"map"`
}

// RenderConfig bounds the renderer's per frame tables
type RenderConfig struct {
	MaxVisplanes   int `yaml:"max_visplanes"`
	MaxDrawSegs    int `yaml:"max_draw_segs"`
	MaxVisThings   int `yaml:"max_vis_things"`
	SilhouetteRows int `yaml:"silhouette_rows"`
}

type CameraConfig struct {
	EyeHeight float64 `yaml:"eye_height"`
	MoveSpeed float64 `yaml:"move_speed"` // Map units per tick
	TurnSpeed float64 `yaml:"turn_speed"` // Degrees per tick
}

// LogConfig chooses where diagnostics go: "stderr", "stdout", "none" or a file path
type LogConfig struct {
	Output  string `yaml:"output"`
	Verbose bool   `yaml:"verbose"`
}

var ErrInvalid = errors.New("config: invalid")

// Default returns the configuration used for any key a file leaves out
func Default() *Config {
	opts := render.DefaultOptions()
	return &Config{
		Display: DisplayConfig{
			ScreenWidth:  320,
			ScreenHeight: 200,
			Scale:        3,
			WindowTitle:  "doomview",
			Resizable:    true,
		},
		WAD: WADConfig{
			Path: "DOOM1.WAD",
			Map:  "E1M1",
		},
		Render: RenderConfig{
			MaxVisplanes:   opts.MaxVisplanes,
			MaxDrawSegs:    opts.MaxDrawSegs,
			MaxVisThings:   opts.MaxVisThings,
			SilhouetteRows: opts.SilhouetteRows,
		},
		Camera: CameraConfig{
			EyeHeight: 41,
			MoveSpeed: 8,
			TurnSpeed: 3,
		},
		Log: LogConfig{
			Output: "stderr",
		},
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return config, nil
}

// MustLoadConfig loads the configuration and panics on error
func MustLoadConfig(filename string) *Config {
	config, err := LoadConfig(filename)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return config
}

// Validate rejects sizes the renderer cannot work with
func (c *Config) Validate() error {
	d := c.Display
	if d.ScreenWidth <= 0 || d.ScreenHeight <= 0 || d.ScreenWidth >= 32767 || d.ScreenHeight >= 32767 {
		return fmt.Errorf("%w: screen size %dx%d", ErrInvalid, d.ScreenWidth, d.ScreenHeight)
	}
	if d.Scale <= 0 {
		return fmt.Errorf("%w: scale %d", ErrInvalid, d.Scale)
	}
	r := c.Render
	if r.MaxVisplanes < 0 || r.MaxDrawSegs < 0 || r.MaxVisThings < 0 || r.SilhouetteRows < 0 {
		return fmt.Errorf("%w: negative render capacity", ErrInvalid)
	}
	if c.WAD.Path == "" {
		return fmt.Errorf("%w: no wad path", ErrInvalid)
	}
	if c.Camera.MoveSpeed < 0 || c.Camera.TurnSpeed < 0 {
		return fmt.Errorf("%w: negative camera speed", ErrInvalid)
	}
	return nil
}

// Options returns the renderer capacities. Zero values take the renderer's defaults.
func (r RenderConfig) Options() render.Options {
	return render.Options{
		MaxVisplanes:   r.MaxVisplanes,
		MaxDrawSegs:    r.MaxDrawSegs,
		MaxVisThings:   r.MaxVisThings,
		SilhouetteRows: r.SilhouetteRows,
	}
}

// Logger opens the configured log output. The closer is nil unless a file was opened.
func (l LogConfig) Logger() (*log.Logger, io.Closer, error) {
	var w io.Writer
	var closer io.Closer
	switch l.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	case "none":
		w = io.Discard
	default:
		f, err := os.OpenFile(l.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, f
	}
	flags := log.LstdFlags
	if l.Verbose {
		flags |= log.Lmicroseconds | log.Lshortfile
	}
	return log.New(w, "", flags), closer, nil
}
