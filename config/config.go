package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Config holds runtime configuration for the photo frame. Fields may be
// loaded from a JSON file and overridden by command-line flags. Every
// component receives the values it needs at construction; nothing reads
// configuration as ambient state.
type Config struct {
	Debug bool `json:"debug"`

	// PhotoDir is the directory holding the slideshow images.
	PhotoDir string `json:"photo_dir"`
	// StateFile is where the display queue persists its position.
	StateFile string `json:"state_file"`

	// Panel dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// IntervalSeconds is the delay between frames in run mode.
	IntervalSeconds int `json:"interval_seconds"`

	// Overlay parameters
	FontPath          string  `json:"font_path"`
	FontSize          float64 `json:"font_size"`
	DateFontSize      float64 `json:"date_font_size"`
	Margin            int     `json:"margin"`
	BackgroundPadding int     `json:"background_padding"`
	TextPadding       int     `json:"text_padding"`

	// Presentation adjustments, 1.0 = unchanged. A saturation of 0
	// renders grayscale and is kept as-is.
	Saturation float64 `json:"saturation"`
	Contrast   float64 `json:"contrast"`

	// MaxConsecutiveFailures is the streak length after which cycle
	// failures are escalated in the log.
	MaxConsecutiveFailures int `json:"max_consecutive_failures"`

	// Display selects the output sink: "epd" or "png".
	Display string `json:"display"`
	// OutputPath is the target file for the png sink.
	OutputPath string `json:"output_path"`
}

// DefaultConfig returns a Config populated with standard defaults for an
// Inky Impression 5.7" class panel.
func DefaultConfig() *Config {
	return &Config{
		Debug:                  false,
		PhotoDir:               "photos",
		StateFile:              filepath.Join(xdg.CacheHome, "inky-frame", "state.json"),
		Width:                  600,
		Height:                 448,
		IntervalSeconds:        1607,
		FontPath:               "",
		FontSize:               14,
		DateFontSize:           16,
		Margin:                 15,
		BackgroundPadding:      10,
		TextPadding:            8,
		Saturation:             0.85,
		Contrast:               1.15,
		MaxConsecutiveFailures: 3,
		Display:                "png",
		OutputPath:             "frame.png",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.Width <= 0 {
		c.Width = 600
	}
	if c.Height <= 0 {
		c.Height = 448
	}
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 1607
	}
	if c.FontSize <= 0 {
		c.FontSize = 14
	}
	if c.DateFontSize <= 0 {
		c.DateFontSize = 16
	}
	if c.Margin < 0 {
		c.Margin = 15
	}
	if c.BackgroundPadding < 0 {
		c.BackgroundPadding = 10
	}
	if c.TextPadding < 0 {
		c.TextPadding = 8
	}
	if c.Saturation < 0 {
		c.Saturation = 0.85
	}
	if c.Contrast < 0 {
		c.Contrast = 1.15
	}
	if c.MaxConsecutiveFailures <= 0 {
		c.MaxConsecutiveFailures = 3
	}
	if c.Display != "epd" && c.Display != "png" {
		c.Display = "png"
	}
	if c.StateFile == "" {
		c.StateFile = filepath.Join(xdg.CacheHome, "inky-frame", "state.json")
	}
	if c.OutputPath == "" {
		c.OutputPath = "frame.png"
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return cfg, err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
