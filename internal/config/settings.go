package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are the process-level options read once at startup.
type Settings struct {
	CameraID        int     `env:"SOULFREE_CAMERA_ID"        envDefault:"0"`
	Addr            string  `env:"SOULFREE_ADDR"             envDefault:"127.0.0.1:8080"`
	StaticDir       string  `env:"SOULFREE_STATIC_DIR"`
	Headless        bool    `env:"SOULFREE_HEADLESS"`
	Tray            bool    `env:"SOULFREE_TRAY"             envDefault:"true"`
	TPS             int     `env:"SOULFREE_TPS"              envDefault:"60"`
	Seed            int64   `env:"SOULFREE_SEED"`
	MotionThreshold float64 `env:"SOULFREE_MOTION_THRESHOLD" envDefault:"0"`
	// CaptionFont is a TrueType or OpenType file with CJK glyphs.
	CaptionFont string `env:"SOULFREE_CAPTION_FONT"`

	// Render holds the initial tunables, e.g. SOULFREE_CARD_SIZE.
	Render Render `envPrefix:"SOULFREE_"`
}

// LoadSettings parses the environment and validates the initial tunables.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.TPS <= 0 {
		s.TPS = 60
	}
	if err := s.Render.Validate(); err != nil {
		return Settings{}, fmt.Errorf("initial tunables: %w", err)
	}
	return s, nil
}
