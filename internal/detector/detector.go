// Package detector provides the landmark source: implementations turn a video
// frame into the hands visible in it.
package detector

import (
	"context"
	"errors"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/soulfree/internal/hand"
)

// ErrServiceNotFound is returned when the MediaPipe service script cannot be located.
var ErrServiceNotFound = errors.New("mediapipe service not found")

// ErrClosed is returned by Detect and Load after Close.
var ErrClosed = errors.New("detector closed")

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns at most MaxHands hands with
	// normalized landmarks. Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]hand.Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Loader is implemented by detectors with an expensive one-time model load.
// Load must be called before the first Detect to surface failures early.
type Loader interface {
	Load(ctx context.Context) error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// IdleTimeout stops the model process after this long without frames.
	// Zero keeps it running.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        hand.MaxHands,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}

// Load runs d's model load if it has one.
func Load(ctx context.Context, d Detector) error {
	if l, ok := d.(Loader); ok {
		return l.Load(ctx)
	}
	return ctx.Err()
}
