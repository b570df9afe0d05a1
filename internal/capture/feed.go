package capture

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Feed reads a camera on its own goroutine and keeps only the newest frame.
// Consumers poll Latest at their own rate and deduplicate by timestamp.
type Feed struct {
	cam Camera

	mu     sync.Mutex
	latest *gocv.Mat
	ts     time.Duration
	frames int
}

// NewFeed returns a feed over an opened camera.
func NewFeed(cam Camera) *Feed {
	return &Feed{cam: cam}
}

// Run reads frames until ctx is cancelled or the camera is closed. Read
// failures are logged once per run of failures and retried on the next tick.
func (f *Feed) Run(ctx context.Context) error {
	fps := f.cam.FPS()
	if fps <= 0 {
		fps = DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		frame, err := f.cam.ReadFrame()
		if errors.Is(err, ErrCameraNotOpen) {
			return err
		}
		if err != nil {
			if !failing {
				log.Printf("Camera read failed: %v", err)
				failing = true
			}
			continue
		}
		if failing {
			log.Println("Camera read recovered")
			failing = false
		}
		f.publish(frame)
	}
}

func (f *Feed) publish(frame Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest != nil {
		f.latest.Close()
	}
	f.latest = frame.Mat
	f.ts = frame.Timestamp
	f.frames++
}

// Latest returns a copy of the newest frame. The caller closes it.
func (f *Feed) Latest() (Frame, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return Frame{}, false
	}
	mat := f.latest.Clone()
	return Frame{Mat: &mat, Timestamp: f.ts}, true
}

// LatestTimestamp returns the timestamp of the newest frame without copying it.
func (f *Feed) LatestTimestamp() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ts, f.latest != nil
}

// Frames returns how many frames were published.
func (f *Feed) Frames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// Close releases the retained frame. Call after Run has returned.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest != nil {
		f.latest.Close()
		f.latest = nil
	}
}
