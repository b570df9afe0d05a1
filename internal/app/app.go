// Package app ties the landmark source to the interaction core: it acquires
// the model and the camera, and drives classification, interaction and
// animation from a per-display-frame Tick.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/soulfree/internal/animation"
	"github.com/ayusman/soulfree/internal/capture"
	"github.com/ayusman/soulfree/internal/config"
	"github.com/ayusman/soulfree/internal/detector"
	"github.com/ayusman/soulfree/internal/gesture"
	"github.com/ayusman/soulfree/internal/interaction"
	"github.com/ayusman/soulfree/internal/journal"
	"github.com/ayusman/soulfree/internal/layout"
)

// ErrNotStarted is returned by operations that need a live camera.
var ErrNotStarted = errors.New("app not started")

// Config holds configuration options for the application.
type Config struct {
	CameraID        int
	MotionThreshold float64
	Seed            int64
	Aspect          float64

	// Tunables is read once per tick. Defaults are used when nil.
	Tunables *config.Shared
	// Journal records sessions and transitions. Optional.
	Journal *journal.Journal

	// NewDetector creates the landmark model. Defaults to the MediaPipe service.
	NewDetector func() (detector.Detector, error)
	// NewCamera creates the video source. Defaults to the OpenCV device CameraID.
	NewCamera func(id int) capture.Camera
	// Now is the clock driving elapsed time. Defaults to time.Now.
	Now func() time.Time
}

// App is the main application. Start and Stop may be called from any
// goroutine; Tick must be called from a single goroutine.
type App struct {
	config   Config
	tunables *config.Shared
	journal  *journal.Journal
	deck     *layout.Deck
	machine  *interaction.Machine
	anim     *animation.Integrator
	motion   *capture.MotionDetector
	started  time.Time

	mu              sync.RWMutex
	status          string
	session         string
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	detector        detector.Detector
	camera          capture.Camera
	feed            *capture.Feed
	tracking        bool
	snapshot        Snapshot
	statusListeners []func(string)
	frameListeners  []func(Snapshot)

	// tickMu is held for a whole Tick so teardown never overlaps detection.
	tickMu sync.Mutex

	// Owned by the tick goroutine.
	lastTimestamp time.Duration
	haveFrame     bool
	current       gesture.Frame
	detectFailing bool
}

// New creates a new App with a freshly shuffled deck.
func New(cfg Config) *App {
	if cfg.Tunables == nil {
		cfg.Tunables = config.NewShared(config.Default())
	}
	if cfg.NewDetector == nil {
		cfg.NewDetector = func() (detector.Detector, error) {
			return detector.NewMediaPipeDetector(detector.DefaultConfig())
		}
	}
	if cfg.NewCamera == nil {
		cfg.NewCamera = capture.NewCamera
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Aspect <= 0 {
		cfg.Aspect = float64(capture.DefaultWidth) / float64(capture.DefaultHeight)
	}

	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = rand.Uint64()
	}
	deck := layout.NewDeck(layout.NumCards, layout.SphereRadius, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))

	a := &App{
		config:   cfg,
		tunables: cfg.Tunables,
		journal:  cfg.Journal,
		deck:     deck,
		machine:  interaction.NewMachine(),
		anim:     animation.NewIntegrator(deck, cfg.Aspect),
		motion:   capture.NewMotionDetector(cfg.MotionThreshold),
		started:  cfg.Now(),
		status:   StatusInitializing,
	}
	a.snapshot = Snapshot{Status: a.status, State: a.machine.State()}
	return a
}

// Start opens a session and acquires the model and the camera in the
// background. Failures are reported on the status channel and leave the app
// not tracking; there is no retry. Calling Start on a running app is a no-op.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.cancel != nil {
		a.mu.Unlock()
		return nil
	}

	if a.journal != nil {
		s, err := a.journal.Sessions().Start(a.config.CameraID, a.config.Seed)
		if err != nil {
			a.mu.Unlock()
			return fmt.Errorf("start session: %w", err)
		}
		a.session = s.ID
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.wg.Add(1)
	a.mu.Unlock()

	log.Println("Tracking session started")
	go a.acquire(ctx)
	return nil
}

func (a *App) acquire(ctx context.Context) {
	defer a.wg.Done()

	a.setStatus(StatusLoadingModels)
	d, err := a.config.NewDetector()
	if err == nil {
		err = detector.Load(ctx, d)
		if err != nil {
			d.Close()
		}
	}
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Model load failed: %v", err)
			a.setStatus(StatusModelError)
		}
		return
	}
	a.setStatus(StatusModelsLoaded)

	cam := a.config.NewCamera(a.config.CameraID)
	if err := cam.Open(); err != nil {
		d.Close()
		if ctx.Err() == nil {
			log.Printf("Camera open failed: %v", err)
			a.setStatus(StatusCameraDenied)
		}
		return
	}

	feed := capture.NewFeed(cam)

	a.mu.Lock()
	if ctx.Err() != nil {
		a.mu.Unlock()
		cam.Close()
		d.Close()
		return
	}
	a.detector = d
	a.camera = cam
	a.feed = feed
	a.tracking = true
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Camera feed stopped: %v", err)
		}
	}()

	a.setStatus(StatusCameraReady)
}

// Stop ends the session and releases the camera, the detector and the motion
// gate. It blocks until background work and any in-flight Tick have finished
// and is safe to call more than once. Stop must not be called from within a
// Tick listener.
func (a *App) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	a.wg.Wait()

	a.tickMu.Lock()
	defer a.tickMu.Unlock()

	a.mu.Lock()
	feed, cam, d, session := a.feed, a.camera, a.detector, a.session
	a.feed, a.camera, a.detector = nil, nil, nil
	a.tracking = false
	a.mu.Unlock()

	if feed != nil {
		feed.Close()
	}
	if cam != nil {
		if err := cam.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}
	if d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
	a.motion.Reset()

	a.setStatus(StatusStopped)
	if a.journal != nil && session != "" {
		if err := a.journal.Sessions().End(session); err != nil {
			log.Printf("Error ending session: %v", err)
		}
	}

	log.Println("Tracking session stopped")
}

// Close stops the app and releases the motion gate for good.
func (a *App) Close() {
	a.Stop()
	a.motion.Close()
}

// Tracking reports whether the camera and model are live.
func (a *App) Tracking() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tracking
}

// SessionID returns the current journal session id, if any.
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Deck returns the cards.
func (a *App) Deck() *layout.Deck {
	return a.deck
}

// Animation returns the integrator. Only the tick goroutine may use it.
func (a *App) Animation() *animation.Integrator {
	return a.anim
}

// Tunables returns the shared runtime tunables.
func (a *App) Tunables() *config.Shared {
	return a.tunables
}

// Journal returns the session journal, which may be nil.
func (a *App) Journal() *journal.Journal {
	return a.journal
}

// Preview returns a copy of the newest camera frame. The caller closes it.
func (a *App) Preview() (capture.Frame, error) {
	a.mu.RLock()
	feed := a.feed
	a.mu.RUnlock()
	if feed == nil {
		return capture.Frame{}, ErrNotStarted
	}
	frame, ok := feed.Latest()
	if !ok {
		return capture.Frame{}, capture.ErrNoFrame
	}
	return frame, nil
}
