package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ayusman/soulfree/internal/app"
	"github.com/ayusman/soulfree/internal/config"
	"github.com/ayusman/soulfree/internal/journal"
	"github.com/ayusman/soulfree/internal/server"
	"github.com/ayusman/soulfree/internal/tray"
	"github.com/ayusman/soulfree/internal/viewer"
)

func main() {
	fmt.Println("Soulfree - Gesture Card Sphere")

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	j, err := journal.New()
	if err != nil {
		log.Fatalf("Failed to initialize journal: %v", err)
	}
	defer j.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(app.Config{
		CameraID:        settings.CameraID,
		MotionThreshold: settings.MotionThreshold,
		Seed:            settings.Seed,
		Tunables:        config.NewShared(settings.Render),
		Journal:         j,
	})
	defer a.Close()

	webDir := settings.StaticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Tunables:  a.Tunables(),
		Journal:   j,
		Source:    a,
	})
	go func() {
		fmt.Printf("Starting server on %s\n", settings.Addr)
		if err := srv.ListenAndServe(ctx, settings.Addr); err != nil {
			log.Printf("Server failed: %v", err)
		}
	}()

	if err := a.Start(ctx); err != nil {
		log.Fatalf("Failed to start tracking: %v", err)
	}

	var tr *tray.Tray
	if settings.Tray {
		tr = tray.New()
		a.OnStatus(tr.SetStatus)
		tr.OnSettings(func() {
			fmt.Printf("Settings: http://%s/\n", settings.Addr)
		})
		tr.OnQuit(stop)
	}

	if settings.Headless {
		runHeadless(ctx, a, settings.TPS, tr)
	} else if err := runWindow(ctx, a, settings, tr); err != nil {
		log.Printf("Viewer failed: %v", err)
	}

	log.Println("Shutting down")
}

// runHeadless drives the tick from a ticker until ctx is cancelled. The tray,
// if any, owns the main thread. It returns only after the last tick.
func runHeadless(ctx context.Context, a *app.App, tps int, tr *tray.Tray) {
	var wg sync.WaitGroup
	defer wg.Wait()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(time.Second / time.Duration(tps))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.Tick()
			}
		}
	}()

	if tr == nil {
		<-ctx.Done()
		return
	}
	go func() {
		<-ctx.Done()
		tr.Quit()
	}()
	tr.Run()
}

// runWindow lets the viewer drive the tick on the main thread.
func runWindow(ctx context.Context, a *app.App, settings config.Settings, tr *tray.Tray) error {
	var onKey func(bool)
	if tr != nil {
		onKey = tr.SetImmersive
	}
	game, err := viewer.New(ctx, a, onKey)
	if err != nil {
		return err
	}
	if path := viewer.FindCaptionFont(settings.CaptionFont); path != "" {
		face, err := viewer.LoadCaptionFace(path, viewer.CaptionSize)
		if err != nil {
			log.Printf("Caption font: %v", err)
		} else {
			game.SetCaptionFace(face)
		}
	} else {
		log.Println("No CJK caption font found; set SOULFREE_CAPTION_FONT")
	}
	if tr != nil {
		tr.OnToggle(game.SetImmersive)
		go tr.Run()
		defer tr.Quit()
	}
	return viewer.Run(game, settings.TPS)
}

// findWebDir searches for the settings panel in common locations.
// It checks: "web", "../web", "../../web", and ~/.soulfree/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".soulfree", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
