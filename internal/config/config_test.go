package config

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestRender_Set(t *testing.T) {
	tests := []struct {
		name    string
		tunable string
		value   float64
		wantErr error
	}{
		{name: "valid card size", tunable: "cardSize", value: 1.5},
		{name: "lower bound", tunable: "pinchSensitivity", value: 0.01},
		{name: "upper bound", tunable: "readScale", value: 10},
		{name: "below range", tunable: "pinchSensitivity", value: 0.005, wantErr: ErrOutOfRange},
		{name: "above range", tunable: "particleCount", value: 20000, wantErr: ErrOutOfRange},
		{name: "NaN", tunable: "floatSpeed", value: math.NaN(), wantErr: ErrOutOfRange},
		{name: "unknown", tunable: "fogDensity", value: 1, wantErr: ErrUnknownTunable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Default()
			err := r.Set(tt.tunable, tt.value)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Set() error = %v, want %v", err, tt.wantErr)
				}
				if diff := cmp.Diff(Default(), r); diff != "" {
					t.Errorf("rejected Set() modified tunables (-want +got):\n%s", diff)
				}
				return
			}

			if err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := r.Get(tt.tunable)
			if err != nil || got != tt.value {
				t.Errorf("Get() = %f, %v; want %f", got, err, tt.value)
			}
		})
	}
}

func TestRender_ValidateAndClamp(t *testing.T) {
	r := Default()
	r.CardSize = 5
	r.RotationSpeed = -1

	err := r.Validate()
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Validate() error = %v, want ErrOutOfRange", err)
	}

	clamped := r.Clamp()
	if clamped.CardSize != 2 || clamped.RotationSpeed != 0 {
		t.Errorf("Clamp() = %+v", clamped)
	}
	if err := clamped.Validate(); err != nil {
		t.Errorf("clamped tunables should validate, got %v", err)
	}
}

func TestRanges_CoverEveryTunable(t *testing.T) {
	r := Default()
	for _, name := range Names() {
		if _, err := r.Get(name); err != nil {
			t.Errorf("range %q has no tunable: %v", name, err)
		}
	}
	if len(Names()) != 9 {
		t.Errorf("got %d tunables, want 9", len(Names()))
	}
}

func TestShared(t *testing.T) {
	s := NewShared(Default())

	t.Run("update applies", func(t *testing.T) {
		got, err := s.Update(func(r *Render) error { return r.Set("readScale", 6) })
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.ReadScale != 6 || s.Snapshot().ReadScale != 6 {
			t.Errorf("ReadScale = %f / %f, want 6", got.ReadScale, s.Snapshot().ReadScale)
		}
	})

	t.Run("failed update keeps previous value", func(t *testing.T) {
		before := s.Snapshot()
		_, err := s.Update(func(r *Render) error { return r.Set("readScale", 60) })
		if err == nil {
			t.Fatal("expected error")
		}
		if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
			t.Errorf("tunables changed (-want +got):\n%s", diff)
		}
	})

	t.Run("concurrent writers never tear", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				r := Default()
				r.CardSize = 0.1 * float64(i+1)
				r.ReadScale = float64(i + 1)
				s.Store(r)
			}(i)
		}
		wg.Wait()

		got := s.Snapshot()
		if math.Abs(got.CardSize*10-got.ReadScale) > 1e-9 {
			t.Errorf("snapshot mixes writes: %+v", got)
		}
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		u := NewShared(Default())
		const writers, steps = 8, 100

		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < steps; j++ {
					_, err := u.Update(func(r *Render) error {
						return r.Set("particleCount", r.ParticleCount+1)
					})
					if err != nil {
						t.Errorf("Update() error = %v", err)
						return
					}
				}
			}()
		}
		// A writer of another tunable races the increments.
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < steps; j++ {
				u.Update(func(r *Render) error { return r.Set("readScale", 7) })
			}
		}()
		wg.Wait()

		got := u.Snapshot()
		if want := Default().ParticleCount + writers*steps; got.ParticleCount != want {
			t.Errorf("ParticleCount = %v, want %v", got.ParticleCount, want)
		}
		if got.ReadScale != 7 {
			t.Errorf("ReadScale = %v, want 7", got.ReadScale)
		}
	})

	t.Run("zero value falls back to defaults", func(t *testing.T) {
		var empty Shared
		if diff := cmp.Diff(Default(), empty.Snapshot()); diff != "" {
			t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("SOULFREE_CAMERA_ID", "2")
	t.Setenv("SOULFREE_HEADLESS", "true")
	t.Setenv("SOULFREE_CARD_SIZE", "0.75")
	t.Setenv("SOULFREE_PINCH_SENSITIVITY", "0.08")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	if s.CameraID != 2 || !s.Headless {
		t.Errorf("CameraID = %d, Headless = %v", s.CameraID, s.Headless)
	}
	if s.Addr != "127.0.0.1:8080" || s.TPS != 60 {
		t.Errorf("Addr = %q, TPS = %d", s.Addr, s.TPS)
	}

	want := Default()
	want.CardSize = 0.75
	want.PinchSensitivity = 0.08
	if diff := cmp.Diff(want, s.Render); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSettings_RejectsOutOfRange(t *testing.T) {
	t.Setenv("SOULFREE_READ_SCALE", "42")

	if _, err := LoadSettings(); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("LoadSettings() error = %v, want ErrOutOfRange", err)
	}
}
