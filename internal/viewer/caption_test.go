package viewer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/soulfree/internal/layout"
)

func TestFindCaptionFont(t *testing.T) {
	saved := captionFonts
	t.Cleanup(func() { captionFonts = saved })

	dir := t.TempDir()
	system := filepath.Join(dir, "system.ttf")
	configured := filepath.Join(dir, "configured.otf")
	for _, p := range []string{system, configured} {
		if err := os.WriteFile(p, []byte("font"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}
	captionFonts = []string{filepath.Join(dir, "missing.ttf"), system}

	tests := []struct {
		name       string
		configured string
		want       string
	}{
		{"configured wins", configured, configured},
		{"missing configured falls back", filepath.Join(dir, "gone.ttf"), system},
		{"directory is not a font", dir, system},
		{"system fallback", "", system},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindCaptionFont(tt.configured); got != tt.want {
				t.Errorf("FindCaptionFont(%q) = %q, want %q", tt.configured, got, tt.want)
			}
		})
	}

	captionFonts = nil
	if got := FindCaptionFont(""); got != "" {
		t.Errorf("FindCaptionFont() = %q with no fonts installed", got)
	}
}

func TestLoadCaptionFace_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadCaptionFace(filepath.Join(dir, "missing.ttf"), CaptionSize); err == nil {
		t.Error("LoadCaptionFace() should fail for a missing file")
	}

	junk := filepath.Join(dir, "junk.ttf")
	if err := os.WriteFile(junk, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("failed to write junk font: %v", err)
	}
	if _, err := LoadCaptionFace(junk, CaptionSize); err == nil {
		t.Error("LoadCaptionFace() should fail for a file that is not a font")
	}
}

func TestDebugCaptionX_CountsGlyphs(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"", 640},
		{"abcd", 640 - 12},
		{"灵魂自由", 640 - 12},
	}
	for _, tt := range tests {
		if got := debugCaptionX(tt.s, 1280); got != tt.want {
			t.Errorf("debugCaptionX(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}

	for _, s := range layout.Texts {
		if x := debugCaptionX(s, 1280); x < 0 {
			t.Errorf("caption %q does not fit: x = %d", s, x)
		}
	}
}
