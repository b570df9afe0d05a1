package viewer

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// CaptionSize is the caption font size in pixels.
const CaptionSize = 28

// debugGlyphWidth is the advance of ebitenutil's bitmap font.
const debugGlyphWidth = 6

// captionFonts are CJK-capable system fonts tried when none is configured.
var captionFonts = []string{
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	"/usr/share/fonts/opentype/noto/NotoSansSC-Regular.otf",
	"/usr/share/fonts/truetype/arphic/uming.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	`C:\Windows\Fonts\simhei.ttf`,
}

// FindCaptionFont returns configured if it exists, otherwise the first
// installed system font able to render the captions, or "".
func FindCaptionFont(configured string) string {
	candidates := captionFonts
	if configured != "" {
		candidates = append([]string{configured}, captionFonts...)
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadCaptionFace reads a TrueType or OpenType font for card captions.
func LoadCaptionFace(path string, size float64) (*text.GoTextFace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open caption font: %w", err)
	}
	defer f.Close()

	src, err := text.NewGoTextFaceSource(f)
	if err != nil {
		return nil, fmt.Errorf("parse caption font %s: %w", path, err)
	}
	return &text.GoTextFace{Source: src, Size: size}, nil
}

// debugCaptionX centers s in width when drawn with the debug font. Glyphs
// are counted, not bytes.
func debugCaptionX(s string, width int) int {
	return (width - utf8.RuneCountInString(s)*debugGlyphWidth) / 2
}
