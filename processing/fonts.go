package processing

import (
	"fmt"
	"os"
	"strconv"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

type fonts struct {
	font *truetype.Font
}

func loadFonts(fontFile string) (*fonts, error) {
	data := goregular.TTF
	if fontFile != "" {
		var err error
		if data, err = os.ReadFile(fontFile); err != nil {
			return nil, fmt.Errorf("reading font: %w", err)
		}
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return &fonts{font: f}, nil
}

// face is not safe for concurrent use, so every render gets its own
func (f *fonts) face(size float64) font.Face {
	return truetype.NewFace(f.font, &truetype.Options{
		Size:    size,
		Hinting: font.HintingNone,
	})
}

// priceLabel falls back to "Rs." when the font has no rupee glyph
func (f *fonts) priceLabel(price float64) string {
	amount := strconv.FormatFloat(price, 'f', -1, 64)
	if f.font.Index('₹') != 0 {
		return "₹" + amount
	}
	return "Rs. " + amount
}
