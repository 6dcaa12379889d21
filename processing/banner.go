package processing

import (
	"bytes"
	"strings"

	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	"github.com/fogleman/gg"
)

const (
	bannerWidth  = 1200
	bannerHeight = 628
)

// banner is an ad banner: product image on the left, title, price and description on the right
type banner struct{}

func (b *banner) getName() models.ArtifactKind {
	return models.ArtifactBanner
}

func (b *banner) mimeType() string {
	return "image/png"
}

func (b *banner) shouldHandle(in *Inputs) bool {
	return in.hasBasics()
}

func (b *banner) title(in *Inputs) string {
	if in.Artist == "" {
		return in.Style
	}
	return in.Style + " by " + in.Artist
}

func (b *banner) render(in *Inputs, f *fonts) ([]byte, error) {
	img, err := utils.FitImage(in.Image, bannerWidth/2-40, bannerHeight-40)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(bannerWidth, bannerHeight)
	dc.SetHexColor("#f6efe3")
	dc.Clear()
	dc.DrawImageAnchored(img, bannerWidth/4, bannerHeight/2, 0.5, 0.5)

	left := float64(bannerWidth/2 + 20)
	width := float64(bannerWidth/2 - 60)

	dc.SetHexColor("#5a2d0c")
	dc.SetFontFace(f.face(40))
	dc.DrawStringWrapped(b.title(in), left, 60, 0, 0, width, 1.2, gg.AlignLeft)

	dc.SetHexColor("#b3541e")
	dc.SetFontFace(f.face(56))
	dc.DrawStringAnchored(f.priceLabel(*in.Price), left, 260, 0, 0.5)

	if in.Description != "" {
		dc.SetHexColor("#333333")
		dc.SetFontFace(f.face(20))
		text := strings.Join(utils.FirstSentences(in.Description, 4), " ")
		dc.DrawStringWrapped(text, left, 320, 0, 0, width, 1.4, gg.AlignLeft)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
