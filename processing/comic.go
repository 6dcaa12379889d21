package processing

import (
	"bytes"

	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	"github.com/fogleman/gg"
)

const (
	comicSize   = 1024
	panelSize   = comicSize / 2
	panelMargin = 16
	panelText   = 150 // Caption height inside a panel
)

// comic is a 2x2 strip, every panel shows the product with one sentence of its story
type comic struct{}

func (c *comic) getName() models.ArtifactKind {
	return models.ArtifactComic
}

func (c *comic) mimeType() string {
	return "image/png"
}

func (c *comic) shouldHandle(in *Inputs) bool {
	return in.hasBasics() && in.Story != ""
}

// captions pads the story sentences with the style so that no panel is empty
func (c *comic) captions(in *Inputs) []string {
	result := utils.FirstSentences(in.Story, 4)
	for len(result) < 4 {
		result = append(result, in.Style)
	}
	return result
}

func (c *comic) render(in *Inputs, f *fonts) ([]byte, error) {
	inner := panelSize - 2*panelMargin
	img, err := utils.FitImage(in.Image, uint(inner-20), uint(inner-panelText-20))
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(comicSize, comicSize)
	dc.SetHexColor("#fffaf0")
	dc.Clear()
	dc.SetFontFace(f.face(22))

	for i, caption := range c.captions(in) {
		x := float64((i%2)*panelSize + panelMargin)
		y := float64((i/2)*panelSize + panelMargin)
		w := float64(inner)

		dc.SetHexColor("#ffffff")
		dc.DrawRectangle(x, y, w, w)
		dc.Fill()
		dc.DrawImageAnchored(img, int(x+w/2), int(y+(w-panelText)/2), 0.5, 0.5)

		dc.SetHexColor("#fff3c4")
		dc.DrawRectangle(x, y+w-panelText, w, panelText)
		dc.Fill()

		dc.SetHexColor("#000000")
		dc.SetLineWidth(4)
		dc.DrawRectangle(x, y, w, w)
		dc.Stroke()

		dc.DrawStringWrapped(caption, x+12, y+w-panelText+12, 0, 0, w-24, 1.3, gg.AlignLeft)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
