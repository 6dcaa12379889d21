package processing

import (
	"bytes"

	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	"github.com/fogleman/gg"
)

const (
	thumbWidth  = 1280
	thumbHeight = 720
	captionBand  = 100
)

// thumbnail letterboxes the product image above a style caption
type thumbnail struct{}

func (t *thumbnail) getName() models.ArtifactKind {
	return models.ArtifactThumbnail
}

func (t *thumbnail) mimeType() string {
	return "image/png"
}

func (t *thumbnail) shouldHandle(in *Inputs) bool {
	return in.hasBasics()
}

func (t *thumbnail) render(in *Inputs, f *fonts) ([]byte, error) {
	img, err := utils.FitImage(in.Image, thumbWidth, thumbHeight-captionBand)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(thumbWidth, thumbHeight)
	dc.SetHexColor("#1c1c1c")
	dc.Clear()
	dc.DrawImageAnchored(img, thumbWidth/2, (thumbHeight-captionBand)/2, 0.5, 0.5)

	dc.SetHexColor("#8c2f1b")
	dc.DrawRectangle(0, thumbHeight-captionBand, thumbWidth, captionBand)
	dc.Fill()
	dc.SetHexColor("#ffffff")
	dc.SetFontFace(f.face(48))
	dc.DrawStringAnchored(in.Style, thumbWidth/2, thumbHeight-captionBand/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
