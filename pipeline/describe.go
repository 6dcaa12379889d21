package pipeline

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
)

// NewUID takes the low 32 bits of a random UUID. Uniqueness is not checked
func NewUID() uint32 {
	for {
		u := uuid.New()
		if uid := binary.BigEndian.Uint32(u[12:16]); uid != 0 {
			return uid
		}
	}
}

// Profile is what is known about the artist and the piece before generation
type Profile struct {
	ArtistName         string
	Theme              string
	State              string
	ArtForm            string
	TargetRegion       string
	ArtistStory        string
	Color              string
	ProductDescription string
	ArtistDescription  string
}

// AugmentDescription joins the profile in a fixed order. Empty values are left out
func AugmentDescription(p Profile) string {
	segments := []struct {
		prefix string
		value  string
	}{
		{"the artist's name is ", p.ArtistName},
		{"the art's theme is ", p.Theme},
		{"the artist's state is ", p.State},
		{"the artist's art form is ", p.ArtForm},
		{"the artist's target region is ", p.TargetRegion},
		{"the artist's story is ", p.ArtistStory},
		{"the color of the artifact is ", p.Color},
		{"", p.ProductDescription},
		{"", p.ArtistDescription},
	}
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if v := strings.TrimSpace(s.value); v != "" {
			parts = append(parts, s.prefix+v)
		}
	}
	return strings.Join(parts, " ")
}
