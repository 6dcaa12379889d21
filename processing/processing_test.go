package processing

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/TwoX-In/GenAI-Hackathon/db"
	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testSession(t *testing.T) *db.Session {
	remote := storage.NewDiskStorage(&storage.Bucket{
		Name:        "state",
		StorageType: storage.StorageTypeFile,
		Path:        t.TempDir(),
		LocalDir:    t.TempDir(),
	})
	store := db.NewStore(remote, "app.db", db.PublishSnapshot, nil)
	t.Cleanup(func() { _ = store.Close() })
	return store.NewSession()
}

func testPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: 90, B: uint8(y * 5), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func seed(t *testing.T, session *db.Session, uid uint32, withPrice bool, story string) {
	err := session.Write(context.Background(), func(tx *gorm.DB) error {
		if err := models.SetAttribute(tx, uid, models.AttributeStyle, "Madhubani"); err != nil {
			return err
		}
		if err := models.SetAttribute(tx, uid, models.AttributePredictedArtist, "Sita Devi"); err != nil {
			return err
		}
		if withPrice {
			if err := models.SetPrice(tx, uid, 2500); err != nil {
				return err
			}
		}
		if story != "" {
			if err := models.SetStory(tx, uid, story); err != nil {
				return err
			}
		}
		return models.AppendImages(tx, uid, models.ImageInput, testPNG(t))
	})
	require.NoError(t, err)
}

func decodeSize(t *testing.T, data []byte) image.Point {
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	return img.Bounds().Size()
}

func TestDerive_AllArtifacts(t *testing.T) {
	session := testSession(t)
	seed(t, session, 7, true, "A peacock sings. The river flows. Lotus blooms. Festival begins. Extra sentence.")
	d, err := NewDeriver(nil, "")
	require.NoError(t, err)

	result, err := d.Derive(context.Background(), session, 7)
	require.NoError(t, err)
	assert.Equal(t, map[models.ArtifactKind]int{
		models.ArtifactBanner:    Done,
		models.ArtifactThumbnail: Done,
		models.ArtifactComic:     Done,
	}, result)

	sizes := map[models.ArtifactKind]image.Point{
		models.ArtifactBanner:    {X: 1200, Y: 628},
		models.ArtifactThumbnail: {X: 1280, Y: 720},
		models.ArtifactComic:     {X: 1024, Y: 1024},
	}
	var saved *models.ArtifactTasks
	err = session.Read(context.Background(), func(tx *gorm.DB) error {
		for kind, size := range sizes {
			a, err := models.GetArtifact(tx, 7, kind)
			require.NoError(t, err)
			require.NotNil(t, a, kind)
			assert.Equal(t, "image/png", a.MimeType)
			assert.Equal(t, size, decodeSize(t, a.Data), kind)
		}
		saved, err = models.GetArtifactTasks(tx, 7)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "banner:2,comic:2,thumbnail:2", saved.Status)
}

func TestDerive_MissingPriceSkipsEverything(t *testing.T) {
	session := testSession(t)
	seed(t, session, 8, false, "Once upon a time.")
	d, err := NewDeriver(nil, "")
	require.NoError(t, err)

	result, err := d.Derive(context.Background(), session, 8)
	require.NoError(t, err)
	for _, kind := range models.ArtifactKinds {
		assert.Equal(t, Skipped, result[kind], kind)
	}
	err = session.Read(context.Background(), func(tx *gorm.DB) error {
		artifacts, err := models.GetArtifacts(tx, 8)
		assert.Empty(t, artifacts)
		return err
	})
	require.NoError(t, err)
}

func TestDerive_ComicNeedsStory(t *testing.T) {
	session := testSession(t)
	seed(t, session, 9, true, "")
	d, err := NewDeriver(nil, "")
	require.NoError(t, err)

	result, err := d.Derive(context.Background(), session, 9)
	require.NoError(t, err)
	assert.Equal(t, Done, result[models.ArtifactBanner])
	assert.Equal(t, Done, result[models.ArtifactThumbnail])
	assert.Equal(t, Skipped, result[models.ArtifactComic])
}

func TestDerive_BrokenImageFailsOnlyRendering(t *testing.T) {
	session := testSession(t)
	err := session.Write(context.Background(), func(tx *gorm.DB) error {
		if err := models.SetAttribute(tx, 10, models.AttributeStyle, "Warli"); err != nil {
			return err
		}
		if err := models.SetPrice(tx, 10, 900); err != nil {
			return err
		}
		return models.AppendImages(tx, 10, models.ImageInput, []byte("not an image"))
	})
	require.NoError(t, err)
	d, err := NewDeriver(nil, "")
	require.NoError(t, err)

	result, err := d.Derive(context.Background(), session, 10)
	require.NoError(t, err)
	assert.Equal(t, Failed, result[models.ArtifactBanner])
	assert.Equal(t, Failed, result[models.ArtifactThumbnail])
	assert.Equal(t, Skipped, result[models.ArtifactComic])
}

func TestDeriveOne(t *testing.T) {
	session := testSession(t)
	seed(t, session, 11, true, "")
	d, err := NewDeriver(nil, "")
	require.NoError(t, err)

	status, err := d.DeriveOne(context.Background(), session, 11, models.ArtifactThumbnail)
	require.NoError(t, err)
	assert.Equal(t, Done, status)

	_, err = d.DeriveOne(context.Background(), session, 11, "poster")
	assert.ErrorIs(t, err, ErrUnknownArtifact)
}

func TestComicCaptions(t *testing.T) {
	c := &comic{}
	assert.Equal(t, []string{"One.", "Two!", "Madhubani", "Madhubani"},
		c.captions(&Inputs{Story: "One. Two!", Style: "Madhubani"}))
}

func TestBannerTitle(t *testing.T) {
	b := &banner{}
	assert.Equal(t, "Warli by Jivya", b.title(&Inputs{Style: "Warli", Artist: "Jivya"}))
	assert.Equal(t, "Warli", b.title(&Inputs{Style: "Warli"}))
}

func TestPriceLabel(t *testing.T) {
	f, err := loadFonts("")
	require.NoError(t, err)
	label := f.priceLabel(2500)
	assert.Contains(t, []string{"₹2500", "Rs. 2500"}, label)
}
