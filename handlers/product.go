package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/processing"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	"github.com/TwoX-In/GenAI-Hackathon/video"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const previewSize = 512

type BinaryResponse struct {
	ID       uint32 `json:"id"`
	Kind     string `json:"kind"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type RegenerateResponse struct {
	ID     uint32 `json:"id"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

func (h *Handlers) ProductGet(c *gin.Context) {
	uid, ok := productID(c)
	if !ok {
		return
	}
	session, ok := stateSession(c)
	if !ok {
		return
	}
	var product *models.Product
	err := session.Read(c.Request.Context(), func(tx *gorm.DB) (err error) {
		product, err = models.LoadProduct(tx, uid)
		return
	})
	if err != nil {
		readError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handlers) ProductList(c *gin.Context) {
	session, ok := stateSession(c)
	if !ok {
		return
	}
	offset := queryInt(c, "offset", 0, 0)
	limit := queryInt(c, "limit", 50, 200)
	var result []models.ProductSummary
	err := session.Read(c.Request.Context(), func(tx *gorm.DB) (err error) {
		result, err = models.ListProducts(tx, offset, limit)
		return
	})
	if err != nil {
		readError(c, err)
		return
	}
	if result == nil {
		result = []models.ProductSummary{}
	}
	c.JSON(http.StatusOK, result)
}

// ProductPreview is a small JPEG of the first input image
func (h *Handlers) ProductPreview(c *gin.Context) {
	uid, ok := productID(c)
	if !ok {
		return
	}
	session, ok := stateSession(c)
	if !ok {
		return
	}
	var images []models.ProductImage
	err := session.Read(c.Request.Context(), func(tx *gorm.DB) (err error) {
		images, err = models.GetImages(tx, uid, models.ImageInput)
		return
	})
	if err != nil {
		readError(c, err)
		return
	}
	if len(images) == 0 {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	var buf bytes.Buffer
	if _, err = utils.CreateThumb(previewSize, bytes.NewReader(images[0].Data), &buf); err != nil {
		log.Errorf("Preview for product %d: %v", uid, err)
		c.JSON(http.StatusInternalServerError, Response{"cannot create preview"})
		return
	}
	c.Header("cache-control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}

func (h *Handlers) InventoryGet(c *gin.Context) {
	uid, ok := productID(c)
	if !ok {
		return
	}
	session, ok := stateSession(c)
	if !ok {
		return
	}
	var rec *models.InventoryRecommendation
	err := session.Read(c.Request.Context(), func(tx *gorm.DB) (err error) {
		rec, err = models.GetInventory(tx, uid)
		return
	})
	if err != nil {
		readError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, Response{"no inventory recommendation stored"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func artifactKind(c *gin.Context) (models.ArtifactKind, bool) {
	kind := models.ArtifactKind(c.Param("kind"))
	for _, k := range models.ArtifactKinds {
		if k == kind {
			return kind, true
		}
	}
	c.JSON(http.StatusBadRequest, Response{"unknown artifact kind"})
	return "", false
}

func (h *Handlers) ArtifactGet(c *gin.Context) {
	uid, ok := productID(c)
	if !ok {
		return
	}
	kind, ok := artifactKind(c)
	if !ok {
		return
	}
	session, ok := stateSession(c)
	if !ok {
		return
	}
	var artifact *models.Artifact
	err := session.Read(c.Request.Context(), func(tx *gorm.DB) (err error) {
		artifact, err = models.GetArtifact(tx, uid, kind)
		return
	})
	if err != nil {
		readError(c, err)
		return
	}
	if artifact == nil {
		c.JSON(http.StatusNotFound, Response{"artifact not generated"})
		return
	}
	c.JSON(http.StatusOK, BinaryResponse{
		ID:       uid,
		Kind:     string(kind),
		MimeType: artifact.MimeType,
		Data:     utils.EncodeBinary(artifact.Data),
	})
}

// ArtifactRegenerate renders one artifact kind again from the stored data
func (h *Handlers) ArtifactRegenerate(c *gin.Context) {
	uid, ok := productID(c)
	if !ok {
		return
	}
	kind, ok := artifactKind(c)
	if !ok {
		return
	}
	session, ok := stateSession(c)
	if !ok {
		return
	}
	session.Track(uid)
	status, err := h.Artifacts.DeriveOne(c.Request.Context(), session, uid, kind)
	if err != nil {
		readError(c, err)
		return
	}
	code := http.StatusOK
	if status != processing.Done && status != processing.Skipped {
		code = http.StatusInternalServerError
	}
	c.JSON(code, RegenerateResponse{ID: uid, Kind: string(kind), Status: processing.StatusName(status)})
}

// NarrationRegenerate attaches a fresh narration to the stored raw video
func (h *Handlers) NarrationRegenerate(c *gin.Context) {
	uid, ok := productID(c)
	if !ok {
		return
	}
	session, ok := stateSession(c)
	if !ok {
		return
	}
	session.Track(uid)
	outcome, err := h.Narrator.Attach(c.Request.Context(), session, uid)
	switch {
	case outcome == video.Failed && errors.Is(err, video.ErrNoVoice):
		c.JSON(http.StatusBadGateway, Response{err.Error()})
	case outcome == video.Failed:
		c.JSON(http.StatusInternalServerError, Response{"video processing failed"})
	default:
		c.JSON(http.StatusOK, RegenerateResponse{ID: uid, Kind: string(models.VideoEdited), Status: outcome.String()})
	}
}

func (h *Handlers) EditedVideoGet(c *gin.Context) {
	uid, ok := productID(c)
	if !ok {
		return
	}
	session, ok := stateSession(c)
	if !ok {
		return
	}
	var data []byte
	err := session.Read(c.Request.Context(), func(tx *gorm.DB) (err error) {
		data, err = models.GetVideo(tx, uid, models.VideoEdited)
		return
	})
	if err != nil {
		readError(c, err)
		return
	}
	if data == nil {
		c.JSON(http.StatusNotFound, Response{"no edited video"})
		return
	}
	c.JSON(http.StatusOK, BinaryResponse{
		ID:       uid,
		Kind:     string(models.VideoEdited),
		MimeType: "video/mp4",
		Data:     utils.EncodeBinary(data),
	})
}
