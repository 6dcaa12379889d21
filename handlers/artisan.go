package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/TwoX-In/GenAI-Hackathon/agent"
	"github.com/TwoX-In/GenAI-Hackathon/classifier"
	"github.com/TwoX-In/GenAI-Hackathon/pipeline"
	"github.com/TwoX-In/GenAI-Hackathon/transcribe"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const maxImageSize = 20 * 1024 * 1024

type GenerateContentRequest struct {
	ArtistName         string                `form:"artistName"`
	State              string                `form:"state"` // Accepted but the classified origin is used
	ArtForm            string                `form:"artForm"`
	TargetRegion       string                `form:"targetRegion"`
	ArtistDescription  string                `form:"artistDescription"`
	ProductDescription string                `form:"productDescription" binding:"required"`
	Language           string                `form:"language"`
	Image              *multipart.FileHeader `form:"image" binding:"required"`
}

type GenerateContentResponse struct {
	Error string `json:"error,omitempty"`
	*pipeline.Report
}

func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	if fh.Size > limit {
		return nil, errors.New("file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}

// GenerateContent runs the whole pipeline for a new product
func (h *Handlers) GenerateContent(c *gin.Context) {
	r := GenerateContentRequest{}
	if err := c.ShouldBind(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	data, err := readUpload(r.Image, maxImageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		c.JSON(http.StatusBadRequest, Response{"unsupported image format " + mime.String()})
		return
	}
	session, ok := stateSession(c)
	if !ok {
		return
	}

	report, err := h.Pipeline.Run(c.Request.Context(), session, pipeline.Request{
		ArtistName:         r.ArtistName,
		ArtForm:            r.ArtForm,
		TargetRegion:       r.TargetRegion,
		ArtistDescription:  r.ArtistDescription,
		ProductDescription: r.ProductDescription,
		Language:           r.Language,
		Image: classifier.Image{
			Filename: r.Image.Filename,
			MimeType: mime.String(),
			Data:     data,
		},
	})
	// Publish now so the report can tell whether the writes reached remote storage.
	// The middleware release that follows has nothing left to do
	session.Release(c.Request.Context())
	if report != nil {
		report.Divergent = session.Divergent()
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, classifier.ErrClassification) || errors.Is(err, agent.ErrGeneration) {
			status = http.StatusBadGateway
		}
		c.JSON(status, GenerateContentResponse{Error: err.Error(), Report: report})
		return
	}
	c.JSON(http.StatusOK, GenerateContentResponse{Report: report})
}

// Transcribe uploads an audio recording and returns its transcript
func (h *Handlers) Transcribe(c *gin.Context) {
	if h.Transcriber == nil {
		c.JSON(http.StatusServiceUnavailable, Response{"transcription is not configured"})
		return
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{"no audio file provided"})
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !transcribe.SupportedExtensions[ext] {
		c.JSON(http.StatusBadRequest, Response{"unsupported audio format " + ext})
		return
	}
	data, err := readUpload(fh, transcribe.MaxFileSize)
	if err != nil || len(data) > transcribe.MaxFileSize {
		c.JSON(http.StatusBadRequest, Response{"audio file must be at most 10MB"})
		return
	}
	ctx := c.Request.Context()
	path := "audio/" + uuid.NewString() + ext
	uri, err := h.Audio.PutObject(ctx, path, data, mimetype.Detect(data).String())
	if err != nil {
		log.Errorf("Uploading audio: %v", err)
		c.JSON(http.StatusInternalServerError, Response{"cannot store audio"})
		return
	}
	defer func() {
		if err := h.Audio.DeleteRemoteFile(context.WithoutCancel(ctx), path); err != nil {
			log.Warnf("Cannot remove uploaded audio %s: %v", path, err)
		}
	}()
	transcript, err := utils.Run(ctx, h.Pool, func() (*transcribe.Transcript, error) {
		return h.Transcriber.Transcribe(ctx, uri)
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{err.Error()})
		return
	}
	c.JSON(http.StatusOK, transcript)
}
