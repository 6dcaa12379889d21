package agent

import (
	"context"
	"fmt"

	"github.com/TwoX-In/GenAI-Hackathon/db"
	"github.com/TwoX-In/GenAI-Hackathon/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Fetcher reads media referenced by the generation service (gs:// URIs)
type Fetcher interface {
	ReadURI(ctx context.Context, uri string) ([]byte, error)
}

// Persist stores everything a successful generation returned. The source image is
// stored from inputImage rather than downloaded again. A video that cannot be
// downloaded is logged and skipped
func Persist(ctx context.Context, session *db.Session, fetcher Fetcher, uid uint32, resp *Response, inputImage []byte) error {
	if resp.Status != "success" {
		return fmt.Errorf("%w: response status %q", ErrGeneration, resp.Status)
	}
	content := resp.Content()

	outputs := make([][]byte, 0, len(content.Images))
	for _, img := range content.Images {
		if img.ImageURI == "" {
			continue
		}
		data, err := fetcher.ReadURI(ctx, img.ImageURI)
		if err != nil {
			return fmt.Errorf("downloading %s: %w", img.ImageURI, err)
		}
		outputs = append(outputs, data)
	}

	var video []byte
	if content.Video != nil && content.Video.GCSURI != "" {
		data, err := fetcher.ReadURI(ctx, content.Video.GCSURI)
		if err != nil {
			log.WithField("product", uid).Errorf("Downloading video %s: %v", content.Video.GCSURI, err)
		} else {
			video = data
		}
	}

	steps := []struct {
		name string
		skip bool
		fn   func(tx *gorm.DB) error
	}{
		{"input images", len(inputImage) == 0, func(tx *gorm.DB) error {
			return models.AppendImages(tx, uid, models.ImageInput, inputImage)
		}},
		{"output images", len(outputs) == 0, func(tx *gorm.DB) error {
			return models.AppendImages(tx, uid, models.ImageOutput, outputs...)
		}},
		{"video", video == nil, func(tx *gorm.DB) error {
			return models.SetVideo(tx, uid, models.VideoRaw, video)
		}},
		{"faqs", len(content.FAQs) == 0, func(tx *gorm.DB) error {
			faqs := make([]models.FAQ, 0, len(content.FAQs))
			for _, f := range content.FAQs {
				faqs = append(faqs, models.FAQ{Question: f.Question, Answer: f.Answer})
			}
			return models.AppendFAQs(tx, uid, faqs)
		}},
		{"story", content.Story == "", func(tx *gorm.DB) error {
			return models.SetStory(tx, uid, content.Story)
		}},
		{"history", content.History == nil, func(tx *gorm.DB) error {
			return models.SetHistory(tx, &models.History{
				ID:                   uid,
				LocationSpecificInfo: content.History.LocationSpecificInfo,
				DescriptiveHistory:   content.History.DescriptiveHistory,
			})
		}},
		{"processing metadata", false, func(tx *gorm.DB) error {
			return models.AddProcessingMetadata(tx, uid, models.ProcessingMetadata{
				Status:         resp.Status,
				Message:        resp.Message,
				Error:          content.Error,
				ProcessingTime: content.ProcessingTimeSeconds,
			})
		}},
	}
	for _, step := range steps {
		if step.skip {
			continue
		}
		if err := session.Write(ctx, step.fn); err != nil {
			return fmt.Errorf("storing %s: %w", step.name, err)
		}
	}
	return nil
}

// RecordFailure appends the audit row for a generation call that did not succeed
func RecordFailure(ctx context.Context, session *db.Session, uid uint32, cause error) error {
	msg := cause.Error()
	return session.Write(ctx, func(tx *gorm.DB) error {
		return models.AddProcessingMetadata(tx, uid, models.ProcessingMetadata{
			Status:  "error",
			Message: "Content generation failed",
			Error:   &msg,
		})
	})
}
