package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TwoX-In/GenAI-Hackathon/agent"
	"github.com/TwoX-In/GenAI-Hackathon/classifier"
	"github.com/TwoX-In/GenAI-Hackathon/db"
	"github.com/TwoX-In/GenAI-Hackathon/inventory"
	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/processing"
	"github.com/TwoX-In/GenAI-Hackathon/video"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrStyleMissing = errors.New("style not found after classification")

type Classifier interface {
	Classify(ctx context.Context, img classifier.Image) (classifier.Result, error)
}

type Generator interface {
	Generate(ctx context.Context, in agent.Input) (*agent.Response, error)
}

type Recommender interface {
	Recommend(ctx context.Context, artForms []string, region string, holidays []inventory.Holiday) (*inventory.Recommendation, error)
}

type ArtifactDeriver interface {
	Derive(ctx context.Context, session *db.Session, uid uint32) (map[models.ArtifactKind]int, error)
}

type Narrator interface {
	Attach(ctx context.Context, session *db.Session, uid uint32) (video.Outcome, error)
}

// Dependencies are built once at startup. Recommender may be nil, the inventory stage is then skipped
type Dependencies struct {
	Classifier    Classifier
	Generator     Generator
	Fetcher       agent.Fetcher
	Recommender   Recommender
	Calendar      inventory.Calendar
	Deriver       ArtifactDeriver
	Narrator      Narrator
	Region        string // Region the inventory is recommended for
	DefaultTarget string // Target region when the artisan gives none
	HolidayCount  int
	Now           func() time.Time
}

type Orchestrator struct {
	deps Dependencies
}

func NewOrchestrator(deps Dependencies) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.DefaultTarget == "" {
		deps.DefaultTarget = "GLOBAL"
	}
	return &Orchestrator{deps: deps}
}

// Request is one artisan submission
type Request struct {
	ArtistName         string
	ArtForm            string
	TargetRegion       string
	ArtistDescription  string
	ProductDescription string
	Language           string
	Image              classifier.Image
}

// Run creates a new product and takes it through every stage. The report is never nil.
// An error means the run stopped early, the stages already done keep their data
func (o *Orchestrator) Run(ctx context.Context, session *db.Session, req Request) (*Report, error) {
	uid := NewUID()
	session.Track(uid)
	report := newReport(uid)
	logger := log.WithField("product", uid)
	defer func() { report.Divergent = session.Divergent() }()

	if req.TargetRegion == "" {
		req.TargetRegion = o.deps.DefaultTarget
	}
	if req.Language == "" {
		req.Language = "en"
	}

	classification, err := o.classify(ctx, session, uid, req.Image)
	if err != nil {
		return o.abort(report, StageClassified, err)
	}
	report.record(StageClassified, StatusDone, nil)

	var attrs *models.ProductAttributes
	err = session.Read(ctx, func(tx *gorm.DB) (err error) {
		attrs, err = models.GetAttributes(tx, uid)
		return
	})
	if err == nil && attrs.Get(models.AttributeStyle) == "" {
		err = ErrStyleMissing
	}
	if err != nil {
		return o.abort(report, StageAttributesConfirmed, err)
	}
	report.record(StageAttributesConfirmed, StatusDone, nil)
	style := attrs.Get(models.AttributeStyle)

	status, err := o.recommendInventory(ctx, session, uid, style)
	if err != nil {
		return o.abort(report, StageInventoryReady, err)
	}
	report.record(StageInventoryReady, status, nil)

	profile := Profile{
		ArtistName:         firstNonEmpty(req.ArtistName, classification["artist"]),
		Theme:              classification["themes"],
		State:              classification["origin"],
		ArtForm:            firstNonEmpty(req.ArtForm, style),
		TargetRegion:       req.TargetRegion,
		ArtistStory:        req.ArtistDescription,
		Color:              classification["color"],
		ProductDescription: req.ProductDescription,
		ArtistDescription:  req.ArtistDescription,
	}
	resp, err := o.generate(ctx, session, uid, profile, req)
	report.Content = resp
	if err != nil {
		return o.abort(report, StageContentGenerated, err)
	}
	report.ContentGenerated = true
	report.record(StageContentGenerated, StatusDone, nil)

	artifacts, err := o.deps.Deriver.Derive(ctx, session, uid)
	if err != nil {
		logger.Errorf("Artifact fan-out failed: %v", err)
		report.record(StageArtifactsDerived, StatusFailed, err)
	} else {
		report.Artifacts = map[string]string{}
		for kind, s := range artifacts {
			report.Artifacts[string(kind)] = processing.StatusName(s)
		}
		report.record(StageArtifactsDerived, StatusDone, nil)
	}

	outcome, err := o.deps.Narrator.Attach(ctx, session, uid)
	switch outcome {
	case video.Attached:
		report.NarrationAttached = true
		report.record(StageNarrationAttached, StatusDone, nil)
	case video.Skipped:
		report.record(StageNarrationAttached, StatusSkipped, nil)
	default:
		report.record(StageNarrationAttached, StatusFailed, err)
	}

	// Only the narration stage decides success, earlier best-effort stages do not
	report.Success = outcome != video.Failed
	if report.Success {
		report.Message = "Content generated successfully"
	} else {
		report.Message = "Video processing failed"
	}
	return report, nil
}

func (o *Orchestrator) abort(report *Report, stage Stage, err error) (*Report, error) {
	log.WithField("product", report.UID).Errorf("Pipeline stopped at %s: %v", stage, err)
	report.record(stage, StatusFailed, err)
	report.Success = false
	report.Message = err.Error()
	return report, fmt.Errorf("%s: %w", stage, err)
}

// classify writes every returned attribute on its own, one failed write does not stop the others
func (o *Orchestrator) classify(ctx context.Context, session *db.Session, uid uint32, img classifier.Image) (classifier.Result, error) {
	result, err := o.deps.Classifier.Classify(ctx, img)
	if err != nil {
		return nil, err
	}
	keys := []struct {
		key  string
		attr models.Attribute
	}{
		{"style", models.AttributeStyle},
		{"artist", models.AttributePredictedArtist},
		{"origin", models.AttributeOrigin},
		{"medium", models.AttributeMedium},
		{"themes", models.AttributeThemes},
		{"color", models.AttributeColors},
	}
	for _, k := range keys {
		if !result.Has(k.key) {
			continue
		}
		value := result[k.key]
		err := session.Write(ctx, func(tx *gorm.DB) error {
			return models.SetAttribute(tx, uid, k.attr, value)
		})
		if err != nil {
			log.WithField("product", uid).Errorf("Storing %s: %v", k.attr, err)
		}
	}
	if price, ok := result.Price(); ok {
		err := session.Write(ctx, func(tx *gorm.DB) error {
			return models.SetPrice(tx, uid, price)
		})
		if err != nil {
			log.WithField("product", uid).Errorf("Storing price: %v", err)
		}
	}
	return result, nil
}

func (o *Orchestrator) recommendInventory(ctx context.Context, session *db.Session, uid uint32, style string) (Status, error) {
	if o.deps.Recommender == nil {
		return StatusSkipped, nil
	}
	artForms := []string{style}
	holidays := o.deps.Calendar.Upcoming(o.deps.Now(), o.deps.HolidayCount)
	rec, err := o.deps.Recommender.Recommend(ctx, artForms, o.deps.Region, holidays)
	if errors.Is(err, inventory.ErrUnparseable) {
		return StatusSkipped, nil
	}
	if err != nil {
		return StatusFailed, err
	}
	err = session.Write(ctx, func(tx *gorm.DB) error {
		return models.ReplaceInventory(tx, rec.Record(uid, artForms))
	})
	if err != nil {
		return StatusFailed, err
	}
	return StatusDone, nil
}

func (o *Orchestrator) generate(ctx context.Context, session *db.Session, uid uint32, p Profile, req Request) (*agent.Response, error) {
	augmented := AugmentDescription(p)
	err := session.Write(ctx, func(tx *gorm.DB) error {
		return models.SetArtisanInput(tx, &models.ArtisanInput{
			ID:                   uid,
			ProductDescription:   req.ProductDescription,
			AugmentedDescription: augmented,
			TargetAudience:       p.TargetRegion,
			Tone:                 "Marketing",
			Language:             req.Language,
			Keywords:             "Authentic, Handmade",
		})
	})
	if err != nil {
		return nil, err
	}

	resp, err := o.deps.Generator.Generate(ctx, agent.Input{
		ProductDescription: augmented,
		Language:           req.Language,
		Image:              req.Image.Data,
	})
	if err == nil {
		err = agent.Persist(ctx, session, o.deps.Fetcher, uid, resp, req.Image.Data)
	}
	if err != nil {
		if recErr := agent.RecordFailure(ctx, session, uid, err); recErr != nil {
			log.WithField("product", uid).Errorf("Recording generation failure: %v", recErr)
		}
		return resp, err
	}
	return resp, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
