package processing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/TwoX-In/GenAI-Hackathon/db"
	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var ErrUnknownArtifact = errors.New("unknown artifact kind")

var taskResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "artifact_tasks_total",
	Help: "Derived artifact task results by kind",
}, []string{"task", "result"})

// Inputs is everything the artifact renderers read, loaded once per fan-out
type Inputs struct {
	UID         uint32
	Style       string
	Artist      string
	Price       *float64
	Description string
	Story       string
	Image       []byte // First input image
}

func LoadInputs(ctx context.Context, session *db.Session, uid uint32) (*Inputs, error) {
	in := &Inputs{UID: uid}
	err := session.Read(ctx, func(tx *gorm.DB) error {
		attrs, err := models.GetAttributes(tx, uid)
		if err != nil {
			return err
		}
		in.Style = attrs.Get(models.AttributeStyle)
		in.Artist = attrs.Get(models.AttributePredictedArtist)
		if in.Price, err = models.GetPrice(tx, uid); err != nil {
			return err
		}
		images, err := models.GetImages(tx, uid, models.ImageInput)
		if err != nil {
			return err
		}
		if len(images) > 0 {
			in.Image = images[0].Data
		}
		story, err := models.GetStory(tx, uid)
		if err != nil {
			return err
		}
		if story != nil {
			in.Story = *story
		}
		history, err := models.GetHistory(tx, uid)
		if err != nil {
			return err
		}
		input, err := models.GetArtisanInput(tx, uid)
		if err != nil {
			return err
		}
		parts := []string{}
		if history != nil && history.DescriptiveHistory != "" {
			parts = append(parts, history.DescriptiveHistory)
		}
		if input != nil && input.ProductDescription != "" {
			parts = append(parts, input.ProductDescription)
		}
		in.Description = strings.Join(parts, " ")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

// hasBasics is what every artifact needs
func (in *Inputs) hasBasics() bool {
	return in.Price != nil && in.Style != "" && len(in.Image) > 0
}

// Deriver renders the banner, thumbnail and comic of a product, each one independently
type Deriver struct {
	pool  *utils.Pool
	fonts *fonts
}

// NewDeriver loads fontFile, or the built-in Go font when it is empty
func NewDeriver(pool *utils.Pool, fontFile string) (*Deriver, error) {
	f, err := loadFonts(fontFile)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		pool = utils.NewPool(1)
	}
	return &Deriver{pool: pool, fonts: f}, nil
}

// Derive runs every artifact task for uid. Failures stay local to their task and
// show up only in the returned statuses
func (d *Deriver) Derive(ctx context.Context, session *db.Session, uid uint32) (map[models.ArtifactKind]int, error) {
	return d.derive(ctx, session, uid, models.ArtifactKinds)
}

// DeriveOne regenerates a single artifact kind
func (d *Deriver) DeriveOne(ctx context.Context, session *db.Session, uid uint32, kind models.ArtifactKind) (int, error) {
	if _, ok := tasks[kind]; !ok {
		return Failed, fmt.Errorf("%w: %s", ErrUnknownArtifact, kind)
	}
	result, err := d.derive(ctx, session, uid, []models.ArtifactKind{kind})
	if err != nil {
		return Failed, err
	}
	return result[kind], nil
}

func (d *Deriver) derive(ctx context.Context, session *db.Session, uid uint32, kinds []models.ArtifactKind) (map[models.ArtifactKind]int, error) {
	in, err := LoadInputs(ctx, session, uid)
	if err != nil {
		return nil, err
	}
	var (
		mu     sync.Mutex
		result = map[models.ArtifactKind]int{}
	)
	g := errgroup.Group{}
	for _, kind := range kinds {
		task := tasks[kind]
		g.Go(func() error {
			start := time.Now()
			status := d.runTask(ctx, session, task, in)
			log.Printf("Task %s, product: %d, result: %d, time: %v", kind, uid, status, time.Since(start).Milliseconds())
			taskResults.WithLabelValues(string(kind), StatusName(status)).Inc()
			mu.Lock()
			result[kind] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	statusMap := make(map[string]int, len(result))
	for k, v := range result {
		statusMap[string(k)] = v
	}
	err = session.Write(ctx, func(tx *gorm.DB) error {
		return models.SaveArtifactTasks(tx, uid, statusMap)
	})
	if err != nil {
		log.WithField("product", uid).Errorf("Saving artifact task statuses: %v", err)
	}
	return result, nil
}

func (d *Deriver) runTask(ctx context.Context, session *db.Session, task processingTask, in *Inputs) int {
	if !task.shouldHandle(in) {
		return Skipped
	}
	data, err := utils.Run(ctx, d.pool, func() ([]byte, error) {
		return task.render(in, d.fonts)
	})
	if err != nil {
		log.WithField("product", in.UID).Errorf("Rendering %s: %v", task.getName(), err)
		return Failed
	}
	err = session.Write(ctx, func(tx *gorm.DB) error {
		return models.SetArtifact(tx, in.UID, task.getName(), task.mimeType(), data)
	})
	if err != nil {
		log.WithField("product", in.UID).Errorf("Storing %s: %v", task.getName(), err)
		return FailedStorage
	}
	return Done
}
