package video

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TwoX-In/GenAI-Hackathon/config"
	"github.com/TwoX-In/GenAI-Hackathon/db"
	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Outcome int

const (
	Skipped Outcome = iota
	Attached
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Attached:
		return "attached"
	case Failed:
		return "failed"
	}
	return "skipped"
}

// Engine replaces the audio of a product's raw video with a synthesized narration
// of its story, looping or trimming the video to the narration length
type Engine struct {
	synth  Synthesizer
	voices []config.Voice
	pool   *utils.Pool
	tmpDir string
	run    runner
}

func NewEngine(synth Synthesizer, voices []config.Voice, pool *utils.Pool, tmpDir string) *Engine {
	if pool == nil {
		pool = utils.NewPool(1)
	}
	return &Engine{
		synth:  synth,
		voices: voices,
		pool:   pool,
		tmpDir: tmpDir,
		run:    execRunner,
	}
}

// NarrationText frames the story for narration
func NarrationText(story string) string {
	return "Namaste! Let me tell you about this beautiful artisan creation. " +
		strings.TrimSpace(story) +
		" This masterpiece carries the soul of our traditional craftspeople, passed down through generations." +
		" Each piece tells a story of our rich cultural heritage and skilled hands that shaped it with love and devotion." +
		" Experience the authentic beauty of Indian craftsmanship!"
}

type alignment struct {
	Loops    int     // Times the source video is played
	Duration float64 // Seconds, always the narration duration
}

func planAlignment(videoDuration, audioDuration float64) alignment {
	loops := 1
	if audioDuration > videoDuration {
		loops = int(math.Ceil(audioDuration / videoDuration))
	}
	return alignment{Loops: loops, Duration: audioDuration}
}

// Attach narrates the raw video of uid and stores the result as its edited video.
// A missing raw video or story is a skip, not an error
func (e *Engine) Attach(ctx context.Context, session *db.Session, uid uint32) (Outcome, error) {
	var (
		raw   []byte
		story string
	)
	err := session.Read(ctx, func(tx *gorm.DB) error {
		var err error
		if raw, err = models.GetVideo(tx, uid, models.VideoRaw); err != nil {
			return err
		}
		s, err := models.GetStory(tx, uid)
		if s != nil {
			story = *s
		}
		return err
	})
	if err != nil {
		narrations.WithLabelValues(Failed.String()).Inc()
		return Failed, err
	}
	if len(raw) == 0 || strings.TrimSpace(story) == "" {
		log.WithField("product", uid).Info("No raw video or story, narration skipped")
		narrations.WithLabelValues(Skipped.String()).Inc()
		return Skipped, nil
	}

	edited, err := e.narrate(ctx, raw, story)
	if err != nil {
		log.WithField("product", uid).Errorf("Narration failed: %v", err)
		narrations.WithLabelValues(Failed.String()).Inc()
		return Failed, err
	}
	err = session.Write(ctx, func(tx *gorm.DB) error {
		return models.SetVideo(tx, uid, models.VideoEdited, edited)
	})
	if err != nil {
		narrations.WithLabelValues(Failed.String()).Inc()
		return Failed, err
	}
	narrations.WithLabelValues(Attached.String()).Inc()
	return Attached, nil
}

// narrate does all the file work in a scratch directory that is removed on return
func (e *Engine) narrate(ctx context.Context, raw []byte, story string) ([]byte, error) {
	dir, err := os.MkdirTemp(e.tmpDir, "narration-")
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warnf("Cannot remove scratch dir %s: %v", dir, err)
		}
	}()

	var (
		source    = filepath.Join(dir, "source.mp4")
		silent    = filepath.Join(dir, "silent.mp4")
		narration = filepath.Join(dir, "narration.mp3")
		aligned   = filepath.Join(dir, "aligned.mp4")
		output    = filepath.Join(dir, "output.mp4")
	)
	if err = os.WriteFile(source, raw, 0600); err != nil {
		return nil, err
	}
	if err = e.ffmpeg(ctx, "-y", "-i", source, "-an", "-c:v", "copy", silent); err != nil {
		return nil, fmt.Errorf("stripping audio: %w", err)
	}
	videoDuration, err := e.duration(ctx, silent)
	if err != nil {
		return nil, err
	}

	audio, err := e.synthesize(ctx, NarrationText(story))
	if err != nil {
		return nil, err
	}
	if err = os.WriteFile(narration, audio, 0600); err != nil {
		return nil, err
	}
	audioDuration, err := e.duration(ctx, narration)
	if err != nil {
		return nil, err
	}

	plan := planAlignment(videoDuration, audioDuration)
	length := strconv.FormatFloat(plan.Duration, 'f', 3, 64)
	log.Debugf("Aligning %.3fs video to %.3fs narration, %d loop(s)", videoDuration, audioDuration, plan.Loops)
	err = e.ffmpeg(ctx, "-y", "-stream_loop", strconv.Itoa(plan.Loops-1), "-i", silent,
		"-t", length, "-c:v", "libx264", "-crf", "24", "-an", aligned)
	if err != nil {
		return nil, fmt.Errorf("aligning video: %w", err)
	}
	err = e.ffmpeg(ctx, "-y", "-i", aligned, "-i", narration,
		"-map", "0:v:0", "-map", "1:a:0", "-c:v", "copy", "-c:a", "aac", "-b:a", "128k", "-t", length, output)
	if err != nil {
		return nil, fmt.Errorf("muxing narration: %w", err)
	}
	return os.ReadFile(output)
}

func (e *Engine) ffmpeg(ctx context.Context, args ...string) error {
	return e.pool.Do(ctx, func() error {
		_, err := e.run(ctx, "ffmpeg", args...)
		return err
	})
}

// duration reads the container duration in seconds with exiftool
func (e *Engine) duration(ctx context.Context, file string) (float64, error) {
	output, err := utils.Run(ctx, e.pool, func() ([]byte, error) {
		return e.run(ctx, "exiftool", "-n", "-T", "-duration", file)
	})
	if err != nil {
		return 0, fmt.Errorf("reading duration of %s: %w", filepath.Base(file), err)
	}
	value := strings.Trim(string(output), "\n\t\r ")
	if value == "-" || value == "" {
		return 0, fmt.Errorf("%s has no duration", filepath.Base(file))
	}
	d, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("duration of %s: %w", filepath.Base(file), err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s has zero duration", filepath.Base(file))
	}
	return d, nil
}
