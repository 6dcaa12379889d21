package video

import (
	"context"
	"errors"
	"fmt"

	"github.com/TwoX-In/GenAI-Hackathon/config"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	log "github.com/sirupsen/logrus"
)

var ErrNoVoice = errors.New("narration synthesis failed with every voice")

type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice config.Voice) ([]byte, error)
}

// synthesize tries the voices one after another, the first audio wins
func (e *Engine) synthesize(ctx context.Context, text string) ([]byte, error) {
	var errs []error
	for _, voice := range e.voices {
		audio, err := utils.Run(ctx, e.pool, func() ([]byte, error) {
			return e.synth.Synthesize(ctx, text, voice)
		})
		if err == nil {
			return audio, nil
		}
		log.Warnf("Voice %s failed: %v", voice.Name, err)
		synthesisFailures.WithLabelValues(voice.Name).Inc()
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, ErrNoVoice
	}
	return nil, fmt.Errorf("%w: %w", ErrNoVoice, errors.Join(errs...))
}
