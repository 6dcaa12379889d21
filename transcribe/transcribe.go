package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/TwoX-In/GenAI-Hackathon/storage"
	log "github.com/sirupsen/logrus"
)

const MaxFileSize = 10 * 1024 * 1024

var SupportedExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".flac": true, ".m4a": true, ".ogg": true, ".webm": true,
}

var alternativeLanguages = []string{"hi-IN", "ta-IN", "te-IN", "kn-IN"}

type Transcript struct {
	Transcript   string  `json:"transcript"`
	Confidence   float32 `json:"confidence"`
	LanguageCode string  `json:"language_code"`
}

type Client struct {
	client *speech.Client
}

func NewClient(ctx context.Context, credentials string) (*Client, error) {
	c, err := speech.NewClient(ctx, storage.ClientOptions(credentials)...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &Client{client: c}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Transcribe recognizes audio at a gs:// URI. If the format specific
// configuration fails, a minimal one is tried before giving up
func (c *Client) Transcribe(ctx context.Context, uri string) (*Transcript, error) {
	result, err := c.recognize(ctx, uri, recognitionConfig(filepath.Ext(uri)))
	if err == nil {
		return result, nil
	}
	log.Warnf("Transcription of %s failed, retrying with minimal config: %v", uri, err)
	result, err = c.recognize(ctx, uri, &speechpb.RecognitionConfig{LanguageCode: "en-US"})
	if err != nil {
		return nil, fmt.Errorf("all transcription methods failed: %w", err)
	}
	return result, nil
}

func (c *Client) recognize(ctx context.Context, uri string, cfg *speechpb.RecognitionConfig) (*Transcript, error) {
	resp, err := c.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: cfg,
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: uri}},
	})
	if err != nil {
		return nil, err
	}
	return firstAlternative(resp, cfg.LanguageCode), nil
}

func firstAlternative(resp *speechpb.RecognizeResponse, language string) *Transcript {
	for _, r := range resp.GetResults() {
		if alts := r.GetAlternatives(); len(alts) > 0 {
			return &Transcript{
				Transcript:   alts[0].GetTranscript(),
				Confidence:   alts[0].GetConfidence(),
				LanguageCode: language,
			}
		}
	}
	return &Transcript{Transcript: "No speech detected in audio", LanguageCode: language}
}

func recognitionConfig(ext string) *speechpb.RecognitionConfig {
	cfg := &speechpb.RecognitionConfig{
		LanguageCode:               "en-US",
		EnableAutomaticPunctuation: true,
		Model:                      "latest_long",
	}
	switch strings.ToLower(ext) {
	case ".mp3":
		cfg.Encoding = speechpb.RecognitionConfig_MP3
	case ".wav":
		cfg.Encoding = speechpb.RecognitionConfig_LINEAR16
		cfg.SampleRateHertz = 16000
	case ".flac":
		cfg.Encoding = speechpb.RecognitionConfig_FLAC
	default:
		return cfg
	}
	cfg.AlternativeLanguageCodes = alternativeLanguages
	return cfg
}
