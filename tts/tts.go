package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/TwoX-In/GenAI-Hackathon/config"
	"github.com/TwoX-In/GenAI-Hackathon/storage"
)

// Request input is limited to 5000 bytes
const maxInputBytes = 5000

type Client struct {
	client *texttospeech.Client
}

func NewClient(ctx context.Context, credentials string) (*Client, error) {
	c, err := texttospeech.NewClient(ctx, storage.ClientOptions(credentials)...)
	if err != nil {
		return nil, fmt.Errorf("text-to-speech client: %w", err)
	}
	return &Client{client: c}, nil
}

// Synthesize returns MP3 audio of text read by voice
func (c *Client) Synthesize(ctx context.Context, text string, voice config.Voice) ([]byte, error) {
	resp, err := c.client.SynthesizeSpeech(ctx, synthesisRequest(text, voice))
	if err != nil {
		return nil, fmt.Errorf("voice %s: %w", voice.Name, err)
	}
	if len(resp.AudioContent) == 0 {
		return nil, fmt.Errorf("voice %s: empty audio", voice.Name)
	}
	return resp.AudioContent, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func synthesisRequest(text string, voice config.Voice) *texttospeechpb.SynthesizeSpeechRequest {
	gender := texttospeechpb.SsmlVoiceGender(texttospeechpb.SsmlVoiceGender_value[strings.ToUpper(voice.Gender)])
	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: truncate(text, maxInputBytes)},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
			SsmlGender:   gender,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  voice.SpeakingRate,
			Pitch:         voice.Pitch,
			VolumeGainDb:  voice.VolumeGainDb,
		},
	}
}

// truncate cuts text to at most max bytes, at the last space if there is one
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:max]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.ToValidUTF8(cut, "")
}
