package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Voice is one narration voice configuration
type Voice struct {
	Name         string  `yaml:"name"`
	LanguageCode string  `yaml:"language_code"`
	Gender       string  `yaml:"gender"` // MALE, FEMALE or NEUTRAL
	SpeakingRate float64 `yaml:"speaking_rate"`
	Pitch        float64 `yaml:"pitch"`
	VolumeGainDb float64 `yaml:"volume_gain_db"`
}

// DefaultVoices is the primary voice followed by the fallbacks, in the order they are tried
var DefaultVoices = []Voice{
	{Name: "en-IN-Standard-B", LanguageCode: "en-IN", Gender: "MALE", SpeakingRate: 0.85, Pitch: -2.0, VolumeGainDb: 1.5},
	{Name: "en-IN-Standard-C", LanguageCode: "en-IN", Gender: "MALE", SpeakingRate: 0.85, Pitch: -2.0, VolumeGainDb: 1.5},
	{Name: "en-IN-Wavenet-B", LanguageCode: "en-IN", Gender: "MALE", SpeakingRate: 0.85, Pitch: -2.0, VolumeGainDb: 1.5},
	{Name: "en-IN-Standard-A", LanguageCode: "en-IN", Gender: "FEMALE", SpeakingRate: 0.85, Pitch: -1.0, VolumeGainDb: 1.5},
	{Name: "en-US-Standard-D", LanguageCode: "en-US", Gender: "MALE", SpeakingRate: 0.85, Pitch: -2.0, VolumeGainDb: 1.5},
}

// LoadVoices reads VOICES_FILE if set, DefaultVoices otherwise
func LoadVoices() ([]Voice, error) {
	if VOICES_FILE == "" {
		return DefaultVoices, nil
	}
	data, err := os.ReadFile(VOICES_FILE)
	if err != nil {
		return nil, fmt.Errorf("reading voices file: %w", err)
	}
	return ParseVoices(data)
}

func ParseVoices(data []byte) ([]Voice, error) {
	var voices []Voice
	if err := yaml.Unmarshal(data, &voices); err != nil {
		return nil, fmt.Errorf("parsing voices: %w", err)
	}
	if len(voices) == 0 {
		return nil, fmt.Errorf("no voices configured")
	}
	for i := range voices {
		if voices[i].Name == "" || voices[i].LanguageCode == "" {
			return nil, fmt.Errorf("voice %d: name and language_code are required", i)
		}
		if voices[i].SpeakingRate == 0 {
			voices[i].SpeakingRate = 1.0
		}
	}
	return voices, nil
}
