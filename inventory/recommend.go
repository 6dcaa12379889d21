package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ErrUnparseable means the model answered with something that is not a recommendation
var ErrUnparseable = errors.New("unparseable inventory recommendation")

type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type HolidayItems struct {
	Holiday string   `json:"holiday"`
	Date    string   `json:"date"`
	Items   []string `json:"items"`
	Reason  string   `json:"reason"`
}

type Recommendation struct {
	Recommendations []HolidayItems `json:"recommendations"`
}

// Record flattens the recommendation into its stored form
func (r *Recommendation) Record(uid uint32, artForms []string) *models.InventoryRecommendation {
	rec := &models.InventoryRecommendation{
		ID:       uid,
		ArtForms: models.JoinArtForms(artForms),
		Holidays: []string{},
		Items:    []string{},
		Reasons:  []string{},
	}
	for _, h := range r.Recommendations {
		rec.Holidays = append(rec.Holidays, h.Holiday)
		rec.Items = append(rec.Items, h.Items...)
		rec.Reasons = append(rec.Reasons, h.Reason)
	}
	return rec
}

type Recommender struct {
	model TextModel
}

func NewRecommender(model TextModel) *Recommender {
	return &Recommender{model: model}
}

func (r *Recommender) Recommend(ctx context.Context, artForms []string, region string, holidays []Holiday) (*Recommendation, error) {
	text, err := r.model.Generate(ctx, buildPrompt(artForms, region, holidays))
	if err != nil {
		return nil, fmt.Errorf("inventory recommendation: %w", err)
	}
	rec, err := parseRecommendation(text)
	if err != nil {
		log.Warnf("Could not parse inventory recommendation: %v, raw: %.200s", err, text)
		return nil, err
	}
	return rec, nil
}

func buildPrompt(artForms []string, region string, holidays []Holiday) string {
	details := make([]string, 0, len(holidays))
	for _, h := range holidays {
		details = append(details, h.String())
	}
	return fmt.Sprintf(`You are an expert in Indian art and crafts with deep knowledge of regional preferences and cultural traditions. Provide inventory recommendations for a local artisan.

- Artisan's art forms: %[1]s
- Target region: %[2]s (where the artisan wants to sell)
- Upcoming Indian holidays: %[3]s

Recommend specific inventory items that would sell well for each holiday in %[2]s, considering traditional color schemes, local motifs and regional variations of each festival.
Explain for each holiday why the items fit the festival and why they appeal to customers in %[2]s.

Answer with a single JSON object:
{"recommendations": [{"holiday": "Holiday Name", "date": "January 1, 2025, Wednesday", "items": ["item 1", "item 2", "item 3"], "reason": "Brief explanation"}]}`,
		strings.Join(artForms, ", "), region, strings.Join(details, ", "))
}

var (
	fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	bareJSON   = regexp.MustCompile(`(?s)\{.*\}`)
)

// extractJSON returns the JSON object in a model answer, fenced or not
func extractJSON(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareJSON.FindString(text); m != "" {
		return m
	}
	return strings.TrimSpace(text)
}

func parseRecommendation(text string) (*Recommendation, error) {
	var rec Recommendation
	if err := json.Unmarshal([]byte(extractJSON(text)), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if len(rec.Recommendations) == 0 {
		return nil, fmt.Errorf("%w: no recommendations", ErrUnparseable)
	}
	return &rec, nil
}

// Gemini is a TextModel backed by the Gemini API
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini API returned no content")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
