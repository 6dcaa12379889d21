package translation

import (
	"context"
	"fmt"
	"html"
	"strings"

	"cloud.google.com/go/translate"
	"github.com/TwoX-In/GenAI-Hackathon/storage"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

type Result struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	WasTranslated  bool   `json:"was_translated"`
}

type Client struct {
	client *translate.Client
}

func NewClient(ctx context.Context, credentials string) (*Client, error) {
	c, err := translate.NewClient(ctx, storage.ClientOptions(credentials)...)
	if err != nil {
		return nil, fmt.Errorf("translate client: %w", err)
	}
	return &Client{client: c}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// ShouldTranslate is false for English input
func ShouldTranslate(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	return lang != "" && lang != "en"
}

// ToEnglish translates text from source. English input is returned as is
func (c *Client) ToEnglish(ctx context.Context, text, source string) (*Result, error) {
	result := &Result{OriginalText: text, TranslatedText: text, SourceLanguage: source, TargetLanguage: "en"}
	if !ShouldTranslate(source) {
		return result, nil
	}
	src, err := language.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("unknown language %q: %w", source, err)
	}
	out, err := c.client.Translate(ctx, []string{text}, language.English, &translate.Options{
		Source: src,
		Format: translate.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("translating from %s: %w", source, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("translating from %s: empty response", source)
	}
	result.TranslatedText = html.UnescapeString(out[0].Text)
	if out[0].Source != language.Und {
		result.SourceLanguage = out[0].Source.String()
	}
	result.WasTranslated = true
	log.Printf("Translated product description from %s", result.SourceLanguage)
	return result, nil
}
