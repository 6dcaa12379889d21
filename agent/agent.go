package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TwoX-In/GenAI-Hackathon/translation"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrGeneration = errors.New("content generation failed")

type Translator interface {
	ToEnglish(ctx context.Context, text, source string) (*translation.Result, error)
}

type Uploader interface {
	PutObject(ctx context.Context, path string, data []byte, mimeType string) (string, error)
}

// Request is what the generation service receives
type Request struct {
	ProductDescription string `json:"product_description"`
	GCSImageURI        string `json:"gcs_image_uri"`
}

type ImageRef struct {
	ImageURI string `json:"image_uri"`
}

type VideoRef struct {
	GCSURI string `json:"gcs_uri"`
}

type History struct {
	LocationSpecificInfo string `json:"location_specific_info"`
	DescriptiveHistory   string `json:"descriptive_history"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Result is the generated content. Every field is optional
type Result struct {
	Images                []ImageRef `json:"images,omitempty"`
	Video                 *VideoRef  `json:"video,omitempty"`
	Story                 string     `json:"story,omitempty"`
	History               *History   `json:"history,omitempty"`
	FAQs                  []FAQ      `json:"faqs,omitempty"`
	ProcessingTimeSeconds *float64   `json:"processing_time_seconds,omitempty"`
	Error                 *string    `json:"error,omitempty"`
}

// Reply is the generation service's response body
type Reply struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Data    Result `json:"data"`
}

type Processing struct {
	Translation *translation.Result `json:"translation,omitempty"`
	GCSImageURI string              `json:"gcs_image_uri"`
}

type ResponseData struct {
	Input      Request    `json:"input"`
	Processing Processing `json:"processing"`
	Result     Reply      `json:"result"`
}

// Response wraps a reply with what was sent and how the input was prepared
type Response struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    ResponseData `json:"data"`
}

func (r *Response) Content() *Result {
	return &r.Data.Result.Data
}

type Input struct {
	ProductDescription string
	Language           string
	Image              []byte
}

type Client struct {
	baseURL    string
	http       *http.Client
	translator Translator
	uploader   Uploader
}

func NewClient(baseURL string, timeout time.Duration, translator Translator, uploader Uploader) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		translator: translator,
		uploader:   uploader,
	}
}

// Generate translates the description if needed, uploads the image and asks the
// generation service for content. Anything other than a 200 is ErrGeneration
func (c *Client) Generate(ctx context.Context, in Input) (*Response, error) {
	description := in.ProductDescription
	var tr *translation.Result
	if translation.ShouldTranslate(in.Language) && c.translator != nil {
		var err error
		if tr, err = c.translator.ToEnglish(ctx, description, in.Language); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
		}
		description = tr.TranslatedText
	}

	mime := mimetype.Detect(in.Image)
	imageURI, err := c.uploader.PutObject(ctx, uuid.NewString()+mime.Extension(), in.Image, mime.String())
	if err != nil {
		return nil, fmt.Errorf("%w: uploading image: %v", ErrGeneration, err)
	}
	log.Printf("Uploaded source image to %s", imageURI)

	req := Request{ProductDescription: description, GCSImageURI: imageURI}
	reply, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status:  "success",
		Message: "Content generated successfully",
		Data: ResponseData{
			Input:      req,
			Processing: Processing{Translation: tr, GCSImageURI: imageURI},
			Result:     *reply,
		},
	}, nil
}

func (c *Client) post(ctx context.Context, body Request) (*Reply, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrGeneration, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	var reply Reply
	if err = json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("%w: decoding reply: %v", ErrGeneration, err)
	}
	log.Printf("Generation service replied, time: %v", time.Since(start))
	return &reply, nil
}
