package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

var ErrClassification = errors.New("image classification failed")

// Result is the flat mapping returned by the classifier. Keys it did not return are empty
type Result map[string]string

func (r Result) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Price parses the "price" key. ok is false when missing or not a number
func (r Result) Price() (price float64, ok bool) {
	v, found := r["price"]
	if !found {
		return 0, false
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(v, "₹")), 64)
	if err != nil {
		return 0, false
	}
	return p, true
}

type Image struct {
	Filename string
	MimeType string
	Data     []byte
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Classify(ctx context.Context, img Image) (Result, error) {
	body, contentType, err := multipartImage(img)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classifier/trial_classify", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrClassification, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return decodeResult(data)
}

func decodeResult(data []byte) (Result, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if status, _ := raw["status"].(string); status == "error" {
		msg, _ := raw["message"].(string)
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("%w: %s", ErrClassification, msg)
	}
	result := Result{}
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			result[k] = val
		case float64:
			result[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case []any:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			result[k] = strings.Join(parts, ", ")
		case nil:
		default:
			result[k] = fmt.Sprint(val)
		}
	}
	return result, nil
}

func multipartImage(img Image) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	filename := img.Filename
	if filename == "" {
		filename = "image"
	}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	if img.MimeType != "" {
		h.Set("Content-Type", img.MimeType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err = part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err = w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
