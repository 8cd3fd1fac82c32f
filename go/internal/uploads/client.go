package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const DefaultEndpoint = "https://freeimage.host/api/1/upload"

var ErrMissingAPIKey = errors.New("image host api key not configured")

// Config holds settings for the image host client
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	// RequestsPerMinute caps outgoing uploads; zero means unlimited.
	RequestsPerMinute int
}

// Client forwards logo images to freeimage.host.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(config Config) *Client {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
	}
}

// Upload sends the image as the source field and returns the host's JSON reply unchanged.
func (c *Client) Upload(ctx context.Context, filename string, image io.Reader) (json.RawMessage, error) {
	if c.config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("upload rate limit: %w", err)
	}

	body, contentType, err := c.form(filename, image)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("image host returned non-json response (status %d)", resp.StatusCode)
	}

	log.Info().
		Str("filename", filename).
		Int("status", resp.StatusCode).
		Msg("logo uploaded")
	return data, nil
}

func (c *Client) form(filename string, image io.Reader) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("source", filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, "", fmt.Errorf("failed to copy image: %w", err)
	}
	if err := w.WriteField("type", "file"); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("key", c.config.APIKey); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}
