// ABOUTME: HTTP client for the generation service
// ABOUTME: JSON endpoints plus bounded polling for video operations
package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Stillwave-Audio/stillwave-go/internal/script"
)

// Client talks JSON over HTTP to the generation gateway.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client

	// Video operations are polled with a fixed delay and a hard attempt
	// budget; an unbounded poll loop is not acceptable in production.
	pollInterval time.Duration
	maxPolls     int
}

// ClientOption adjusts a Client.
type ClientOption func(*Client)

// WithPolling overrides the video poll interval and attempt budget.
func WithPolling(interval time.Duration, maxPolls int) ClientOption {
	return func(c *Client) {
		c.pollInterval = interval
		c.maxPolls = maxPolls
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = httpc }
}

// NewClient creates a provider client for the given base URL.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpc:        &http.Client{Timeout: 60 * time.Second},
		pollInterval: 5 * time.Second,
		maxPolls:     60,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GenerateScript(ctx context.Context, theme string) (script.Script, error) {
	var out script.Script
	err := c.post(ctx, "/v1/scripts", map[string]string{"theme": theme}, &out)
	if err != nil {
		return script.Script{}, fmt.Errorf("generate script: %w", err)
	}
	return out, nil
}

func (c *Client) GenerateSpeech(ctx context.Context, text, voice string) (Speech, error) {
	var out Speech
	req := map[string]string{"text": text, "voice": voice}
	if err := c.post(ctx, "/v1/speech", req, &out); err != nil {
		return Speech{}, fmt.Errorf("generate speech: %w", err)
	}
	if out.MimeType == "" {
		out.MimeType = "audio/pcm;rate=24000"
	}
	return out, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt, size, ratio string) (string, error) {
	var out struct {
		ImageRef string `json:"image_ref"`
	}
	req := map[string]string{"prompt": prompt, "size": size, "ratio": ratio}
	if err := c.post(ctx, "/v1/images", req, &out); err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	return out.ImageRef, nil
}

func (c *Client) EditImage(ctx context.Context, imageRef, prompt string) (string, error) {
	var out struct {
		ImageRef string `json:"image_ref"`
	}
	req := map[string]string{"image_ref": imageRef, "prompt": prompt}
	if err := c.post(ctx, "/v1/images/edit", req, &out); err != nil {
		return "", fmt.Errorf("edit image: %w", err)
	}
	return out.ImageRef, nil
}

// GenerateVideo starts a long-running video operation and polls it to
// completion with a fixed delay, bounded attempts, and ctx cancellation.
func (c *Client) GenerateVideo(ctx context.Context, prompt, imageRef string) (string, error) {
	var started struct {
		OperationID string `json:"operation_id"`
	}
	req := map[string]string{"prompt": prompt, "image_ref": imageRef}
	if err := c.post(ctx, "/v1/videos", req, &started); err != nil {
		return "", fmt.Errorf("generate video: %w", err)
	}

	for attempt := 1; attempt <= c.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("generate video: %w", ctx.Err())
		case <-time.After(c.pollInterval):
		}

		var status struct {
			Done     bool   `json:"done"`
			VideoRef string `json:"video_ref"`
			Error    string `json:"error"`
		}
		if err := c.get(ctx, "/v1/videos/"+started.OperationID, &status); err != nil {
			return "", fmt.Errorf("poll video: %w", err)
		}
		if status.Error != "" {
			return "", fmt.Errorf("generate video: %s", status.Error)
		}
		if status.Done {
			log.Printf("Video operation %s completed after %d polls", started.OperationID, attempt)
			return status.VideoRef, nil
		}
	}

	return "", fmt.Errorf("generate video: operation %s not done after %d polls", started.OperationID, c.maxPolls)
}

func (c *Client) Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	req := map[string]interface{}{
		"audio":       base64.StdEncoding.EncodeToString(pcm),
		"sample_rate": sampleRate,
	}
	if err := c.post(ctx, "/v1/transcribe", req, &out); err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return out.Text, nil
}

func (c *Client) InterpretCommand(ctx context.Context, transcript string) (RawIntent, error) {
	var out RawIntent
	req := map[string]string{"transcript": transcript}
	if err := c.post(ctx, "/v1/interpret", req, &out); err != nil {
		return RawIntent{}, fmt.Errorf("interpret command: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
