package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrVideoTimeout means the operation never reported done within the
	// attempt ceiling.
	ErrVideoTimeout = errors.New("video generation timed out")

	// ErrVideoNoResult means the operation reported done but carried no
	// retrievable media locator, a provider-side anomaly distinct from a
	// timeout.
	ErrVideoNoResult = errors.New("video generation completed, but no download link was found")
)

// VideoConfig is the provider-facing subset of the video knobs.
type VideoConfig struct {
	AspectRatio     string
	Resolution      string
	DurationSeconds int
}

// GenerateVideo runs the full submit-then-poll cycle and returns the media
// download URI.
func (c *Client) GenerateVideo(ctx context.Context, image Image, prompt, negativePrompt string, cfg VideoConfig) (string, error) {
	operation, err := c.SubmitVideo(ctx, image, prompt, negativePrompt, cfg)
	if err != nil {
		return "", err
	}
	return c.WaitVideo(ctx, operation)
}

// SubmitVideo starts a long-running video job seeded with the generated
// still and returns the operation name to poll.
func (c *Client) SubmitVideo(ctx context.Context, image Image, prompt, negativePrompt string, cfg VideoConfig) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}

	req := videoGenerateRequest{
		Instances: []videoInstance{{
			Prompt: prompt,
			Image: &videoImage{
				BytesBase64Encoded: image.Data,
				MimeType:           image.MimeType,
			},
		}},
		Parameters: videoParameters{
			NegativePrompt:  negativePrompt,
			AspectRatio:     cfg.AspectRatio,
			Resolution:      cfg.Resolution,
			DurationSeconds: cfg.DurationSeconds,
			SampleCount:     1,
		},
	}

	var submitted operationState
	url := fmt.Sprintf("%s/%s/models/%s:predictLongRunning", c.baseURL, c.apiVersion, modelVideo)
	if err := c.postJSON(ctx, url, req, &submitted); err != nil {
		return "", fmt.Errorf("submit video generation: %w", err)
	}
	if submitted.Name == "" {
		return "", errors.New("submit video generation: response missing operation name")
	}

	c.logger.Info("video operation submitted", "operation", submitted.Name)
	return submitted.Name, nil
}

// WaitVideo polls the operation every pollInterval until done, bounded by
// maxPollAttempts. The ceiling holds under every response shape.
func (c *Client) WaitVideo(ctx context.Context, name string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, strings.TrimLeft(name, "/"))

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= c.maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		var op operationState
		if err := c.getJSON(ctx, url, &op); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			// Transient poll failures still consume the attempt budget;
			// the ceiling is unconditional.
			c.logger.Warn("video operation poll failed", "operation", name, "attempt", attempt, "err", err)
			continue
		}

		if !op.Done {
			continue
		}

		if op.Error != nil {
			return "", fmt.Errorf("video generation failed: %s", op.Error.Message)
		}

		uri := op.videoURI()
		if uri == "" {
			return "", ErrVideoNoResult
		}
		return uri, nil
	}

	return "", ErrVideoTimeout
}

// DownloadVideo fetches the finished media from the operation's download URI.
// The files endpoint expects the API key as a query parameter.
func (c *Client) DownloadVideo(ctx context.Context, uri string) ([]byte, string, error) {
	if c.httpClient == nil {
		return nil, "", errors.New("http client is nil")
	}

	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, uri+sep+"key="+c.apiKey, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("download video: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("download video: %s", httpResp.Status)
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read video body: %w", err)
	}

	mimeType := httpResp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	return data, mimeType, nil
}

type videoGenerateRequest struct {
	Instances  []videoInstance `json:"instances"`
	Parameters videoParameters `json:"parameters"`
}

type videoInstance struct {
	Prompt string      `json:"prompt"`
	Image  *videoImage `json:"image,omitempty"`
}

type videoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type videoParameters struct {
	NegativePrompt  string `json:"negativePrompt,omitempty"`
	AspectRatio     string `json:"aspectRatio,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	SampleCount     int    `json:"sampleCount,omitempty"`
}

type operationState struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *operationError    `json:"error,omitempty"`
	Response *operationResponse `json:"response,omitempty"`
}

type operationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type operationResponse struct {
	GenerateVideoResponse *generateVideoResponse `json:"generateVideoResponse,omitempty"`
}

type generateVideoResponse struct {
	GeneratedSamples []generatedSample `json:"generatedSamples"`
}

type generatedSample struct {
	Video videoRef `json:"video"`
}

type videoRef struct {
	URI string `json:"uri"`
}

func (op operationState) videoURI() string {
	if op.Response == nil || op.Response.GenerateVideoResponse == nil {
		return ""
	}
	for _, sample := range op.Response.GenerateVideoResponse.GeneratedSamples {
		if sample.Video.URI != "" {
			return sample.Video.URI
		}
	}
	return ""
}
