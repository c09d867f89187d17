package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	modelVision    = "gemini-2.5-flash"
	modelImageEdit = "gemini-2.5-flash-image"
	modelImageGen  = "imagen-4.0-generate-001"
	modelVideo     = "veo-3.1-fast-generate-preview"
)

const describeInstruction = "Describe this image of an event venue in detail, focusing on the atmosphere, the time of day, and the key geographic or architectural features. The description will be used to generate an image of a drone light show at this location."

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     *slog.Logger

	// Video operation polling; zero values take the production defaults
	// (10 s period, 180 attempts).
	PollInterval    time.Duration
	MaxPollAttempts int
}

type Client struct {
	apiKey          string
	baseURL         string
	apiVersion      string
	httpClient      *http.Client
	logger          *slog.Logger
	pollInterval    time.Duration
	maxPollAttempts int
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}

	maxPollAttempts := opts.MaxPollAttempts
	if maxPollAttempts <= 0 {
		maxPollAttempts = 180
	}

	return &Client{
		apiKey:          opts.APIKey,
		baseURL:         baseURL,
		apiVersion:      apiVersion,
		httpClient:      opts.HTTPClient,
		logger:          logger,
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
	}
}

// DescribeImage returns a textual description of an uploaded venue photo.
// Single round trip, no retry.
func (c *Client) DescribeImage(ctx context.Context, data, mimeType string) (string, error) {
	req := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{
				{InlineData: &blob{Data: data, MimeType: mimeType}},
				{Text: describeInstruction},
			}},
		},
	}

	resp, err := c.generateContent(ctx, modelVision, req)
	if err != nil {
		return "", fmt.Errorf("failed to analyze the uploaded image: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("failed to analyze the uploaded image: empty description")
	}
	return text, nil
}

// GenerateImage produces one 16:9 jpeg still from the composed prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Image{}, errors.New("prompt is empty")
	}

	req := imagenRequest{
		Instances: []imagenInstance{{Prompt: prompt}},
		Parameters: imagenParameters{
			SampleCount:    1,
			AspectRatio:    "16:9",
			OutputMimeType: "image/jpeg",
		},
	}

	var resp imagenResponse
	url := fmt.Sprintf("%s/%s/models/%s:predict", c.baseURL, c.apiVersion, modelImageGen)
	if err := c.postJSON(ctx, url, req, &resp); err != nil {
		return Image{}, fmt.Errorf("failed to generate the drone show image: %w", err)
	}

	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return Image{}, errors.New("failed to generate the drone show image: no image was generated")
	}

	pred := resp.Predictions[0]
	mimeType := pred.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return Image{Data: pred.BytesBase64Encoded, MimeType: mimeType}, nil
}

// EditImage applies a free-text instruction to an existing image and returns
// the edited version.
func (c *Client) EditImage(ctx context.Context, data, mimeType, instruction string) (Image, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return Image{}, errors.New("edit instruction is empty")
	}

	req := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{
				{InlineData: &blob{Data: data, MimeType: mimeType}},
				{Text: instruction},
			}},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}

	resp, err := c.generateContent(ctx, modelImageEdit, req)
	if err != nil {
		return Image{}, fmt.Errorf("failed to edit the image: %w", err)
	}

	if resp.Image == nil {
		return Image{}, errors.New("failed to edit the image: no edited image was returned")
	}
	return *resp.Image, nil
}

type contentResult struct {
	Text  string
	Image *Image
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (contentResult, error) {
	var decoded generateContentResponse
	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	if err := c.postJSON(ctx, url, payload, &decoded); err != nil {
		return contentResult{}, err
	}

	if len(decoded.Candidates) == 0 {
		return contentResult{}, errors.New("empty candidate list")
	}

	var out contentResult
	var textBuilder strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if out.Image == nil && p.InlineData != nil && p.InlineData.Data != "" {
			mimeType := p.InlineData.MimeType
			if mimeType == "" {
				mimeType = "image/png"
			}
			out.Image = &Image{Data: p.InlineData.Data, MimeType: mimeType}
		}
	}
	out.Text = textBuilder.String()

	return out, nil
}

func (c *Client) postJSON(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(httpReq, out)
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(httpReq, out)
}

func (c *Client) do(httpReq *http.Request, out any) error {
	if c.httpClient == nil {
		return errors.New("http client is nil")
	}

	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return fmt.Errorf("gemini API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature        float64  `json:"temperature,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	OutputMimeType string `json:"outputMimeType,omitempty"`
}

type imagenResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
}

type imagenPrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}
