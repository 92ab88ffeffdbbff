package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appextractor "github.com/edupay-lk/edupay/internal/application/verification/extractor"
	"github.com/edupay-lk/edupay/internal/shared/config"
	"github.com/edupay-lk/edupay/internal/shared/logger"
)

const (
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	defaultModel   = "gemini-1.5-flash"

	// maxImageBytes caps slip downloads; bank slips are photos, not videos.
	maxImageBytes = 8 << 20
)

const slipPrompt = `You are reading a photo of a Sri Lankan bank payment slip or mobile banking screenshot.
Extract the following fields and respond with a single JSON object, nothing else:
{
  "amount": <number, the deposited amount in rupees, e.g. 5000.00, or null>,
  "reference": <string, the transaction reference number, or null>,
  "observed_at": <string, the transaction date and time in RFC 3339 format, or null>,
  "bank": <string, the bank name, or null>,
  "legible": <boolean, false if the image is blurry, cropped, or not a payment slip>
}
If you cannot read a field with confidence, use null. If the image is not clearly a payment slip, set legible to false.`

// GeminiExtractor reads payment slips with the Gemini vision API. It is
// fail-safe: any download, transport or parse problem yields an illegible
// result so the claim stays pending instead of being decided on bad data.
type GeminiExtractor struct {
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logger.Interface
}

func NewGeminiExtractor(cfg *config.GeminiConfig, log logger.Interface) *GeminiExtractor {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GeminiExtractor{
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// slipFields mirrors the JSON shape the prompt demands from the model.
type slipFields struct {
	Amount     *float64 `json:"amount"`
	Reference  *string  `json:"reference"`
	ObservedAt *string  `json:"observed_at"`
	Bank       *string  `json:"bank"`
	Legible    bool     `json:"legible"`
}

func (e *GeminiExtractor) Extract(ctx context.Context, imageRef string) (*appextractor.SlipData, error) {
	imageData, mimeType, err := e.fetchImage(ctx, imageRef)
	if err != nil {
		return appextractor.Illegible(), fmt.Errorf("failed to fetch slip image: %w", err)
	}

	text, err := e.generate(ctx, imageData, mimeType)
	if err != nil {
		return appextractor.Illegible(), fmt.Errorf("gemini request failed: %w", err)
	}

	data, err := parseSlipResponse(text)
	if err != nil {
		return appextractor.Illegible(), fmt.Errorf("failed to parse gemini response: %w", err)
	}

	return data, nil
}

func (e *GeminiExtractor) fetchImage(ctx context.Context, imageRef string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageRef, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image body is empty")
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}

	return data, mimeType, nil
}

func (e *GeminiExtractor) generate(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: slipPrompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(geminiEndpoint, e.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// parseSlipResponse turns the model's text reply into slip data. The model
// is asked for bare JSON but often wraps it in a markdown fence anyway.
func parseSlipResponse(text string) (*appextractor.SlipData, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var fields slipFields
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if !fields.Legible {
		return appextractor.Illegible(), nil
	}

	data := &appextractor.SlipData{Legible: true}

	if fields.Amount != nil && *fields.Amount > 0 {
		cents := int64(*fields.Amount*100 + 0.5)
		data.AmountCents = &cents
	}
	if fields.Reference != nil && strings.TrimSpace(*fields.Reference) != "" {
		ref := strings.TrimSpace(*fields.Reference)
		data.Reference = &ref
	}
	if fields.ObservedAt != nil {
		if ts, err := time.Parse(time.RFC3339, *fields.ObservedAt); err == nil {
			utc := ts.UTC()
			data.ObservedAt = &utc
		}
	}
	if fields.Bank != nil && strings.TrimSpace(*fields.Bank) != "" {
		bank := strings.TrimSpace(*fields.Bank)
		data.BankName = &bank
	}

	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
