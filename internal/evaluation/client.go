package evaluation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"drawlab/internal/storage"
)

var (
	ErrNoCredential  = errors.New("evaluation: provider credential not configured")
	ErrRateLimited   = errors.New("evaluation: provider rate limit exceeded")
	ErrQuotaExceeded = errors.New("evaluation: provider quota exhausted")
)

// Client calls the multimodal grading provider.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client with a generous timeout; image grading is slow.
func New(baseURL, apiKey, model string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Skip:    skip,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

const promptTemplate = `You are an engineering drawing instructor grading a student's %s drawing against a reference drawing.

First image: the student's drawing. Second image: the reference.

If either image is not a technical drawing, or the student's drawing is unrelated to the reference, respond with score 0 and accuracy 0.

Otherwise grade the student's drawing:
1. score: 0 to 10
2. accuracy: 0 to 100 (percent match against the reference)
3. errors: up to 5 short strings naming specific mistakes
4. feedback: one paragraph of constructive feedback

Respond with exactly this JSON format and nothing else:
{"score": <number>, "accuracy": <number>, "errors": ["..."], "feedback": "..."}`

// Evaluate sends both drawings and the grading prompt to the provider
// and returns a well-formed result. Unparsable model output degrades
// to the fixed fallback rather than an error; provider failures are
// returned as typed errors for status mapping. No retry is attempted.
func (c *Client) Evaluate(ctx context.Context, userDrawing, referenceImage, drawingType string) (Result, error) {
	if c.Skip {
		res := Result{
			Score:    8,
			Accuracy: 82,
			Errors:   []string{"Dimension text slightly undersized"},
			Feedback: "Skip mode: canned evaluation for local development.",
		}
		res.Clamp()
		return res, nil
	}
	if c.APIKey == "" {
		return Result{}, ErrNoCredential
	}

	userPart, err := inlinePart(userDrawing)
	if err != nil {
		return Result{}, fmt.Errorf("evaluation: user drawing: %w", err)
	}
	refPart, err := inlinePart(referenceImage)
	if err != nil {
		return Result{}, fmt.Errorf("evaluation: reference image: %w", err)
	}

	reqBody := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": fmt.Sprintf(promptTemplate, drawingType)},
					userPart,
					refPart,
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     0.2,
			"maxOutputTokens": 1024,
		},
	}

	body, _ := json.Marshal(reqBody)
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("evaluation: provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return Result{}, ErrQuotaExceeded
	case resp.StatusCode >= 300:
		return Result{}, fmt.Errorf("evaluation: provider error %s: %s", resp.Status, string(respBody))
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return Fallback(), nil
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return Fallback(), nil
	}

	res, err := ExtractResult(out.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return Fallback(), nil
	}
	return res, nil
}

// inlinePart converts a data URL into the provider's inline image part.
func inlinePart(dataURL string) (map[string]any, error) {
	data, mime, err := storage.DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	if mime == "" {
		mime = "image/jpeg"
	}
	return map[string]any{
		"inline_data": map[string]string{
			"mime_type": mime,
			"data":      base64.StdEncoding.EncodeToString(data),
		},
	}, nil
}
