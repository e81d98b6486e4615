// Package correction turns raw speech-to-text output into cleaned-up text
// through an LLM chat-completions endpoint. Failures never become errors for
// the caller: the corrector degrades to a bracketed status marker the display
// layer can tell apart from real corrections.
package correction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultURL   = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel = "llama-3.3-70b-versatile"
)

// Status markers returned instead of a correction. All markers are bracketed
// so the transport and display layers can tell them apart from corrected
// text.
const (
	StatusServiceUnavailable = "[NLP Correction Service Unavailable]"
	StatusError              = "[NLP Correction Error]"
	StatusUnavailableOrEmpty = "[Correction Unavailable or Empty]"
)

const systemPrompt = `Please act as a text correction tool. The text is from someone who needs help from the customer support. Correct the grammar, spelling, and punctuation, and improve the overall clarity of the following text. This text is a transcription from speech that might be noisy, contain accented speech, or have grammatical errors typical of spoken language. Preserve the original meaning accurately. Do not add any explanations, preamble, or sign-off; provide only the corrected text directly.`

type Corrector struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

type CorrectorOption func(*Corrector)

func WithModel(model string) CorrectorOption {
	return func(c *Corrector) { c.model = model }
}

func WithAPIKey(apiKey string) CorrectorOption {
	return func(c *Corrector) { c.apiKey = apiKey }
}

// WithEndpoint overrides the chat-completions URL.
func WithEndpoint(url string) CorrectorOption {
	return func(c *Corrector) { c.url = url }
}

func NewCorrector(opts ...CorrectorOption) *Corrector {
	c := &Corrector{
		apiKey: os.Getenv("GROQ_API_KEY"),
		model:  defaultModel,
		url:    defaultURL,
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Correct returns the corrected text, an empty string for blank input, or a
// bracketed status marker when correction could not run.
func (c *Corrector) Correct(ctx context.Context, text string) string {
	ctx, span := tracer.Start(ctx, "correct transcript")
	defer span.End()

	if c.apiKey == "" {
		logger.Warn("correction skipped, no api key configured")
		return StatusServiceUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}

	span.SetAttributes(attribute.String("request.model", c.model))

	content, finishReason, err := c.complete(ctx, requestBody{
		Model: c.model,
		Messages: []message{
			{Role: messageRoleSystem, Content: systemPrompt},
			{Role: messageRoleUser, Content: fmt.Sprintf("Original Text: %q\n\nCorrected Text:", text)},
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", err.Error()))
		logger.Warn("correction request failed", "error", err.Error())
		return StatusError
	}

	if finishReason == "content_filter" {
		return fmt.Sprintf("[Correction Blocked: %s]", finishReason)
	}

	corrected := strings.TrimSpace(content)
	if corrected == "" {
		return StatusUnavailableOrEmpty
	}
	return corrected
}

// IsStatus reports whether a correction result is a status marker rather
// than corrected text.
func IsStatus(text string) bool {
	return strings.HasPrefix(text, "[")
}

func (c *Corrector) complete(ctx context.Context, reqBody requestBody) (content, finishReason string, err error) {
	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("error creating HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("error reading response body: %w", err)
	}
	var response responseBody
	if err := json.Unmarshal(respBodyBytes, &response); err != nil {
		return "", "", fmt.Errorf("error unmarshalling response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", "", nil
	}

	return response.Choices[0].Message.Content, response.Choices[0].FinishReason, nil
}
