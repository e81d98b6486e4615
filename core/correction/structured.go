package correction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
)

// CorrectionResult is the schema-constrained correction payload.
type CorrectionResult struct {
	CorrectedText string `json:"corrected_text" jsonschema:"title=Corrected text,description=The corrected transcript with grammar and punctuation fixed and the original meaning preserved"`
}

// CorrectStructured asks the model for a JSON-schema constrained response
// instead of free text. Unlike Correct it surfaces failures as errors, so
// callers that need the marker behaviour should fall back to Correct.
func (c *Corrector) CorrectStructured(ctx context.Context, text string) (*CorrectionResult, error) {
	ctx, span := tracer.Start(ctx, "correct transcript structured")
	defer span.End()

	if c.apiKey == "" {
		return nil, fmt.Errorf("no api key configured")
	}
	if strings.TrimSpace(text) == "" {
		return &CorrectionResult{}, nil
	}

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(CorrectionResult{})

	reqBody := requestBody{
		Model: c.model,
		Messages: []message{
			{Role: messageRoleSystem, Content: systemPrompt},
			{Role: messageRoleUser, Content: fmt.Sprintf("Original Text: %q\n\nCorrected Text:", text)},
		},
		ResponseFormat: &chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   "CorrectionResult",
				Schema: *schema,
				Strict: true,
			},
		},
	}

	span.SetAttributes(attribute.String("request.model", c.model))
	schemaString, _ := schema.MarshalJSON()
	span.SetAttributes(attribute.String("request.schema", string(schemaString)))

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		return nil, err
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading response body: %w", err)
		span.RecordError(err)
		return nil, err
	}
	var response responseBody
	if err := json.Unmarshal(respBodyBytes, &response); err != nil {
		err = fmt.Errorf("error unmarshalling response: %w", err)
		span.RecordError(err)
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	content := response.Choices[0].Message.Content
	if split := strings.Split(content, "```"); len(split) > 1 {
		content = split[1]
	}

	result := &CorrectionResult{}
	if err := json.Unmarshal([]byte(content), result); err != nil {
		err = fmt.Errorf("error unmarshalling correction: %w", err)
		span.RecordError(err)
		return nil, err
	}

	return result, nil
}

type chatResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type jsonSchemaFormat struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Schema      jsonschema.Schema `json:"schema"`
	Strict      bool              `json:"strict"`
}
