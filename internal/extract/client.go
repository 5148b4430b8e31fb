package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"google.golang.org/genai"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// DefaultModel is the Gemini model used when the config does not name one.
const DefaultModel = "gemini-2.5-flash"

// EmptyLeaksMessage is returned by FindLeaks without a network call when the
// caller has no saved records yet.
const EmptyLeaksMessage = "There is no spending history to analyze yet. " +
	"Save a few expenses first and I'll look for cash leaks."

// recordSchema constrains structured extraction to exactly the four record
// fields, all nullable. The model output is still re-validated field by field
// in normalize.go; the schema is a hint, not a guarantee.
var recordSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"transaction_name": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"total_amount":     {Type: genai.TypeNumber, Nullable: genai.Ptr(true)},
		"transaction_date": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"category":         {Type: genai.TypeString, Nullable: genai.Ptr(true)},
	},
}

// Client wraps the multimodal inference endpoint. Stateless per call; the
// only side effect of any method is the outbound request itself.
type Client struct {
	genai *genai.Client
	model string
}

// New creates an extraction client. Credentials come from the environment
// (GEMINI_API_KEY or application default credentials).
func New(ctx context.Context, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("extract: create genai client: %w", err)
	}
	return &Client{genai: c, model: model}, nil
}

// FromImage extracts a candidate record from a receipt photo. The extracted
// date is passed through as-is when present: photo capture may be retroactive,
// so there is no fallback to today.
func (c *Client) FromImage(ctx context.Context, blob []byte, mimeType string) (domain.CandidateRecord, error) {
	raw, err := c.generateRecord(ctx, blob, mimeType, imagePrompt())
	if err != nil {
		return domain.CandidateRecord{}, &Error{Op: "image", Err: err}
	}
	return normalizeCandidate(raw), nil
}

// FromVoice extracts a candidate record from a recorded voice memo. Voice
// capture is assumed near-real-time, so a missing date defaults to the
// caller-supplied today.
func (c *Client) FromVoice(ctx context.Context, blob []byte, mimeType string, today civil.Date) (domain.CandidateRecord, error) {
	raw, err := c.generateRecord(ctx, blob, mimeType, voicePrompt(today))
	if err != nil {
		return domain.CandidateRecord{}, &Error{Op: "voice", Err: err}
	}
	return normalizeVoiceCandidate(raw, today), nil
}

// Answer asks a free-text question about the user's spending history. The
// record set is rendered as a CSV text block inside the prompt; the response
// is unconstrained prose.
func (c *Client) Answer(ctx context.Context, records []domain.SavedRecord, question string) (string, error) {
	prompt, err := answerPrompt(records, question)
	if err != nil {
		return "", &Error{Op: "answer", Err: err}
	}
	text, err := c.generateText(ctx, prompt)
	if err != nil {
		return "", &Error{Op: "answer", Err: err}
	}
	return text, nil
}

// FindLeaks runs the fixed analytical rubric (fee detection, high-frequency
// vendors, substitution suggestions) over the user's spending history and
// returns ranked tips. An empty record set short-circuits with a canned
// message instead of issuing a network call.
func (c *Client) FindLeaks(ctx context.Context, records []domain.SavedRecord) (string, error) {
	if len(records) == 0 {
		return EmptyLeaksMessage, nil
	}
	prompt, err := leaksPrompt(records)
	if err != nil {
		return "", &Error{Op: "leaks", Err: err}
	}
	text, err := c.generateText(ctx, prompt)
	if err != nil {
		return "", &Error{Op: "leaks", Err: err}
	}
	return text, nil
}

// generateRecord issues one multimodal request with a schema-constrained JSON
// response and parses it into a generic map for normalization.
func (c *Client) generateRecord(ctx context.Context, blob []byte, mimeType, prompt string) (map[string]interface{}, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     blob,
					},
				},
			},
		},
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   recordSchema,
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	return parsed, nil
}

// generateText issues one text-only request with no schema constraint.
func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the JSON-only instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
