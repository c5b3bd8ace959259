package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Suhailakram0318/AI-call/internal/config"
)

// ExtractionResult is the structured view of a call transcript. It is a
// value object: produced once per completed call and never mutated.
type ExtractionResult struct {
	Summary             string              `json:"summary"`
	RepaymentDate       string              `json:"repayment_date"`
	Issues              string              `json:"issues"`
	AmountDueDiscussion AmountDueDiscussion `json:"amount_due_discussion"`
	Sentiment           Sentiment           `json:"sentiment"`
}

type AmountDueDiscussion struct {
	CustomerQuestion string `json:"customer_question"`
	BotResponse      string `json:"bot_response"`
}

type Sentiment struct {
	Tone            string   `json:"tone"`
	TopicsDiscussed []string `json:"topics_discussed"`
	ProblemsRaised  []string `json:"problems_raised"`
}

// FallbackResult is returned whenever analysis fails for any reason.
// The pipeline must never see a missing-data error past this client.
func FallbackResult() ExtractionResult {
	return ExtractionResult{
		Sentiment: Sentiment{
			Tone:            "Unknown",
			TopicsDiscussed: []string{},
			ProblemsRaised:  []string{},
		},
	}
}

// Client calls the Gemini generateContent API to derive structured fields
// from a transcript.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger

	// Now is injected so that relative-date resolution in the prompt is
	// deterministic under test.
	Now func() time.Time
}

func NewClient(cfg config.GeminiConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
		Now: time.Now,
	}
}

// Analyze sends the transcript through the extraction prompt and returns a
// well-formed ExtractionResult. It never returns an error: transport
// faults, provider rejections, and unparseable replies all collapse to the
// fallback result, logged.
func (c *Client) Analyze(ctx context.Context, transcript string) ExtractionResult {
	raw, err := c.generate(ctx, buildAnalysisPrompt(transcript, c.Now()))
	if err != nil {
		c.log.Warn("transcript analysis failed", "err", err)
		return FallbackResult()
	}

	fields := ExtractJSON(raw)
	if len(fields) == 0 {
		c.log.Warn("no JSON object in analysis reply", "reply_len", len(raw))
		return FallbackResult()
	}

	return resultFromFields(fields)
}

// resultFromFields maps the loose parsed object onto the result type with
// per-field defaults.
func resultFromFields(fields map[string]any) ExtractionResult {
	out := FallbackResult()

	payload, err := json.Marshal(fields)
	if err != nil {
		return out
	}
	// Decode over the fallback so absent fields keep their defaults.
	if err := json.Unmarshal(payload, &out); err != nil {
		return FallbackResult()
	}
	if out.Sentiment.Tone == "" {
		out.Sentiment.Tone = "Unknown"
	}
	if out.Sentiment.TopicsDiscussed == nil {
		out.Sentiment.TopicsDiscussed = []string{}
	}
	if out.Sentiment.ProblemsRaised == nil {
		out.Sentiment.ProblemsRaised = []string{}
	}
	return out
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return "", fmt.Errorf("reply has no candidates")
	}

	var b strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

func buildAnalysisPrompt(transcript string, now time.Time) string {
	today := now.Format("2006-01-02")
	return fmt.Sprintf(`You are an AI assistant analyzing a customer support call transcript from a bank. Here is the transcript:

"""%s"""

Please extract the following:
1. Summary of the call.
2. Any mentioned repayment date (even if relative like "tomorrow", return the actual date in YYYY-MM-DD format).
3. Issues raised by customer.
4. Did customer ask about amount due? If yes, what did bot reply?
5. Sentiment details.

Important: Always convert relative dates like "tomorrow" or "next week" into absolute ISO date format (YYYY-MM-DD), assuming the current date is %s.

Respond in JSON only:
{
  "summary": "...",
  "repayment_date": "YYYY-MM-DD",
  "issues": "...",
  "amount_due_discussion": {
    "customer_question": "...",
    "bot_response": "..."
  },
  "sentiment": {
    "tone": "...",
    "topics_discussed": ["..."],
    "problems_raised": ["..."]
  }
}`, transcript, today)
}
