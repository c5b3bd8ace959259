package bland

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

// Call statuses reported by the provider. Anything outside the terminal set
// means the call is still in flight.
const (
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusNoAnswered = "no_answered"
)

// CallRequest carries the customer fields for one call attempt. Immutable
// once built.
type CallRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	BankName  string `json:"bank_name"`
	DueAmount string `json:"due_amount"`
	DueDate   string `json:"due_date"`

	// Voice and Tone are optional selectors; unknown values fall back to
	// the configured default voice and a neutral tone.
	Voice string `json:"voice,omitempty"`
	Tone  string `json:"tone,omitempty"`
}

// CallDetails is the provider's view of a call, fetched by id.
type CallDetails struct {
	CallID       string `json:"call_id"`
	Status       string `json:"status"`
	Transcript   string `json:"concatenated_transcript"`
	RecordingURL string `json:"recording_url"`
}

// NormalizePhone trims the number and ensures a leading plus.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone != "" && !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return phone
}

// Client talks to the outbound call provider.
type Client struct {
	baseURL      string
	apiKey       string
	defaultVoice string
	httpClient   *http.Client
	log          *slog.Logger
}

func NewClient(cfg config.BlandConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		defaultVoice: cfg.DefaultVoice,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// callPayload is the provider request body. The behavioral flags are fixed
// policy for reminder calls.
type callPayload struct {
	PhoneNumber           string `json:"phone_number"`
	Voice                 string `json:"voice"`
	WaitForGreeting       bool   `json:"wait_for_greeting"`
	Record                bool   `json:"record"`
	AnsweredByEnabled     bool   `json:"answered_by_enabled"`
	NoiseCancellation     bool   `json:"noise_cancellation"`
	InterruptionThreshold int    `json:"interruption_threshold"`
	BlockInterruptions    bool   `json:"block_interruptions"`
	MaxDuration           int    `json:"max_duration"`
	Model                 string `json:"model"`
	Language              string `json:"language"`
	BackgroundTrack       string `json:"background_track"`
	VoicemailAction       string `json:"voicemail_action"`
	Task                  string `json:"task"`
	FirstSentence         string `json:"first_sentence"`
}

type initiateResponse struct {
	CallID string `json:"call_id"`
}

// Initiate places a real outbound phone call and returns the provider's
// call identifier. ok is false on any failure: transport faults and
// provider rejections are logged and absorbed, never raised, and the call
// is never retried here — a retry dials the customer again.
func (c *Client) Initiate(ctx context.Context, req CallRequest) (callID string, ok bool) {
	payload := c.buildCallPayload(req)

	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Error("marshal call payload failed", "err", err)
		return "", false
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/calls", bytes.NewReader(body))
	if err != nil {
		c.log.Error("build call request failed", "err", err)
		return "", false
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error("call initiation transport fault", "phone", req.Phone, "err", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.log.Error("call initiation rejected",
			"phone", req.Phone,
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(raw)),
		)
		return "", false
	}

	var decoded initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Error("decode call response failed", "err", err)
		return "", false
	}
	if decoded.CallID == "" {
		c.log.Error("call response lacks call_id", "phone", req.Phone)
		return "", false
	}
	return decoded.CallID, true
}

// GetCall fetches the current status and, once terminal, the transcript and
// recording reference for a call.
func (c *Client) GetCall(ctx context.Context, callID string) (CallDetails, error) {
	url := fmt.Sprintf("%s/v1/calls/%s", c.baseURL, callID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return CallDetails{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CallDetails{}, fmt.Errorf("fetch call %s: %w", callID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return CallDetails{}, fmt.Errorf("fetch call %s: %s: %s", callID, resp.Status, strings.TrimSpace(string(raw)))
	}

	var details CallDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return CallDetails{}, fmt.Errorf("decode call %s: %w", callID, err)
	}
	if details.CallID == "" {
		details.CallID = callID
	}
	return details, nil
}

func (c *Client) buildCallPayload(req CallRequest) callPayload {
	task, firstSentence := renderScript(req)
	return callPayload{
		PhoneNumber:           NormalizePhone(req.Phone),
		Voice:                 c.voiceID(req.Voice),
		WaitForGreeting:       false,
		Record:                true,
		AnsweredByEnabled:     true,
		NoiseCancellation:     true,
		InterruptionThreshold: 100,
		BlockInterruptions:    false,
		MaxDuration:           12,
		Model:                 "base",
		Language:              "en",
		BackgroundTrack:       "office",
		VoicemailAction:       "hangup",
		Task:                  task,
		FirstSentence:         firstSentence,
	}
}
