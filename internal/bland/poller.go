package bland

import (
	"context"
	"log/slog"
	"time"
)

// PollOutcome classifies how a polling run ended.
type PollOutcome string

const (
	// PollCompleted means the call finished and a transcript is available.
	PollCompleted PollOutcome = "completed"
	// PollRejected means the call reached a terminal failure state
	// (failed or unanswered).
	PollRejected PollOutcome = "rejected"
	// PollTimedOut means the wall-clock budget elapsed without a terminal
	// completed state. Treated like a failure for reminder purposes.
	PollTimedOut PollOutcome = "timed_out"
)

// PollResult is the terminal view of a polling run.
type PollResult struct {
	Outcome    PollOutcome
	LastStatus string
	Details    CallDetails
}

// CallGetter is the slice of the provider client the poller needs.
type CallGetter interface {
	GetCall(ctx context.Context, callID string) (CallDetails, error)
}

// Poller drives a call to a terminal state by fixed-interval status checks.
type Poller struct {
	Client   CallGetter
	Interval time.Duration
	Timeout  time.Duration
	Log      *slog.Logger
}

func NewPoller(client CallGetter, interval, timeout time.Duration, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{Client: client, Interval: interval, Timeout: timeout, Log: log}
}

// AwaitCompletion polls the provider every Interval until the call reaches
// a terminal state or Timeout elapses. The status endpoint is hit at most
// ceil(Timeout/Interval) times. A transport fault on one poll is logged and
// the loop continues; context cancellation ends the run as a timeout.
func (p *Poller) AwaitCompletion(ctx context.Context, callID string) PollResult {
	lastStatus := "unknown"

	for elapsed := time.Duration(0); elapsed < p.Timeout; elapsed += p.Interval {
		details, err := p.Client.GetCall(ctx, callID)
		if err != nil {
			p.Log.Warn("call status fetch failed, retrying", "call_id", callID, "err", err)
		} else {
			lastStatus = details.Status
			p.Log.Debug("call status", "call_id", callID, "status", lastStatus, "elapsed", elapsed)

			switch details.Status {
			case StatusCompleted:
				return PollResult{Outcome: PollCompleted, LastStatus: details.Status, Details: details}
			case StatusFailed, StatusNoAnswered:
				return PollResult{Outcome: PollRejected, LastStatus: details.Status, Details: details}
			}
		}

		if !sleepCtx(ctx, p.Interval) {
			return PollResult{Outcome: PollTimedOut, LastStatus: lastStatus}
		}
	}

	p.Log.Warn("timed out waiting for call to complete", "call_id", callID, "last_status", lastStatus)
	return PollResult{Outcome: PollTimedOut, LastStatus: lastStatus}
}

// sleepCtx sleeps for d unless the context is cancelled first. Returns
// false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
