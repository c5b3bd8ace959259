package bland

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

// scriptedGetter replays a fixed status sequence, repeating the final entry.
type scriptedGetter struct {
	sequence []string
	errs     map[int]error // poll index -> transport error
	polls    int
}

func (g *scriptedGetter) GetCall(ctx context.Context, callID string) (CallDetails, error) {
	i := g.polls
	g.polls++
	if err, ok := g.errs[i]; ok {
		return CallDetails{}, err
	}
	if i >= len(g.sequence) {
		i = len(g.sequence) - 1
	}
	status := g.sequence[i]
	details := CallDetails{CallID: callID, Status: status}
	if status == StatusCompleted {
		details.Transcript = "transcript text"
	}
	return details, nil
}

func testPoller(g CallGetter, interval, timeout time.Duration) *Poller {
	return NewPoller(g, interval, timeout, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAwaitCompletion_StopsOnCompleted(t *testing.T) {
	g := &scriptedGetter{sequence: []string{"initiating", "in_progress", "in_progress", StatusCompleted}}
	p := testPoller(g, time.Millisecond, 180*time.Millisecond)

	res := p.AwaitCompletion(context.Background(), "c1")
	if res.Outcome != PollCompleted {
		t.Fatalf("expected completed outcome, got %v", res.Outcome)
	}
	if g.polls != 4 {
		t.Fatalf("expected polling to stop after the 4th poll, got %d", g.polls)
	}
	if res.Details.Transcript != "transcript text" {
		t.Fatalf("expected transcript on completion, got %+v", res.Details)
	}
}

func TestAwaitCompletion_TerminalFailureIsRejected(t *testing.T) {
	for _, status := range []string{StatusFailed, StatusNoAnswered} {
		g := &scriptedGetter{sequence: []string{"initiating", status}}
		p := testPoller(g, time.Millisecond, 100*time.Millisecond)

		res := p.AwaitCompletion(context.Background(), "c1")
		if res.Outcome != PollRejected {
			t.Fatalf("expected rejected outcome for %s, got %v", status, res.Outcome)
		}
		if g.polls != 2 {
			t.Fatalf("expected 2 polls for %s, got %d", status, g.polls)
		}
	}
}

func TestAwaitCompletion_TimeoutCapsPollCount(t *testing.T) {
	g := &scriptedGetter{sequence: []string{"in_progress"}}
	// 36ms budget at 1ms intervals mirrors the 180s/5s production window.
	p := testPoller(g, time.Millisecond, 36*time.Millisecond)

	res := p.AwaitCompletion(context.Background(), "c1")
	if res.Outcome != PollTimedOut {
		t.Fatalf("expected timeout outcome, got %v", res.Outcome)
	}
	if g.polls != 36 {
		t.Fatalf("expected exactly 36 polls, got %d", g.polls)
	}
	if res.LastStatus != "in_progress" {
		t.Fatalf("expected last status in_progress, got %q", res.LastStatus)
	}
}

func TestAwaitCompletion_TransportFaultDoesNotAbort(t *testing.T) {
	g := &scriptedGetter{
		sequence: []string{"initiating", "in_progress", StatusCompleted},
		errs:     map[int]error{1: errors.New("connection reset")},
	}
	p := testPoller(g, time.Millisecond, 100*time.Millisecond)

	res := p.AwaitCompletion(context.Background(), "c1")
	if res.Outcome != PollCompleted {
		t.Fatalf("expected completion despite transport fault, got %v", res.Outcome)
	}
	if g.polls != 3 {
		t.Fatalf("expected 3 polls, got %d", g.polls)
	}
}

func TestAwaitCompletion_ContextCancellation(t *testing.T) {
	g := &scriptedGetter{sequence: []string{"in_progress"}}
	p := testPoller(g, 50*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := p.AwaitCompletion(ctx, "c1")
	if res.Outcome != PollTimedOut {
		t.Fatalf("expected timeout outcome on cancellation, got %v", res.Outcome)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancellation took too long")
	}
}
