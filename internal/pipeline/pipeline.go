package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Suhailakram0318/AI-call/internal/bland"
	"github.com/Suhailakram0318/AI-call/internal/gemini"
	"github.com/Suhailakram0318/AI-call/internal/records"
	"github.com/Suhailakram0318/AI-call/pkg/utils"
)

// Outcome is the terminal result of one call run.
const (
	OutcomeInitiationFailed = "initiation_failed"
	OutcomeCompleted        = "completed"
	OutcomeRejected         = "rejected"
	OutcomeTimedOut         = "timed_out"
)

// CallInitiator places an outbound call and reports whether it started.
type CallInitiator interface {
	Initiate(ctx context.Context, req bland.CallRequest) (callID string, ok bool)
}

// CompletionPoller drives a placed call to a terminal state.
type CompletionPoller interface {
	AwaitCompletion(ctx context.Context, callID string) bland.PollResult
}

// TranscriptAnalyzer turns a transcript into a structured extraction.
// Implementations never fail; they degrade to a fallback result.
type TranscriptAnalyzer interface {
	Analyze(ctx context.Context, transcript string) gemini.ExtractionResult
}

// ReminderScheduler registers the follow-up email when the extraction
// yields a usable future repayment date.
type ReminderScheduler interface {
	MaybeSchedule(summary, rawDate string) bool
}

// Pipeline orchestrates one call end to end: initiate, poll to a terminal
// state, analyze the transcript, schedule the reminder, persist the record.
type Pipeline struct {
	dialer    CallInitiator
	getter    bland.CallGetter
	poller    CompletionPoller
	analyzer  TranscriptAnalyzer
	reminders ReminderScheduler
	store     records.Store
	cache     *records.StatusCache
	log       *slog.Logger

	// Bulk dialing knobs.
	BulkDelay     time.Duration
	MaxConcurrent int

	// Optional cross-process dial cap. Used only when Redis is wired.
	RDB         *redis.Client
	DialSlotKey string
	DialSlotTTL time.Duration
}

type Deps struct {
	Dialer    CallInitiator
	Getter    bland.CallGetter
	Poller    CompletionPoller
	Analyzer  TranscriptAnalyzer
	Reminders ReminderScheduler
	Store     records.Store
	Cache     *records.StatusCache
	Log       *slog.Logger
}

func New(d Deps) *Pipeline {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		dialer:        d.Dialer,
		getter:        d.Getter,
		poller:        d.Poller,
		analyzer:      d.Analyzer,
		reminders:     d.Reminders,
		store:         d.Store,
		cache:         d.Cache,
		log:           log,
		BulkDelay:     2 * time.Second,
		MaxConcurrent: 10,
		DialSlotKey:   "dial:slots",
		DialSlotTTL:   5 * time.Minute,
	}
}

// Start places the call and writes the initiating record. The returned
// call ID is empty when the provider rejected the attempt.
func (p *Pipeline) Start(ctx context.Context, req bland.CallRequest) (string, bool) {
	callID, ok := p.dialer.Initiate(ctx, req)
	if !ok {
		return "", false
	}

	rec := records.CallRecord{
		CallID:      callID,
		PhoneNumber: bland.NormalizePhone(req.Phone),
		Status:      records.StatusInitiating,
	}
	if err := p.store.Save(ctx, rec); err != nil {
		p.log.Error("initiating record not saved", "call_id", callID, "err", err)
	}
	if err := p.cache.SetStatus(ctx, callID, records.StatusInitiating); err != nil {
		p.log.Warn("status cache write failed", "call_id", callID, "err", err)
	}
	return callID, true
}

// Complete polls the call to a terminal state and runs the post-call
// steps. Analysis and reminder scheduling happen only for completed calls;
// for every terminal state the stored record is overlaid with the outcome.
func (p *Pipeline) Complete(ctx context.Context, callID, phone string) string {
	res := p.poller.AwaitCompletion(ctx, callID)

	rec := records.CallRecord{
		CallID:      callID,
		PhoneNumber: bland.NormalizePhone(phone),
	}

	var outcome string
	switch res.Outcome {
	case bland.PollCompleted:
		analysis := p.analyzer.Analyze(ctx, res.Details.Transcript)
		p.reminders.MaybeSchedule(analysis.Summary, analysis.RepaymentDate)

		rec.Status = records.StatusCompleted
		rec.Transcript = res.Details.Transcript
		rec.RecordingURL = res.Details.RecordingURL
		outcome = OutcomeCompleted
	case bland.PollRejected:
		rec.Status = res.LastStatus
		outcome = OutcomeRejected
	default:
		rec.Status = records.StatusTimedOut
		outcome = OutcomeTimedOut
	}

	if err := p.store.Save(ctx, rec); err != nil {
		p.log.Error("call record not saved", "call_id", callID, "status", rec.Status, "err", err)
	}
	if err := p.cache.SetStatus(ctx, callID, rec.Status); err != nil {
		p.log.Warn("status cache write failed", "call_id", callID, "err", err)
	}

	p.log.Info("call finished", "call_id", callID, "outcome", outcome, "status", rec.Status)
	return outcome
}

// Run executes the whole flow synchronously. Used by the CLI dialer and
// the bulk path; the HTTP handler splits Start and Complete instead.
func (p *Pipeline) Run(ctx context.Context, req bland.CallRequest) (string, string) {
	callID, ok := p.Start(ctx, req)
	if !ok {
		return "", OutcomeInitiationFailed
	}
	return callID, p.Complete(ctx, callID, req.Phone)
}

// Status answers the latest known status for a call: the Redis snapshot
// first, then the stored record, then the provider itself.
func (p *Pipeline) Status(ctx context.Context, callID string) (string, error) {
	if s := p.cache.GetStatus(ctx, callID); s != "" {
		return s, nil
	}
	if rec, err := p.store.Get(ctx, callID); err == nil {
		return rec.Status, nil
	}

	details, err := p.getter.GetCall(ctx, callID)
	if err != nil {
		return "", err
	}
	return details.Status, nil
}

// BulkReport summarizes one bulk dialing run.
type BulkReport struct {
	Requested int `json:"requested"`
	Started   int `json:"started"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
	TimedOut  int `json:"timed_out"`
	Failed    int `json:"failed"`
}

// RunBulk dials a batch of contacts. Initiations are spaced BulkDelay
// apart; in-flight calls are capped by MaxConcurrent locally and, when
// Redis is wired, by a shared slot counter across processes.
func (p *Pipeline) RunBulk(ctx context.Context, reqs []bland.CallRequest) BulkReport {
	report := BulkReport{Requested: len(reqs)}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.maxConcurrent())

	for i, req := range reqs {
		if i > 0 && !sleepCtx(ctx, p.BulkDelay) {
			break
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return report
		}

		wg.Add(1)
		go func(req bland.CallRequest) {
			defer wg.Done()
			defer func() { <-sem }()

			release := p.acquireDialSlot(ctx)
			defer release()

			_, outcome := p.Run(ctx, req)

			mu.Lock()
			switch outcome {
			case OutcomeCompleted:
				report.Started++
				report.Completed++
			case OutcomeRejected:
				report.Started++
				report.Rejected++
			case OutcomeTimedOut:
				report.Started++
				report.TimedOut++
			default:
				report.Failed++
			}
			mu.Unlock()
		}(req)
	}

	wg.Wait()
	return report
}

func (p *Pipeline) maxConcurrent() int {
	if p.MaxConcurrent <= 0 {
		return 10
	}
	return p.MaxConcurrent
}

// acquireDialSlot blocks until a shared Redis slot is free. Without Redis
// it is a no-op; the local semaphore still caps concurrency.
func (p *Pipeline) acquireDialSlot(ctx context.Context) func() {
	if p.RDB == nil {
		return func() {}
	}

	for {
		ok, err := utils.AcquireDialSlot(ctx, p.RDB, p.DialSlotKey, p.maxConcurrent(), p.DialSlotTTL)
		if err != nil {
			p.log.Warn("dial slot acquire failed, proceeding without cap", "err", err)
			return func() {}
		}
		if ok {
			return func() {
				if err := utils.ReleaseDialSlot(context.Background(), p.RDB, p.DialSlotKey); err != nil {
					p.log.Warn("dial slot release failed", "err", err)
				}
			}
		}
		if !sleepCtx(ctx, time.Second) {
			return func() {}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
