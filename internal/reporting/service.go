package reporting

import (
	"context"
	"errors"

	"github.com/Suhailakram0318/AI-call/internal/records"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

type Service struct {
	store records.Store
}

func NewService(store records.Store) *Service { return &Service{store: store} }

// CallsReport aggregates persisted call records by final status plus
// transcript and recording coverage.
func (s *Service) CallsReport(ctx context.Context, req CallsReportRequest) (CallsReport, error) {
	if s.store == nil {
		return CallsReport{}, errors.New("reporting: store not configured")
	}
	if !req.Range.From.IsZero() && !req.Range.To.IsZero() && !req.Range.To.After(req.Range.From) {
		return CallsReport{}, ErrInvalidRequest
	}

	rows, err := s.store.List(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return CallsReport{}, err
	}

	var out CallsReport
	for _, rec := range rows {
		out.TotalCalls++
		if rec.Transcript != "" {
			out.TranscribedCalls++
		}
		if rec.RecordingURL != "" {
			out.RecordedCalls++
		}
		switch rec.Status {
		case records.StatusCompleted:
			out.CompletedCalls++
		case records.StatusFailed:
			out.FailedCalls++
		case records.StatusNoAnswered:
			out.NoAnswerCalls++
		case records.StatusTimedOut:
			out.TimedOutCalls++
		case records.StatusInitiating:
			out.InitiatingCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.CompletionRate = float64(out.CompletedCalls) / float64(out.TotalCalls)
	}
	return out, nil
}
