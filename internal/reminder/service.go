package reminder

import (
	"log/slog"
	"time"

	"github.com/Suhailakram0318/AI-call/internal/config"
)

// Service decides whether an extracted repayment date warrants a reminder
// and, if so, registers exactly one deferred email job.
type Service struct {
	sched  OnceScheduler
	mailer Mailer
	hour   int
	minute int
	loc    *time.Location
	log    *slog.Logger

	Now func() time.Time
}

func NewService(sched OnceScheduler, mailer Mailer, cfg config.ReminderConfig, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sched:  sched,
		mailer: mailer,
		hour:   cfg.Hour,
		minute: cfg.Minute,
		loc:    cfg.Location(),
		log:    log,
		Now:    time.Now,
	}
}

// MaybeSchedule registers a reminder email for the extracted repayment
// date. It schedules if and only if the string is non-empty, parses to a
// calendar date, and resolves to a future timestamp. Every skip path is
// logged and non-fatal; the caller's pipeline outcome never depends on it.
func (s *Service) MaybeSchedule(summary, rawDate string) bool {
	if rawDate == "" {
		s.log.Debug("no repayment date extracted, skipping reminder")
		return false
	}

	now := s.Now()
	at, err := ResolveRepaymentDate(rawDate, now, s.hour, s.minute, s.loc)
	if err != nil {
		s.log.Warn("repayment date unparseable, skipping reminder", "raw", rawDate, "err", err)
		return false
	}
	if !at.After(now) {
		s.log.Warn("repayment date in the past, skipping reminder", "raw", rawDate, "resolved", at)
		return false
	}

	s.sched.ScheduleOnce(at, func() {
		if err := s.mailer.SendReminder(summary, rawDate); err != nil {
			s.log.Error("reminder email failed", "repayment_date", rawDate, "err", err)
			return
		}
		s.log.Info("reminder email sent", "repayment_date", rawDate)
	})
	s.log.Info("reminder scheduled", "fire_at", at, "raw", rawDate)
	return true
}
