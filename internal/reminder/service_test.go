package reminder

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Suhailakram0318/AI-call/internal/config"
)

type captureScheduler struct {
	mu   sync.Mutex
	at   []time.Time
	jobs []Job
}

func (c *captureScheduler) ScheduleOnce(at time.Time, job Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = append(c.at, at)
	c.jobs = append(c.jobs, job)
}

type captureMailer struct {
	mu    sync.Mutex
	sent  []string
	fail  error
	dates []string
}

func (m *captureMailer) SendReminder(summary, repaymentDate string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, summary)
	m.dates = append(m.dates, repaymentDate)
	return nil
}

func newTestService(sched OnceScheduler, mailer Mailer) *Service {
	cfg := config.ReminderConfig{Hour: 9, Minute: 0, Timezone: "UTC"}
	s := NewService(sched, mailer, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Now = func() time.Time { return time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestMaybeScheduleFutureDate(t *testing.T) {
	sched := &captureScheduler{}
	mailer := &captureMailer{}
	svc := newTestService(sched, mailer)

	if !svc.MaybeSchedule("customer will pay next month", "2025-06-05") {
		t.Fatal("expected a reminder to be scheduled")
	}
	if len(sched.jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(sched.jobs))
	}
	want := time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)
	if !sched.at[0].Equal(want) {
		t.Fatalf("scheduled at %v, want %v", sched.at[0], want)
	}

	sched.jobs[0]()
	if len(mailer.sent) != 1 || mailer.sent[0] != "customer will pay next month" {
		t.Fatalf("mailer got %v", mailer.sent)
	}
	if mailer.dates[0] != "2025-06-05" {
		t.Fatalf("mailer date %q, want 2025-06-05", mailer.dates[0])
	}
}

func TestMaybeScheduleEmptyDate(t *testing.T) {
	sched := &captureScheduler{}
	svc := newTestService(sched, &captureMailer{})

	if svc.MaybeSchedule("summary", "") {
		t.Fatal("empty date must not schedule")
	}
	if len(sched.jobs) != 0 {
		t.Fatalf("got %d jobs, want 0", len(sched.jobs))
	}
}

func TestMaybeScheduleUnparseableDate(t *testing.T) {
	sched := &captureScheduler{}
	svc := newTestService(sched, &captureMailer{})

	if svc.MaybeSchedule("summary", "whenever the customer feels like it") {
		t.Fatal("unparseable date must not schedule")
	}
	if len(sched.jobs) != 0 {
		t.Fatalf("got %d jobs, want 0", len(sched.jobs))
	}
}

func TestMaybeSchedulePastDate(t *testing.T) {
	sched := &captureScheduler{}
	svc := newTestService(sched, &captureMailer{})

	if svc.MaybeSchedule("summary", "2025-01-10") {
		t.Fatal("past date must not schedule")
	}
	if len(sched.jobs) != 0 {
		t.Fatalf("got %d jobs, want 0", len(sched.jobs))
	}
}

func TestMaybeScheduleMailerFailureIsSwallowed(t *testing.T) {
	sched := &captureScheduler{}
	mailer := &captureMailer{fail: errors.New("smtp down")}
	svc := newTestService(sched, mailer)

	if !svc.MaybeSchedule("summary", "2025-06-05") {
		t.Fatal("expected a reminder to be scheduled")
	}
	sched.jobs[0]()
}
