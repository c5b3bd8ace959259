package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Suhailakram0318/AI-call/internal/bland"
	"github.com/Suhailakram0318/AI-call/internal/config"
	"github.com/Suhailakram0318/AI-call/internal/gemini"
	"github.com/Suhailakram0318/AI-call/internal/pipeline"
	"github.com/Suhailakram0318/AI-call/internal/records"
	"github.com/Suhailakram0318/AI-call/internal/reminder"
	"github.com/Suhailakram0318/AI-call/pkg/logger"
)

// dialer places a single reminder call from the command line and waits
// for it to finish, then writes the call details next to the binary and
// downloads the recording when one is available.
func main() {
	name := flag.String("name", "", "customer name (required)")
	phone := flag.String("phone", "", "customer phone number (required)")
	amount := flag.String("amount", "", "due amount, digits or free text")
	dueDate := flag.String("due-date", "", "due date, YYYY-MM-DD preferred")
	bank := flag.String("bank", "", "bank name spoken during the call")
	voice := flag.String("voice", "", "provider voice name")
	tone := flag.String("tone", "", "delivery tone: soft, neutral, firm, assertive or harsh")
	flag.Parse()

	if *name == "" || *phone == "" {
		fmt.Fprintln(os.Stderr, "usage: dialer -name NAME -phone PHONE [-amount N] [-due-date YYYY-MM-DD] [-bank NAME] [-voice V] [-tone T]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	sched := reminder.NewScheduler(cfg.Dialer.ReminderWorkers, log)

	var mailer reminder.Mailer = reminder.NopMailer{}
	if cfg.SMTP.Host != "" {
		mailer = reminder.NewSMTPMailer(cfg.SMTP)
	}
	reminders := reminder.NewService(sched, mailer, cfg.Reminder, log)

	client := bland.NewClient(cfg.Bland, log)
	poller := bland.NewPoller(client, cfg.Dialer.PollInterval, cfg.Dialer.PollTimeout, log)
	store := records.NewMemoryStore()

	p := pipeline.New(pipeline.Deps{
		Dialer:    client,
		Getter:    client,
		Poller:    poller,
		Analyzer:  gemini.NewClient(cfg.Gemini, log),
		Reminders: reminders,
		Store:     store,
		Log:       log,
	})

	req := bland.CallRequest{
		Name:      *name,
		Phone:     *phone,
		BankName:  *bank,
		DueAmount: *amount,
		DueDate:   *dueDate,
		Voice:     *voice,
		Tone:      *tone,
	}

	callID, outcome := p.Run(ctx, req)
	if outcome == pipeline.OutcomeInitiationFailed {
		log.Error("call initiation failed")
		os.Exit(1)
	}
	log.Info("call finished", "call_id", callID, "outcome", outcome)

	rec, err := store.Get(ctx, callID)
	if err != nil {
		log.Error("record lookup failed", "call_id", callID, "err", err)
		os.Exit(1)
	}

	detailsPath := fmt.Sprintf("call_details_%s.json", callID)
	if err := writeJSON(detailsPath, rec); err != nil {
		log.Error("details write failed", "path", detailsPath, "err", err)
	} else {
		log.Info("details written", "path", detailsPath)
	}

	if rec.RecordingURL != "" {
		recordingPath := fmt.Sprintf("call_recording_%s.mp3", callID)
		if err := downloadFile(ctx, rec.RecordingURL, recordingPath); err != nil {
			log.Error("recording download failed", "url", rec.RecordingURL, "err", err)
		} else {
			log.Info("recording downloaded", "path", recordingPath)
		}
	}

	// Let any scheduled reminder fire only if it is due right away;
	// pending future reminders do not survive process exit.
	sched.Stop()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func downloadFile(ctx context.Context, url, path string) error {
	client := &http.Client{Timeout: 60 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return out.Close()
}
