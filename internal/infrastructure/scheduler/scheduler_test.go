package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/eslsoft/vocengage/internal/infrastructure/config"
	"github.com/eslsoft/vocengage/internal/usecase"
)

type stubRecomputer struct {
	calls int
	err   error
}

func (s *stubRecomputer) RecomputeAll(context.Context) (usecase.RecomputeSummary, error) {
	s.calls++
	return usecase.RecomputeSummary{Users: 3, Updated: 1}, s.err
}

func newTestScheduler(t *testing.T, cron string, rec Recomputer) (*Scheduler, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	cfg := &config.Config{Engagement: config.EngagementConfig{Timezone: "UTC", RecomputeCron: cron}}
	s, err := New(cfg, rec, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, hook
}

func TestStartWithoutCronIsNoop(t *testing.T) {
	s, _ := newTestScheduler(t, "", &stubRecomputer{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.scheduler.IsRunning() {
		t.Fatalf("expected scheduler to stay idle")
	}
}

func TestStartRejectsInvalidCron(t *testing.T) {
	s, _ := newTestScheduler(t, "every day at noon", &stubRecomputer{})
	if err := s.Start(); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}

func TestStartSchedulesRecompute(t *testing.T) {
	s, _ := newTestScheduler(t, "0 3 * * *", &stubRecomputer{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()
	if n := len(s.scheduler.Jobs()); n != 1 {
		t.Fatalf("expected one job, got %d", n)
	}
}

func TestRecomputeAllLogsOutcome(t *testing.T) {
	rec := &stubRecomputer{}
	s, hook := newTestScheduler(t, "", rec)

	s.recomputeAll()
	if rec.calls != 1 || hook.LastEntry().Level != logrus.InfoLevel {
		t.Fatalf("expected a successful run, got %d calls and %+v", rec.calls, hook.LastEntry())
	}

	rec.err = errors.New("database down")
	s.recomputeAll()
	if hook.LastEntry().Level != logrus.ErrorLevel {
		t.Fatalf("expected an error entry, got %+v", hook.LastEntry())
	}
}
