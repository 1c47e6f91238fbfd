package seed

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/xuri/excelize/v2"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
)

type fakeTx struct{ calls int }

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeSessions struct {
	repository.SessionRepository
	mu      sync.RWMutex
	created []entity.Session
	fail    error
}

func (f *fakeSessions) Create(_ context.Context, s *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.created = append(f.created, *s)
	return nil
}

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

var header = []any{"user_id", "language", "session_type", "words_studied", "correct_answers", "total_answers", "time_spent_minutes", "started_at", "ended_at"}

func TestImportCreatesCompletedSessions(t *testing.T) {
	buf := workbook(t,
		header,
		[]any{"7", "es", "quiz", "10", "8", "10", "", "2025-03-01T09:00:00Z", "2025-03-01T09:20:00Z"},
		[]any{"7", "ES", "flashcards", "5", "5", "5", "12", "2025-03-02 08:00", "2025-03-02 08:30"},
		[]any{},
		[]any{"0", "es", "quiz", "1", "1", "1", "1", "2025-03-03T08:00:00Z", "2025-03-03T08:01:00Z"},
		[]any{"7", "es", "karaoke", "1", "1", "1", "1", "2025-03-03T08:00:00Z", "2025-03-03T08:01:00Z"},
		[]any{"7", "es", "quiz", "1", "2", "1", "1", "2025-03-03T08:00:00Z", "2025-03-03T08:01:00Z"},
	)
	tx := &fakeTx{}
	sessions := &fakeSessions{}
	logger, _ := test.NewNullLogger()

	res, err := NewImporter(tx, sessions, logger).Import(context.Background(), buf, Config{BatchSize: 1})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Processed != 5 || res.Created != 2 || res.Skipped != 3 || len(res.Errors) != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if tx.calls != 2 {
		t.Fatalf("expected one transaction per batch, got %d", tx.calls)
	}
	first := sessions.created[0]
	if !first.Completed || first.EndedAt == nil || first.TimeSpentMinutes != 20 || first.Accuracy != 80 || first.ID == "" {
		t.Fatalf("unexpected first session %+v", first)
	}
	second := sessions.created[1]
	if second.Language != "es" || second.TimeSpentMinutes != 12 || !second.EndedAt.Equal(time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected second session %+v", second)
	}
}

func TestImportRejectsMissingColumns(t *testing.T) {
	buf := workbook(t, []any{"user_id", "language"})
	logger, _ := test.NewNullLogger()
	_, err := NewImporter(&fakeTx{}, &fakeSessions{}, logger).Import(context.Background(), buf, Config{})
	if err == nil || !strings.Contains(err.Error(), "session_type") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestImportStopsOnStorageError(t *testing.T) {
	buf := workbook(t,
		header,
		[]any{"7", "es", "quiz", "10", "8", "10", "5", "2025-03-01T09:00:00Z", "2025-03-01T09:20:00Z"},
	)
	storage := errors.New("disk full")
	logger, _ := test.NewNullLogger()
	_, err := NewImporter(&fakeTx{}, &fakeSessions{fail: storage}, logger).Import(context.Background(), buf, Config{})
	if !errors.Is(err, storage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
