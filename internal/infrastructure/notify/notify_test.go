package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/infrastructure/config"
)

type recordingNotifier struct {
	mu      sync.Mutex
	events  []string
	block   chan struct{}
	fail    error
	sawDone bool
}

func (r *recordingNotifier) record(ctx context.Context, event string) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			r.mu.Lock()
			r.sawDone = true
			r.mu.Unlock()
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.fail
}

func (r *recordingNotifier) NotifyAchievement(ctx context.Context, _ entity.User, a entity.Achievement) error {
	return r.record(ctx, "achievement:"+a.ID)
}

func (r *recordingNotifier) NotifyMilestone(ctx context.Context, _ entity.User, m entity.Milestone) error {
	return r.record(ctx, "milestone:"+string(m.Kind))
}

func (r *recordingNotifier) NotifyStreak(ctx context.Context, _ entity.User, days int) error {
	return r.record(ctx, "streak")
}

func (r *recordingNotifier) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestDispatcherDeliversInBackground(t *testing.T) {
	next := &recordingNotifier{}
	logger, _ := test.NewNullLogger()
	d := NewDispatcher(next, time.Second, 4, logger)

	ctx, cancel := context.WithCancel(context.Background())
	user := entity.User{ID: 1}
	if err := d.NotifyAchievement(ctx, user, entity.Achievement{ID: "first_lesson"}); err != nil {
		t.Fatalf("NotifyAchievement: %v", err)
	}
	if err := d.NotifyStreak(ctx, user, 7); err != nil {
		t.Fatalf("NotifyStreak: %v", err)
	}
	// Cancelling the request context must not cancel delivery.
	cancel()
	d.Close()

	if got := next.snapshot(); len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", got)
	}
	if err := d.NotifyStreak(context.Background(), user, 14); !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("expected ErrDispatcherClosed, got %v", err)
	}
}

func TestDispatcherDropsWhenBusy(t *testing.T) {
	next := &recordingNotifier{block: make(chan struct{})}
	logger, _ := test.NewNullLogger()
	d := NewDispatcher(next, time.Second, 1, logger)

	user := entity.User{ID: 1}
	if err := d.NotifyStreak(context.Background(), user, 7); err != nil {
		t.Fatalf("NotifyStreak: %v", err)
	}
	if err := d.NotifyStreak(context.Background(), user, 14); !errors.Is(err, ErrDispatcherBusy) {
		t.Fatalf("expected ErrDispatcherBusy, got %v", err)
	}
	close(next.block)
	d.Close()
	if got := next.snapshot(); len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %v", got)
	}
}

func TestDispatcherAppliesTimeoutAndLogsFailures(t *testing.T) {
	next := &recordingNotifier{block: make(chan struct{})}
	logger, hook := test.NewNullLogger()
	d := NewDispatcher(next, 10*time.Millisecond, 1, logger)

	if err := d.NotifyMilestone(context.Background(), entity.User{ID: 1}, entity.Milestone{Kind: entity.MilestoneWordsLearned, Value: 50}); err != nil {
		t.Fatalf("NotifyMilestone: %v", err)
	}
	d.Close()

	if !next.sawDone {
		t.Fatalf("expected delivery context to time out")
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Data["kind"] != "milestone" {
		t.Fatalf("expected a warning for the failed delivery, got %+v", entry)
	}
}

func TestFanoutJoinsErrors(t *testing.T) {
	ok := &recordingNotifier{}
	broken := &recordingNotifier{fail: errors.New("smtp down")}
	f := Fanout{broken, ok}

	err := f.NotifyAchievement(context.Background(), entity.User{ID: 1}, entity.Achievement{ID: "polyglot"})
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if got := ok.snapshot(); len(got) != 1 {
		t.Fatalf("expected the healthy channel to receive the event, got %v", got)
	}
}

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramNotifierSendsText(t *testing.T) {
	api := &fakeSender{}
	n := &TelegramNotifier{api: api, chatID: 42}

	user := entity.User{ID: 1, Name: "Ana"}
	if err := n.NotifyStreak(context.Background(), user, 14); err != nil {
		t.Fatalf("NotifyStreak: %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(api.sent))
	}
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected chattable %T", api.sent[0])
	}
	if msg.ChatID != 42 || !strings.Contains(msg.Text, "14 Day Learning Streak") || !strings.Contains(msg.Text, "Two weeks strong") {
		t.Fatalf("unexpected message %+v", msg)
	}

	api.err = errors.New("forbidden")
	if err := n.NotifyAchievement(context.Background(), user, entity.Achievement{Title: "Polyglot"}); err == nil {
		t.Fatalf("expected send error")
	}
}

func TestNewTelegramNotifierRequiresCredentials(t *testing.T) {
	if _, err := NewTelegramNotifier(configWith("", 1)); err == nil {
		t.Fatalf("expected error without token")
	}
	if _, err := NewTelegramNotifier(configWith("token", 0)); err == nil {
		t.Fatalf("expected error without chat id")
	}
}

func TestMessages(t *testing.T) {
	user := entity.User{ID: 3, Email: "ana@example.com"}
	m := MilestoneMessage(user, entity.Milestone{Value: 100, Unit: "Words", Message: "You've mastered 100 words!"})
	if m.Subject != "🎯 Milestone Reached: 100 Words!" || !strings.HasPrefix(m.Body, "ana@example.com") {
		t.Fatalf("unexpected milestone message %+v", m)
	}
	a := AchievementMessage(entity.User{ID: 3}, entity.Achievement{Title: "Night Owl", Icon: "🦉", Description: "Completed a session after 10 PM"})
	if !strings.Contains(a.Subject, "Night Owl") || !strings.Contains(a.Text(), "learner") {
		t.Fatalf("unexpected achievement message %+v", a)
	}
	if got := streakEncouragement(120); !strings.Contains(got, "legend") {
		t.Fatalf("unexpected encouragement %q", got)
	}
}

func configWith(token string, chatID int64) config.TelegramConfig {
	return config.TelegramConfig{Token: token, ChatID: chatID}
}
