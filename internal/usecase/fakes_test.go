package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
)

// fakeStore backs every fake repository so the fake transactor can snapshot and restore it.
type fakeStore struct {
	mu       sync.RWMutex
	seq      int64
	progress map[string]entity.ItemProgress
	sessions map[string]entity.Session
	stats    map[int64]entity.UserEngagementStats
	unlocks  map[int64]map[string]entity.AchievementUnlock

	// statsConflicts makes the next n stats writes lose to a concurrent writer.
	statsConflicts int
	statsSaves     int
	failStatsSave  error
	failUnlock     error
	failLanguages  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		progress: make(map[string]entity.ItemProgress),
		sessions: make(map[string]entity.Session),
		stats:    make(map[int64]entity.UserEngagementStats),
		unlocks:  make(map[int64]map[string]entity.AchievementUnlock),
	}
}

type fakeSnapshot struct {
	seq      int64
	progress map[string]entity.ItemProgress
	sessions map[string]entity.Session
	stats    map[int64]entity.UserEngagementStats
	unlocks  map[int64]map[string]entity.AchievementUnlock
}

func (s *fakeStore) snapshot() fakeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := fakeSnapshot{
		seq:      s.seq,
		progress: make(map[string]entity.ItemProgress, len(s.progress)),
		sessions: make(map[string]entity.Session, len(s.sessions)),
		stats:    make(map[int64]entity.UserEngagementStats, len(s.stats)),
		unlocks:  make(map[int64]map[string]entity.AchievementUnlock, len(s.unlocks)),
	}
	for k, v := range s.progress {
		snap.progress[k] = v
	}
	for k, v := range s.sessions {
		snap.sessions[k] = v
	}
	for k, v := range s.stats {
		snap.stats[k] = v
	}
	for k, set := range s.unlocks {
		inner := make(map[string]entity.AchievementUnlock, len(set))
		for id, u := range set {
			inner[id] = u
		}
		snap.unlocks[k] = inner
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = snap.seq
	s.progress = snap.progress
	s.sessions = snap.sessions
	s.stats = snap.stats
	s.unlocks = snap.unlocks
}

// fakeTransactor restores the whole store when fn fails. Tests that inject failures run a single
// user at a time so the restore never discards another user's writes.
type fakeTransactor struct {
	store *fakeStore
	mu    sync.Mutex
	txs   int
}

func (t *fakeTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	t.txs++
	t.mu.Unlock()
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type fakeItemProgressRepo struct{ store *fakeStore }

func progressKey(userID int64, language entity.Language, itemID string) string {
	return fmt.Sprintf("%d/%s/%s", userID, language, itemID)
}

func (r *fakeItemProgressRepo) Get(ctx context.Context, userID int64, language entity.Language, itemID string) (*entity.ItemProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.progress[progressKey(userID, language, itemID)]
	if !ok {
		return nil, entity.ErrItemProgressNotFound
	}
	return &p, nil
}

func (r *fakeItemProgressRepo) Save(ctx context.Context, progress *entity.ItemProgress) (*entity.ItemProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := progressKey(progress.UserID, progress.Language, progress.ItemID)
	saved := *progress
	if saved.ID == 0 {
		if _, exists := r.store.progress[key]; exists {
			return nil, entity.ErrDuplicateItemProgress
		}
		r.store.seq++
		saved.ID = r.store.seq
	}
	r.store.progress[key] = saved
	return &saved, nil
}

func (r *fakeItemProgressRepo) List(ctx context.Context, query *repository.ListItemProgressQuery) ([]entity.ItemProgress, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []entity.ItemProgress
	for _, p := range r.store.progress {
		if p.UserID == query.UserID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeItemProgressRepo) ListDue(ctx context.Context, userID int64, language entity.Language, now time.Time, limit int) ([]entity.ItemProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []entity.ItemProgress
	for _, p := range r.store.progress {
		if p.UserID != userID || (language != entity.LanguageUnspecified && p.Language != language) || !p.IsDue(now) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NextReviewDueAt.Equal(out[j].NextReviewDueAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].NextReviewDueAt.Before(out[j].NextReviewDueAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSessionRepo struct{ store *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.sessions[session.ID]; exists {
		return fmt.Errorf("%w: duplicate session id", entity.ErrInvalidInput)
	}
	r.store.sessions[session.ID] = cloneSession(*session)
	return nil
}

func (r *fakeSessionRepo) Get(ctx context.Context, userID int64, id string) (*entity.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.sessions[id]
	if !ok || s.UserID != userID {
		return nil, entity.ErrSessionNotFound
	}
	out := cloneSession(s)
	return &out, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.sessions[session.ID]
	if !ok || stored.UserID != session.UserID {
		return entity.ErrSessionNotFound
	}
	if stored.Completed {
		return entity.ErrSessionAlreadyCompleted
	}
	r.store.sessions[session.ID] = cloneSession(*session)
	return nil
}

func (r *fakeSessionRepo) List(ctx context.Context, query *repository.ListSessionQuery) ([]entity.Session, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []entity.Session
	for _, s := range r.store.sessions {
		if s.UserID == query.UserID {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, int64(len(out)), nil
}

func (r *fakeSessionRepo) completed(userID int64) []entity.Session {
	var out []entity.Session
	for _, s := range r.store.sessions {
		if s.UserID == userID && s.Completed && s.EndedAt != nil {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EndedAt.Equal(*out[j].EndedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].EndedAt.Before(*out[j].EndedAt)
	})
	return out
}

func (r *fakeSessionRepo) ListCompleted(ctx context.Context, userID int64) ([]entity.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.completed(userID), nil
}

func (r *fakeSessionRepo) CompletionTimes(ctx context.Context, userID int64) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []time.Time
	for _, s := range r.completed(userID) {
		out = append(out, *s.EndedAt)
	}
	return out, nil
}

func (r *fakeSessionRepo) CountLanguages(ctx context.Context, userID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.failLanguages != nil {
		return 0, r.store.failLanguages
	}
	seen := make(map[entity.Language]struct{})
	for _, s := range r.store.sessions {
		if s.UserID == userID {
			seen[s.Language] = struct{}{}
		}
	}
	return len(seen), nil
}

func (r *fakeSessionRepo) ListUserIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	seen := make(map[int64]struct{})
	var ids []int64
	for _, s := range r.store.sessions {
		if _, ok := seen[s.UserID]; ok || !s.Completed {
			continue
		}
		seen[s.UserID] = struct{}{}
		ids = append(ids, s.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakeStatsRepo struct{ store *fakeStore }

func (r *fakeStatsRepo) Get(ctx context.Context, userID int64) (*entity.UserEngagementStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.stats[userID]
	if !ok {
		return nil, nil
	}
	return cloneStats(s), nil
}

func (r *fakeStatsRepo) Save(ctx context.Context, stats *entity.UserEngagementStats) (*entity.UserEngagementStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.statsSaves++
	if r.store.failStatsSave != nil {
		return nil, r.store.failStatsSave
	}
	if r.store.statsConflicts > 0 {
		r.store.statsConflicts--
		return nil, entity.ErrStatsConflict
	}
	current, exists := r.store.stats[stats.UserID]
	switch {
	case stats.Version == 0 && exists:
		return nil, entity.ErrStatsConflict
	case stats.Version != 0 && (!exists || current.Version != stats.Version):
		return nil, entity.ErrStatsConflict
	}
	saved := cloneStats(*stats)
	saved.Version++
	r.store.stats[stats.UserID] = *saved
	return cloneStats(*saved), nil
}

type fakeAchievementRepo struct{ store *fakeStore }

func (r *fakeAchievementRepo) Create(ctx context.Context, unlock entity.AchievementUnlock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failUnlock != nil {
		return r.store.failUnlock
	}
	set, ok := r.store.unlocks[unlock.UserID]
	if !ok {
		set = make(map[string]entity.AchievementUnlock)
		r.store.unlocks[unlock.UserID] = set
	}
	if _, exists := set[unlock.AchievementID]; exists {
		return entity.ErrAchievementAlreadyUnlocked
	}
	set[unlock.AchievementID] = unlock
	return nil
}

func (r *fakeAchievementRepo) ListByUser(ctx context.Context, userID int64) ([]entity.AchievementUnlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []entity.AchievementUnlock
	for _, u := range r.store.unlocks[userID] {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AchievementID < out[j].AchievementID })
	return out, nil
}

type notification struct {
	UserID int64
	Kind   string
	Value  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
	fail error
}

func (n *fakeNotifier) record(user entity.User, kind, value string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, notification{UserID: user.ID, Kind: kind, Value: value})
	return nil
}

func (n *fakeNotifier) NotifyAchievement(_ context.Context, user entity.User, a entity.Achievement) error {
	return n.record(user, "achievement", a.ID)
}

func (n *fakeNotifier) NotifyMilestone(_ context.Context, user entity.User, m entity.Milestone) error {
	return n.record(user, string(m.Kind), fmt.Sprint(m.Value))
}

func (n *fakeNotifier) NotifyStreak(_ context.Context, user entity.User, days int) error {
	return n.record(user, "streak", fmt.Sprint(days))
}

func (n *fakeNotifier) notifications() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

func (n *fakeNotifier) count(kind, value string) int {
	var c int
	for _, s := range n.notifications() {
		if s.Kind == kind && s.Value == value {
			c++
		}
	}
	return c
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func cloneSession(s entity.Session) entity.Session {
	if s.EndedAt != nil {
		ended := *s.EndedAt
		s.EndedAt = &ended
	}
	return s
}

func cloneStats(s entity.UserEngagementStats) *entity.UserEngagementStats {
	if s.LastSessionDate != nil {
		day := *s.LastSessionDate
		s.LastSessionDate = &day
	}
	return &s
}

func newTestLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}
