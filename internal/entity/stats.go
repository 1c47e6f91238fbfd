package entity

import "time"

// EngagementTotals is the derived aggregate of a user's completed sessions.
type EngagementTotals struct {
	TotalWordsLearned      int
	TotalSessionsCompleted int
	TotalStudyTimeMinutes  int
	AverageAccuracy        int
	CurrentStreakDays      int
	MaxStreakDays          int
	LastSessionDate        *Day
}

// UserEngagementStats is the stored aggregate for one user.
type UserEngagementStats struct {
	UserID int64
	EngagementTotals

	// Version increments on every successful write and guards concurrent read-modify-write cycles.
	Version   int64
	UpdatedAt time.Time
}

// NewUserEngagementStats returns the zeroed accumulator for a user.
func NewUserEngagementStats(userID int64) *UserEngagementStats {
	return &UserEngagementStats{UserID: userID}
}

// Fold adds one completed session, completed on day, to the totals. Both the incremental and
// the bulk recompute paths go through this method so they cannot drift apart.
func (t *EngagementTotals) Fold(s *Session, day Day) {
	t.TotalSessionsCompleted++
	t.TotalWordsLearned += s.WordsStudied
	t.TotalStudyTimeMinutes += s.TimeSpentMinutes

	n := t.TotalSessionsCompleted
	t.AverageAccuracy = roundRatio(t.AverageAccuracy*(n-1)+s.Accuracy, n, 1)

	if t.LastSessionDate == nil || day > *t.LastSessionDate {
		last := day
		t.LastSessionDate = &last
	}
}

// ApplyStreak stores a streak result computed from the full completion-date set.
func (t *EngagementTotals) ApplyStreak(current, longest int) {
	t.CurrentStreakDays = current
	t.MaxStreakDays = longest
}

// CurrentStreakAsOf returns the streak still alive on today. The stored value is anchored at the
// last session date and lapses once more than one day has passed without a session.
func (t EngagementTotals) CurrentStreakAsOf(today Day) int {
	if t.LastSessionDate == nil || today-*t.LastSessionDate > 1 {
		return 0
	}
	return t.CurrentStreakDays
}

// Equal reports whether two aggregates carry the same derived values.
func (t EngagementTotals) Equal(o EngagementTotals) bool {
	if (t.LastSessionDate == nil) != (o.LastSessionDate == nil) {
		return false
	}
	if t.LastSessionDate != nil && *t.LastSessionDate != *o.LastSessionDate {
		return false
	}
	t.LastSessionDate, o.LastSessionDate = nil, nil
	return t == o
}
