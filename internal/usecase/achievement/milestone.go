package achievement

import (
	"fmt"
	"slices"

	"github.com/eslsoft/vocengage/internal/entity"
)

var (
	wordThresholds    = []int{50, 100, 250, 500, 1000}
	sessionThresholds = []int{10, 25, 50, 100, 200}
	minuteThresholds  = []int{60, 300, 600, 1200}
	streakThresholds  = []int{7, 14, 30, 50, 100}
)

// Crossings is the set of threshold notifications produced by one stats update.
type Crossings struct {
	Milestones []entity.Milestone
	// StreakDays is non-zero when the current streak landed exactly on a streak threshold.
	StreakDays int
}

// Empty reports whether nothing was crossed.
func (c Crossings) Empty() bool {
	return len(c.Milestones) == 0 && c.StreakDays == 0
}

// CrossedThresholds compares two aggregates and reports every statistic that now equals one of
// its thresholds while differing from its previous value. A statistic that jumps over a threshold
// (45 to 60 words) produces nothing.
func CrossedThresholds(prev, next entity.EngagementTotals) Crossings {
	var c Crossings
	for _, f := range []struct {
		kind       entity.MilestoneKind
		thresholds []int
		prev, next int
	}{
		{entity.MilestoneWordsLearned, wordThresholds, prev.TotalWordsLearned, next.TotalWordsLearned},
		{entity.MilestoneSessionsCompleted, sessionThresholds, prev.TotalSessionsCompleted, next.TotalSessionsCompleted},
		{entity.MilestoneStudyTime, minuteThresholds, prev.TotalStudyTimeMinutes, next.TotalStudyTimeMinutes},
	} {
		if exactCrossing(f.thresholds, f.prev, f.next) {
			c.Milestones = append(c.Milestones, NewMilestone(f.kind, f.next))
		}
	}
	if exactCrossing(streakThresholds, prev.CurrentStreakDays, next.CurrentStreakDays) {
		c.StreakDays = next.CurrentStreakDays
	}
	return c
}

func exactCrossing(thresholds []int, prev, next int) bool {
	return next != prev && slices.Contains(thresholds, next)
}

// NewMilestone builds the display payload for a reached threshold.
func NewMilestone(kind entity.MilestoneKind, value int) entity.Milestone {
	m := entity.Milestone{Kind: kind, Value: value}
	switch kind {
	case entity.MilestoneWordsLearned:
		m.Unit = "Words"
		m.Message = fmt.Sprintf("You've mastered %d words! Your vocabulary is growing stronger every day.", value)
	case entity.MilestoneSessionsCompleted:
		m.Unit = "Sessions"
		m.Message = fmt.Sprintf("%d learning sessions completed! Your consistency is impressive.", value)
	case entity.MilestoneStudyTime:
		m.Unit = "Minutes"
		m.Message = fmt.Sprintf("%d minutes of focused learning! Time well invested in your future.", value)
	default:
		m.Unit = "Points"
		m.Message = fmt.Sprintf("You've reached %d %s!", value, m.Unit)
	}
	return m
}
