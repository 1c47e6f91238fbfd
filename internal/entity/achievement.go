package entity

import "time"

// AchievementKind groups achievements for display.
type AchievementKind string

const (
	AchievementKindMilestone   AchievementKind = "milestone"
	AchievementKindStreak      AchievementKind = "streak"
	AchievementKindAchievement AchievementKind = "achievement"
)

// Achievement is the display metadata of a registry rule.
type Achievement struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Kind        AchievementKind `json:"kind"`
}

// AchievementUnlock records that a user earned an achievement. At most one exists per (user, achievement).
type AchievementUnlock struct {
	UserID        int64     `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// MilestoneKind identifies a monotonically increasing statistic with notification thresholds.
type MilestoneKind string

const (
	MilestoneWordsLearned      MilestoneKind = "wordsLearned"
	MilestoneSessionsCompleted MilestoneKind = "sessionsCompleted"
	MilestoneStudyTime         MilestoneKind = "studyTime"
)

// Milestone describes a reached threshold for notification purposes.
type Milestone struct {
	Kind    MilestoneKind `json:"type"`
	Value   int           `json:"value"`
	Unit    string        `json:"unit"`
	Message string        `json:"message"`
}
