package entity

import (
	"strings"
	"time"
)

// Difficulty is the perceived difficulty of a learning item.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

const (
	DefaultCategory = "general"

	masteryBandWidth = 20
	maxMasteryLevel  = 100
)

// ItemProgress is the spaced-repetition record of one user for one learning item.
type ItemProgress struct {
	ID              int64
	UserID          int64
	Language        Language
	ItemID          string
	Word            string
	Translation     string
	CorrectAnswers  int
	TotalAttempts   int
	MasteryLevel    int
	LastReviewedAt  time.Time
	NextReviewDueAt time.Time
	Difficulty      Difficulty
	Category        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewItemProgress returns a zero-counter record for a user's first attempt at an item.
func NewItemProgress(userID int64, language Language, itemID, word, translation string) *ItemProgress {
	return &ItemProgress{
		UserID:      userID,
		Language:    language,
		ItemID:      strings.TrimSpace(itemID),
		Word:        strings.TrimSpace(word),
		Translation: strings.TrimSpace(translation),
		Difficulty:  DifficultyMedium,
		Category:    DefaultCategory,
	}
}

// RecordAttempt folds one attempt outcome into the record and reschedules the next review.
func (p *ItemProgress) RecordAttempt(isCorrect bool, now time.Time) {
	p.TotalAttempts++
	if isCorrect {
		p.CorrectAnswers++
	}
	p.MasteryLevel = Percent(p.CorrectAnswers, p.TotalAttempts)
	p.LastReviewedAt = now
	p.NextReviewDueAt = now.Add(time.Duration(ReviewIntervalDays(p.MasteryLevel)) * 24 * time.Hour)
}

// ReviewIntervalDays maps a mastery level to the review interval: one extra day per band of 20.
func ReviewIntervalDays(mastery int) int {
	if mastery < 0 {
		mastery = 0
	}
	if mastery > maxMasteryLevel {
		mastery = maxMasteryLevel
	}
	return mastery/masteryBandWidth + 1
}

// IsDue reports whether the item should be reviewed at now.
func (p *ItemProgress) IsDue(now time.Time) bool {
	return !p.NextReviewDueAt.After(now)
}

// Normalize ensures defaults & constraints before persistence.
func (p *ItemProgress) Normalize(now time.Time) {
	p.ItemID = strings.TrimSpace(p.ItemID)
	p.Word = strings.TrimSpace(p.Word)
	p.Translation = strings.TrimSpace(p.Translation)
	if p.Difficulty == "" {
		p.Difficulty = DifficultyMedium
	}
	if strings.TrimSpace(p.Category) == "" {
		p.Category = DefaultCategory
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// Validate checks the counter invariants of the record.
func (p *ItemProgress) Validate() error {
	switch {
	case p.UserID <= 0:
		return ErrInvalidUserID
	case !p.Language.Valid():
		return ErrInvalidLanguage
	case p.ItemID == "":
		return ErrInvalidItemID
	case p.Word == "" || p.Translation == "":
		return ErrInvalidItemText
	case !p.Difficulty.Valid():
		return ErrInvalidDifficulty
	case p.CorrectAnswers < 0 || p.TotalAttempts < p.CorrectAnswers:
		return ErrInvalidCounters
	}
	return nil
}
