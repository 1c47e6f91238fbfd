package entity

import "errors"

// Domain errors for learning items, sessions and engagement aggregates.
var (
	// ErrInvalidInput is the parent of every validation failure. Callers match it with errors.Is.
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidUserID      = validationError("invalid user ID")
	ErrInvalidLanguage    = validationError("invalid language")
	ErrInvalidItemID      = validationError("invalid item ID")
	ErrInvalidItemText    = validationError("word and translation are required")
	ErrInvalidDifficulty  = validationError("invalid difficulty")
	ErrInvalidSessionType = validationError("unknown session type")
	ErrInvalidCounters    = validationError("invalid session counters")

	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionAlreadyCompleted = errors.New("session already completed")
	ErrItemProgressNotFound    = errors.New("item progress not found")
	ErrDuplicateItemProgress   = errors.New("item progress already exists")

	ErrAchievementAlreadyUnlocked = errors.New("achievement already unlocked")
	ErrUnknownAchievement         = errors.New("unknown achievement")

	// ErrStatsConflict reports an optimistic concurrency failure on the stats record.
	ErrStatsConflict = errors.New("engagement stats were modified concurrently")
	// ErrPersistence marks storage failures that are safe to retry.
	ErrPersistence = errors.New("persistence failure")
)

type invalidInputError struct {
	msg string
}

func validationError(msg string) error { return &invalidInputError{msg: msg} }

func (e *invalidInputError) Error() string { return e.msg }

func (e *invalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// IsValidation reports whether err was caused by rejected caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
