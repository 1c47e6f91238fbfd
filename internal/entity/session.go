package entity

import (
	"math"
	"strings"
	"time"
)

// SessionType identifies the activity a learning session was spent on.
type SessionType string

const (
	SessionFlashcards  SessionType = "flashcards"
	SessionQuiz        SessionType = "quiz"
	SessionTyping      SessionType = "typing"
	SessionSmartReview SessionType = "smart-review"
	SessionGames       SessionType = "games"
	SessionChat        SessionType = "chat"
)

// SessionTypes lists every supported session type.
var SessionTypes = []SessionType{
	SessionFlashcards, SessionQuiz, SessionTyping, SessionSmartReview, SessionGames, SessionChat,
}

// ParseSessionType converts a string into a SessionType, rejecting unknown values.
func ParseSessionType(s string) (SessionType, error) {
	candidate := SessionType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range SessionTypes {
		if t == candidate {
			return t, nil
		}
	}
	return "", ErrInvalidSessionType
}

// Session is one learning session. It is mutable while active and immutable once completed.
type Session struct {
	ID               string
	UserID           int64
	Language         Language
	Type             SessionType
	WordsStudied     int
	CorrectAnswers   int
	TotalAnswers     int
	Accuracy         int
	TimeSpentMinutes int
	Completed        bool
	StartedAt        time.Time
	EndedAt          *time.Time

	// timeSpentReported is set by Apply when the update carried TimeSpentMinutes, even 0.
	timeSpentReported bool
}

// SessionUpdate carries the counters a client reports for an active session.
// Nil fields keep the stored value.
type SessionUpdate struct {
	WordsStudied     *int
	CorrectAnswers   *int
	TotalAnswers     *int
	TimeSpentMinutes *int
}

// Validate rejects negative counters and impossible answer totals.
func (u SessionUpdate) Validate() error {
	for _, v := range []*int{u.WordsStudied, u.CorrectAnswers, u.TotalAnswers, u.TimeSpentMinutes} {
		if v != nil && *v < 0 {
			return ErrInvalidCounters
		}
	}
	if u.CorrectAnswers != nil && u.TotalAnswers != nil && *u.TotalAnswers < *u.CorrectAnswers {
		return ErrInvalidCounters
	}
	return nil
}

// Apply copies the reported counters onto the session and refreshes the derived accuracy.
func (s *Session) Apply(u SessionUpdate) error {
	if s.Completed {
		return ErrSessionAlreadyCompleted
	}
	if err := u.Validate(); err != nil {
		return err
	}
	next := *s
	if u.WordsStudied != nil {
		next.WordsStudied = *u.WordsStudied
	}
	if u.CorrectAnswers != nil {
		next.CorrectAnswers = *u.CorrectAnswers
	}
	if u.TotalAnswers != nil {
		next.TotalAnswers = *u.TotalAnswers
	}
	if u.TimeSpentMinutes != nil {
		next.TimeSpentMinutes = *u.TimeSpentMinutes
		next.timeSpentReported = true
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.Accuracy = Percent(next.CorrectAnswers, next.TotalAnswers)
	*s = next
	return nil
}

// Complete moves the session to its terminal state. TimeSpentMinutes is derived from the wall-clock
// duration unless the client supplied a value: either through Apply on this instance (0 included)
// or as a non-zero stored value. A stored 0 reads as "not supplied".
func (s *Session) Complete(now time.Time) error {
	if s.Completed {
		return ErrSessionAlreadyCompleted
	}
	s.Completed = true
	ended := now
	s.EndedAt = &ended
	if !s.timeSpentReported && s.TimeSpentMinutes == 0 && !s.StartedAt.IsZero() && now.After(s.StartedAt) {
		s.TimeSpentMinutes = int(math.Round(float64(now.Sub(s.StartedAt)) / float64(time.Minute)))
	}
	s.Accuracy = Percent(s.CorrectAnswers, s.TotalAnswers)
	return nil
}

// Validate checks the session fields a completed session is folded from.
func (s *Session) Validate() error {
	switch {
	case s.UserID <= 0:
		return ErrInvalidUserID
	case !s.Language.Valid():
		return ErrInvalidLanguage
	}
	if _, err := ParseSessionType(string(s.Type)); err != nil {
		return err
	}
	if s.WordsStudied < 0 || s.CorrectAnswers < 0 || s.TotalAnswers < 0 || s.TimeSpentMinutes < 0 {
		return ErrInvalidCounters
	}
	if s.TotalAnswers < s.CorrectAnswers {
		return ErrInvalidCounters
	}
	return nil
}

// CompletionDay returns the calendar date the session was completed on.
func (s *Session) CompletionDay(loc *time.Location) (Day, bool) {
	if !s.Completed || s.EndedAt == nil {
		return 0, false
	}
	return DayOf(*s.EndedAt, loc), true
}
