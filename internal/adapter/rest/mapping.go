package rest

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/usecase"
)

type attemptRequest struct {
	Language    string `json:"language"`
	ItemID      string `json:"item_id"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Difficulty  string `json:"difficulty"`
	Category    string `json:"category"`
	IsCorrect   bool   `json:"is_correct"`
}

func (r attemptRequest) toInput() usecase.AttemptInput {
	return usecase.AttemptInput{
		Language:    entity.ParseLanguage(r.Language),
		ItemID:      r.ItemID,
		Word:        r.Word,
		Translation: r.Translation,
		Difficulty:  entity.Difficulty(r.Difficulty),
		Category:    r.Category,
		IsCorrect:   r.IsCorrect,
	}
}

type startSessionRequest struct {
	Language    string `json:"language"`
	SessionType string `json:"session_type"`
}

type sessionUpdateRequest struct {
	WordsStudied     *int `json:"words_studied"`
	CorrectAnswers   *int `json:"correct_answers"`
	TotalAnswers     *int `json:"total_answers"`
	TimeSpentMinutes *int `json:"time_spent_minutes"`
}

func (r sessionUpdateRequest) toUpdate() entity.SessionUpdate {
	return entity.SessionUpdate{
		WordsStudied:     r.WordsStudied,
		CorrectAnswers:   r.CorrectAnswers,
		TotalAnswers:     r.TotalAnswers,
		TimeSpentMinutes: r.TimeSpentMinutes,
	}
}

type itemProgressResponse struct {
	ItemID          string    `json:"item_id"`
	Language        string    `json:"language"`
	Word            string    `json:"word"`
	Translation     string    `json:"translation"`
	CorrectAnswers  int       `json:"correct_answers"`
	TotalAttempts   int       `json:"total_attempts"`
	MasteryLevel    int       `json:"mastery_level"`
	Difficulty      string    `json:"difficulty"`
	Category        string    `json:"category"`
	LastReviewedAt  time.Time `json:"last_reviewed_at"`
	NextReviewDueAt time.Time `json:"next_review_due_at"`
}

func toItemProgressResponse(p entity.ItemProgress) itemProgressResponse {
	return itemProgressResponse{
		ItemID:          p.ItemID,
		Language:        p.Language.Code(),
		Word:            p.Word,
		Translation:     p.Translation,
		CorrectAnswers:  p.CorrectAnswers,
		TotalAttempts:   p.TotalAttempts,
		MasteryLevel:    p.MasteryLevel,
		Difficulty:      string(p.Difficulty),
		Category:        p.Category,
		LastReviewedAt:  p.LastReviewedAt.UTC(),
		NextReviewDueAt: p.NextReviewDueAt.UTC(),
	}
}

type sessionResponse struct {
	ID               string     `json:"id"`
	Language         string     `json:"language"`
	SessionType      string     `json:"session_type"`
	WordsStudied     int        `json:"words_studied"`
	CorrectAnswers   int        `json:"correct_answers"`
	TotalAnswers     int        `json:"total_answers"`
	Accuracy         int        `json:"accuracy"`
	TimeSpentMinutes int        `json:"time_spent_minutes"`
	Completed        bool       `json:"completed"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
}

func toSessionResponse(s entity.Session) sessionResponse {
	resp := sessionResponse{
		ID:               s.ID,
		Language:         s.Language.Code(),
		SessionType:      string(s.Type),
		WordsStudied:     s.WordsStudied,
		CorrectAnswers:   s.CorrectAnswers,
		TotalAnswers:     s.TotalAnswers,
		Accuracy:         s.Accuracy,
		TimeSpentMinutes: s.TimeSpentMinutes,
		Completed:        s.Completed,
		StartedAt:        s.StartedAt.UTC(),
	}
	if s.EndedAt != nil {
		ended := s.EndedAt.UTC()
		resp.EndedAt = &ended
	}
	return resp
}

type statsResponse struct {
	TotalWordsLearned      int    `json:"total_words_learned"`
	TotalSessionsCompleted int    `json:"total_sessions_completed"`
	TotalStudyTimeMinutes  int    `json:"total_study_time_minutes"`
	AverageAccuracy        int    `json:"average_accuracy"`
	CurrentStreakDays      int    `json:"current_streak_days"`
	MaxStreakDays          int    `json:"max_streak_days"`
	LastSessionDate        string `json:"last_session_date,omitempty"`
}

func toStatsResponse(s *entity.UserEngagementStats) statsResponse {
	resp := statsResponse{
		TotalWordsLearned:      s.TotalWordsLearned,
		TotalSessionsCompleted: s.TotalSessionsCompleted,
		TotalStudyTimeMinutes:  s.TotalStudyTimeMinutes,
		AverageAccuracy:        s.AverageAccuracy,
		CurrentStreakDays:      s.CurrentStreakDays,
		MaxStreakDays:          s.MaxStreakDays,
	}
	if s.LastSessionDate != nil {
		resp.LastSessionDate = s.LastSessionDate.String()
	}
	return resp
}

type completionResponse struct {
	Session    sessionResponse      `json:"session"`
	Stats      statsResponse        `json:"stats"`
	Unlocked   []entity.Achievement `json:"unlocked_achievements"`
	Milestones []entity.Milestone   `json:"milestones"`
	StreakDays int                  `json:"streak_milestone,omitempty"`
}

func toCompletionResponse(res *usecase.CompletionResult) completionResponse {
	return completionResponse{
		Session:    toSessionResponse(*res.Session),
		Stats:      toStatsResponse(res.Stats),
		Unlocked:   lo.Ternary(res.Unlocked == nil, []entity.Achievement{}, res.Unlocked),
		Milestones: lo.Ternary(res.Milestones == nil, []entity.Milestone{}, res.Milestones),
		StreakDays: res.StreakDays,
	}
}

type unlockedResponse struct {
	entity.Achievement
	UnlockedAt time.Time `json:"unlocked_at"`
}
