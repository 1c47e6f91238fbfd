package achievement

import (
	"context"

	"github.com/eslsoft/vocengage/internal/entity"
)

const polyglotLanguages = 3

// Builtin returns the default achievement rules.
func Builtin() []Rule {
	return []Rule{
		{
			Achievement: entity.Achievement{ID: "first_lesson", Title: "First Steps", Description: "Completed your first learning session", Icon: "🎯", Kind: entity.AchievementKindMilestone},
			Predicate:   Sync(func(in Input) bool { return in.Stats.TotalSessionsCompleted >= 1 }),
		},
		{
			Achievement: entity.Achievement{ID: "week_streak", Title: "Week Warrior", Description: "Maintained a 7-day learning streak", Icon: "🔥", Kind: entity.AchievementKindStreak},
			Predicate:   Sync(func(in Input) bool { return in.Stats.CurrentStreakDays >= 7 }),
		},
		{
			Achievement: entity.Achievement{ID: "month_streak", Title: "Monthly Master", Description: "Maintained a 30-day learning streak", Icon: "🏆", Kind: entity.AchievementKindStreak},
			Predicate:   Sync(func(in Input) bool { return in.Stats.CurrentStreakDays >= 30 }),
		},
		{
			Achievement: entity.Achievement{ID: "hundred_words", Title: "Vocabulary Builder", Description: "Learned 100 new words", Icon: "📚", Kind: entity.AchievementKindMilestone},
			Predicate:   Sync(func(in Input) bool { return in.Stats.TotalWordsLearned >= 100 }),
		},
		{
			Achievement: entity.Achievement{ID: "five_hundred_words", Title: "Word Master", Description: "Learned 500 new words", Icon: "🌟", Kind: entity.AchievementKindMilestone},
			Predicate:   Sync(func(in Input) bool { return in.Stats.TotalWordsLearned >= 500 }),
		},
		{
			Achievement: entity.Achievement{ID: "perfect_score", Title: "Perfectionist", Description: "Achieved 100% accuracy in a session", Icon: "💯", Kind: entity.AchievementKindAchievement},
			Predicate:   Sync(func(in Input) bool { return in.Session != nil && in.Session.Accuracy == 100 }),
		},
		{
			Achievement: entity.Achievement{ID: "speed_demon", Title: "Speed Demon", Description: "Completed 50 words in under 5 minutes", Icon: "⚡", Kind: entity.AchievementKindAchievement},
			Predicate: Sync(func(in Input) bool {
				return in.Session != nil && in.Session.WordsStudied >= 50 && in.Session.TimeSpentMinutes <= 5
			}),
		},
		{
			Achievement: entity.Achievement{ID: "dedicated_learner", Title: "Dedicated Learner", Description: "Completed 50 learning sessions", Icon: "🎓", Kind: entity.AchievementKindMilestone},
			Predicate:   Sync(func(in Input) bool { return in.Stats.TotalSessionsCompleted >= 50 }),
		},
		{
			Achievement: entity.Achievement{ID: "polyglot", Title: "Polyglot", Description: "Studied 3 different languages", Icon: "🌍", Kind: entity.AchievementKindAchievement},
			Predicate: func(ctx context.Context, in Input) (bool, error) {
				if in.History == nil {
					return false, nil
				}
				n, err := in.History.CountLanguages(ctx, in.UserID)
				if err != nil {
					return false, err
				}
				return n >= polyglotLanguages, nil
			},
		},
		{
			Achievement: entity.Achievement{ID: "night_owl", Title: "Night Owl", Description: "Completed a session after 10 PM", Icon: "🦉", Kind: entity.AchievementKindAchievement},
			Predicate: Sync(func(in Input) bool {
				hour, ok := in.SessionHour()
				return ok && (hour >= 22 || hour <= 5)
			}),
		},
		{
			Achievement: entity.Achievement{ID: "early_bird", Title: "Early Bird", Description: "Completed a session before 7 AM", Icon: "🐦", Kind: entity.AchievementKindAchievement},
			Predicate: Sync(func(in Input) bool {
				hour, ok := in.SessionHour()
				return ok && hour >= 5 && hour <= 7
			}),
		},
	}
}
