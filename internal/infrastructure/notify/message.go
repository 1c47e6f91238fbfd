// Package notify delivers engagement events (achievements, milestones and streaks) to learners.
package notify

import (
	"fmt"
	"strings"

	"github.com/eslsoft/vocengage/internal/entity"
)

// Message is a channel-neutral rendering of one notification.
type Message struct {
	Subject string
	Body    string
}

// Text joins subject and body for plain-text channels.
func (m Message) Text() string {
	return strings.TrimSpace(m.Subject + "\n\n" + m.Body)
}

// AchievementMessage renders an unlocked achievement.
func AchievementMessage(user entity.User, a entity.Achievement) Message {
	return Message{
		Subject: fmt.Sprintf("🏆 Achievement Unlocked: %s", a.Title),
		Body:    fmt.Sprintf("%s %s, %s", a.Icon, user.DisplayName(), strings.ToLower(a.Description)),
	}
}

// MilestoneMessage renders a reached threshold.
func MilestoneMessage(user entity.User, m entity.Milestone) Message {
	return Message{
		Subject: fmt.Sprintf("🎯 Milestone Reached: %d %s!", m.Value, m.Unit),
		Body:    fmt.Sprintf("%s, %s", user.DisplayName(), m.Message),
	}
}

// StreakMessage renders a streak threshold.
func StreakMessage(user entity.User, days int) Message {
	return Message{
		Subject: fmt.Sprintf("🔥 %d Day Learning Streak - Keep it up!", days),
		Body:    fmt.Sprintf("%s, %s", user.DisplayName(), streakEncouragement(days)),
	}
}

func streakEncouragement(days int) string {
	switch {
	case days >= 100:
		return "You're a language learning legend! 🌟"
	case days >= 50:
		return "Incredible dedication! You're unstoppable! 💪"
	case days >= 30:
		return "Amazing consistency! You're building great habits! 🚀"
	case days >= 14:
		return "Two weeks strong! You're on fire! 🔥"
	case days >= 7:
		return "One week streak! Great momentum! ⭐"
	default:
		return "Keep the streak alive! You're doing great! 💫"
	}
}
