package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocengage/internal/entity"
)

// LogNotifier writes every notification to the application log. It is the default channel.
type LogNotifier struct {
	logger logrus.FieldLogger
}

// NewLogNotifier builds a LogNotifier.
func NewLogNotifier(logger logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyAchievement(_ context.Context, user entity.User, a entity.Achievement) error {
	n.log(user, "achievement", AchievementMessage(user, a)).WithField("achievement", a.ID).Info("notification")
	return nil
}

func (n *LogNotifier) NotifyMilestone(_ context.Context, user entity.User, m entity.Milestone) error {
	n.log(user, "milestone", MilestoneMessage(user, m)).WithField("milestone", m.Kind).Info("notification")
	return nil
}

func (n *LogNotifier) NotifyStreak(_ context.Context, user entity.User, days int) error {
	n.log(user, "streak", StreakMessage(user, days)).WithField("streak", days).Info("notification")
	return nil
}

func (n *LogNotifier) log(user entity.User, kind string, msg Message) logrus.FieldLogger {
	return n.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"kind":    kind,
		"subject": msg.Subject,
	})
}
