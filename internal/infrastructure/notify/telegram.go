package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/infrastructure/config"
)

// sender is the part of *tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts notifications to a Telegram chat.
type TelegramNotifier struct {
	api    sender
	chatID int64
}

// NewTelegramNotifier authenticates the bot token against the Telegram API.
func NewTelegramNotifier(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: cfg.ChatID}, nil
}

func (n *TelegramNotifier) NotifyAchievement(ctx context.Context, user entity.User, a entity.Achievement) error {
	return n.send(ctx, AchievementMessage(user, a))
}

func (n *TelegramNotifier) NotifyMilestone(ctx context.Context, user entity.User, m entity.Milestone) error {
	return n.send(ctx, MilestoneMessage(user, m))
}

func (n *TelegramNotifier) NotifyStreak(ctx context.Context, user entity.User, days int) error {
	return n.send(ctx, StreakMessage(user, days))
}

func (n *TelegramNotifier) send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := tgbotapi.NewMessage(n.chatID, msg.Text())
	out.DisableWebPagePreview = true
	if _, err := n.api.Send(out); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
