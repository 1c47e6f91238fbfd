package notify

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocengage/internal/infrastructure/config"
	"github.com/eslsoft/vocengage/internal/usecase"
)

// New builds the configured notification pipeline: the log channel, plus Telegram when a token is
// set, behind an asynchronous Dispatcher. The cleanup func drains in-flight deliveries.
func New(cfg *config.Config, logger *logrus.Logger) (*Dispatcher, func(), error) {
	channels := Fanout{NewLogNotifier(logger)}
	if cfg.Notify.Telegram.Token != "" {
		tg, err := NewTelegramNotifier(cfg.Notify.Telegram)
		if err != nil {
			return nil, nil, err
		}
		channels = append(channels, tg)
		logger.WithField("chat_id", cfg.Notify.Telegram.ChatID).Info("telegram notifications enabled")
	}

	var next usecase.Notifier = channels
	if len(channels) == 1 {
		next = channels[0]
	}
	d := NewDispatcher(next, cfg.Notify.Timeout, cfg.Notify.MaxInFlight, logger)
	return d, d.Close, nil
}
