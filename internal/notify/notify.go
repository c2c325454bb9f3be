// Package notify schedules and delivers meal reminders. Delivery is a
// narrow Sender interface; the production sender pushes through a Telegram
// bot.
package notify

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender delivers one notification.
type Sender interface {
	Send(title, body string) error
}

// TelegramSender delivers notifications to a fixed chat.
type TelegramSender struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramSender initializes the Telegram bot API.
func NewTelegramSender(token string, chatID int64) (*TelegramSender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	return &TelegramSender{api: api, chatID: chatID}, nil
}

// Send pushes one message to the configured chat.
func (s *TelegramSender) Send(title, body string) error {
	msg := tgbotapi.NewMessage(s.chatID, fmt.Sprintf("*%s*\n%s", title, body))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Scheduler fires notifications at a date or after a delay. Duplicate
// schedule calls are tolerated: each call arms an independent timer and
// delivery failures are logged, never fatal.
type Scheduler struct {
	sender Sender
	log    *zap.Logger
}

// NewScheduler creates a Scheduler. A nil logger is replaced with a no-op
// one.
func NewScheduler(sender Sender, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{sender: sender, log: log}
}

// ScheduleAt arms a notification for the given time. Past dates are
// skipped, not delivered late.
func (s *Scheduler) ScheduleAt(title, body string, at time.Time) {
	delay := time.Until(at)
	if delay <= 0 {
		s.log.Info("reminder date already passed, skipping",
			zap.String("title", title), zap.Time("at", at))
		return
	}
	s.ScheduleIn(title, body, delay)
}

// ScheduleIn arms a notification after the given delay.
func (s *Scheduler) ScheduleIn(title, body string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := s.sender.Send(title, body); err != nil {
			s.log.Warn("failed to deliver notification",
				zap.String("title", title), zap.Error(err))
		}
	})
}
