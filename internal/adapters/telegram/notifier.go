package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/vkravets/newspulse/pkg/logger"
)

// Notifier pushes trend alerts to a Telegram chat
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates new Telegram notifier
func NewNotifier(botToken string, chatID int64) (*Notifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false

	logger.Info("telegram notifier initialized",
		zap.String("bot_username", bot.Self.UserName),
	)

	return &Notifier{api: bot, chatID: chatID}, nil
}

// SendTrendAlert notifies the chat that a keyword's latest daily sentiment
// crossed the configured threshold
func (n *Notifier) SendTrendAlert(keyword string, score float64, samples int) error {
	direction := "positive"
	if score < 0 {
		direction = "negative"
	}

	text := fmt.Sprintf(
		"Sentiment alert: *%s* is strongly %s today (score %.2f over %d articles)",
		keyword, direction, score, samples,
	)

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send trend alert: %w", err)
	}

	logger.Info("trend alert sent",
		zap.String("keyword", keyword),
		zap.Float64("score", score),
	)

	return nil
}
