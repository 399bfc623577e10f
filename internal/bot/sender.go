package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/topupbot/internal/engine"
	"github.com/m3rciful/topupbot/internal/notify"
)

type recipientSender struct {
	bot *tele.Bot
}

// NewRecipientSender wraps a connected bot for out-of-band deliveries,
// used for admin alerts and order decision notices.
func NewRecipientSender(bot *tele.Bot) notify.RecipientSender {
	return recipientSender{bot: bot}
}

func (s recipientSender) Send(userID int64, text string, rows [][]engine.Button) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	if markup := markupFor(rows); markup != nil {
		opts.ReplyMarkup = markup
	}
	_, err := s.bot.Send(&tele.User{ID: userID}, text, opts)
	return err
}
