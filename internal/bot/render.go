package bot

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/topupbot/core/logger"
	tghelpers "github.com/m3rciful/topupbot/core/telegram/helpers"
	"github.com/m3rciful/topupbot/internal/engine"
)

// renderReply delivers an engine reply through the originating telebot
// context. Alerts go out as callback answers, evidence media is re-sent by
// file id. Evidence delivery failure is logged but does not fail the reply.
func renderReply(c tele.Context, r engine.Reply) error {
	if c.Callback() != nil {
		if r.Alert != "" {
			_ = c.Respond(&tele.CallbackResponse{Text: r.Alert, ShowAlert: true})
		} else {
			_ = c.Respond()
		}
	}

	var err error
	if r.Text != "" {
		markup := markupFor(r.Rows)
		if r.Edit && c.Callback() != nil {
			err = tghelpers.EditOrSendHTML(c, r.Text, markup)
		} else {
			err = tghelpers.SendHTML(c, r.Text, markup)
		}
	}

	if r.Evidence != "" {
		sendEvidence(c, r.Evidence)
	}
	return err
}

// sendEvidence re-sends a stored media reference. The reference may point
// at a photo or a document; try photo first, fall back to document.
func sendEvidence(c tele.Context, ref string) {
	file := tele.File{FileID: ref}
	if err := c.Send(&tele.Photo{File: file}); err == nil {
		return
	}
	if err := c.Send(&tele.Document{File: file}); err != nil {
		ctx := tghelpers.BuildContext(c)
		logger.Warn(ctx, "tg", "evidence.send_failed",
			slog.String("err", err.Error()),
		)
	}
}
