package router

import (
	"time"

	tg "github.com/m3rciful/topupbot/core/telegram"
	"github.com/m3rciful/topupbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for a conversation manager.
type FSM interface {
	InProgress(userID int64) bool
	TextHandler(c tele.Context) error
	MediaHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// TextRoutes builds handlers for text, photo, and document routing.
// Text destined for an in-progress conversation goes to the FSM first,
// then registered commands, then the registry fallback.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", start, "", "", func() error {
				return fsmMgr.TextHandler(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	mediaHandler := func(name string) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
				return handleWithSummary(c, "fsm_"+name, start, "", "", func() error {
					return fsmMgr.MediaHandler(c)
				})
			}
			if opts.UnknownMedia != nil {
				return handleWithSummary(c, "unexpected_"+name, start, "", "", func() error {
					return opts.UnknownMedia(c)
				})
			}
			logHandlerSummary(c, "unexpected_"+name, start, "skip", "ok", nil)
			return nil
		}
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnPhoto,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(mediaHandler("photo"))),
		},
		{
			Endpoint: tele.OnDocument,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(mediaHandler("document"))),
		},
	}
}
