package bot

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/topupbot/core/telegram"
	"github.com/m3rciful/topupbot/core/telegram/callbacks"
	"github.com/m3rciful/topupbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/topupbot/core/telegram/helpers"
	"github.com/m3rciful/topupbot/internal/engine"
)

// Bot adapts the conversation engine to telebot handlers. It owns the
// callback token codec and reply rendering; all decisions live in the engine.
type Bot struct {
	eng *engine.Engine
}

func New(eng *engine.Engine) *Bot {
	return &Bot{eng: eng}
}

func actorFrom(c tele.Context) engine.Actor {
	u := c.Sender()
	if u == nil {
		return engine.Actor{}
	}
	return engine.Actor{ID: u.ID, Username: u.Username, FirstName: u.FirstName}
}

// RegisterCommands wires slash commands and the plain-text fallback.
func (b *Bot) RegisterCommands(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.command("start"),
		Description: "Open the main menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     b.command("help"),
		Description: "How to place and track orders",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     b.command("stats"),
		Description: "Catalog and order counters",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/adddemo", commands.Command{
		Handler:     b.command("adddemo"),
		Description: "Seed the demo catalog",
		AdminOnly:   true,
	})
	reg.SetTextFallback(b.TextHandler)
}

// RegisterCallbacks registers one handler per known callback key.
func (b *Bot) RegisterCallbacks(reg *tg.Registry) {
	for key := range keyToKind {
		_ = reg.RegisterCallback(key, b.callback(key))
	}
}

func (b *Bot) command(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		reply, err := b.eng.HandleCommand(ctx, actorFrom(c), name)
		renderErr := renderReply(c, reply)
		if err != nil {
			return err
		}
		return renderErr
	}
}

func (b *Bot) callback(key string) tele.HandlerFunc {
	return func(c tele.Context) error {
		action, ok := decodeAction(key, callbacks.CallbackPayload(c))
		if !ok {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		}
		ctx := tghelpers.BuildContext(c)
		reply, err := b.eng.HandleAction(ctx, actorFrom(c), action)
		renderErr := renderReply(c, reply)
		if err != nil {
			return err
		}
		return renderErr
	}
}

// InProgress reports whether the sender has an active conversation.
func (b *Bot) InProgress(userID int64) bool {
	return b.eng.InProgress(userID)
}

// TextHandler feeds a plain-text message into the conversation engine.
func (b *Bot) TextHandler(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := b.eng.HandleText(ctx, actorFrom(c), c.Text())
	renderErr := renderReply(c, reply)
	if err != nil {
		return err
	}
	return renderErr
}

// MediaHandler extracts a media reference from a photo or document update
// and feeds it into the conversation engine.
func (b *Bot) MediaHandler(c tele.Context) error {
	ref := mediaRef(c.Message())
	if ref == "" {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	reply, err := b.eng.HandleMedia(ctx, actorFrom(c), ref)
	renderErr := renderReply(c, reply)
	if err != nil {
		return err
	}
	return renderErr
}

func mediaRef(m *tele.Message) string {
	if m == nil {
		return ""
	}
	if m.Photo != nil {
		return m.Photo.FileID
	}
	if m.Document != nil {
		return m.Document.FileID
	}
	return ""
}
