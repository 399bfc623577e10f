package app

import (
	"context"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/topupbot/core/bootstrap"
	coretelegram "github.com/m3rciful/topupbot/core/telegram"
	tghelpers "github.com/m3rciful/topupbot/core/telegram/helpers"
	"github.com/m3rciful/topupbot/core/telegram/router"
	tgsender "github.com/m3rciful/topupbot/core/telegram/sender"
	"github.com/m3rciful/topupbot/internal/bot"
	"github.com/m3rciful/topupbot/internal/engine"
	"github.com/m3rciful/topupbot/internal/notify"
	"github.com/m3rciful/topupbot/internal/session"
	"github.com/m3rciful/topupbot/internal/store"
)

// App wires the storage layer, session registry, conversation engine,
// notification dispatcher, and the telebot adapter together.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	store    *store.Store
	sessions *session.Registry
	queue    *tgsender.Dispatcher
	notifier *notify.Dispatcher
	engine   *engine.Engine
	bot      *bot.Bot
}

// Bootstrap initialises the logger, connects to the database, runs
// migrations, and builds the application graph.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	st := store.New(res.DB)
	sessions := session.NewRegistry()
	queue := tgsender.NewDispatcher(tgsender.Options{})
	notifier := notify.New(cfg.Core.Telegram.AdminIDs, queue)
	eng := engine.New(st, notifier, sessions, cfg.Core.Telegram.IsAdmin)

	return &App{
		cfg:      cfg,
		db:       res.DB,
		store:    st,
		sessions: sessions,
		queue:    queue,
		notifier: notifier,
		engine:   eng,
		bot:      bot.New(eng),
	}, nil
}

// TelegramRunOptions assembles routes, middleware, and lifecycle hooks for
// the Telegram runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.bot.RegisterCommands(reg)
	a.bot.RegisterCallbacks(reg)

	isAdmin := a.cfg.Core.Telegram.IsAdmin
	routes := []coretelegram.Route{router.CallbackRoute(reg, router.CallbackOptions{})}
	routes = append(routes, router.TextRoutes(a.bot, reg, router.TextOptions{})...)
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin: isAdmin,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, "Forbidden")
		},
	})...)

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Dispatcher:  a.queue,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.notifier.SetSender(bot.NewRecipientSender(rt.Bot))
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.notifier.SetSender(nil)
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}, nil
}
