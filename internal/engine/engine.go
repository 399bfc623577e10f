// Package engine implements the per-user conversation state machine driving
// the order workflow. It is transport-agnostic: inbound events arrive as
// decoded commands, texts, media references, and actions; the outcome is a
// Reply the adapter renders plus best-effort notifications.
package engine

import (
	"context"
	"errors"

	"log/slog"

	"github.com/m3rciful/topupbot/core/logger"
	"github.com/m3rciful/topupbot/internal/session"
	"github.com/m3rciful/topupbot/internal/store"
)

// Store is the persistence surface the engine consumes.
type Store interface {
	EnsureUser(ctx context.Context, u store.User) error

	Products(ctx context.Context) ([]store.Product, error)
	ProductByID(ctx context.Context, id int64) (store.Product, error)
	CreateProduct(ctx context.Context, name string, price float64) (int64, error)
	UpdatePrice(ctx context.Context, id int64, price float64) error
	DeleteProduct(ctx context.Context, id int64) error
	SeedDemo(ctx context.Context) error

	CreateOrder(ctx context.Context, userID, productID int64, qty int) (store.Order, error)
	OrderByID(ctx context.Context, id int64) (store.Order, error)
	PendingOrderIDs(ctx context.Context) ([]int64, error)
	SetStatus(ctx context.Context, orderID int64, status string) (int64, error)
	AttachEvidence(ctx context.Context, orderID int64, ref string) error
	Stats(ctx context.Context) (store.Stats, error)
}

// Notifier delivers best-effort messages outside the current chat. Calls
// must not block: delivery failures are the notifier's problem, never the
// engine's.
type Notifier interface {
	NotifyAdmins(ctx context.Context, text string, rows [][]Button)
	NotifyUser(ctx context.Context, userID int64, text string)
}

// Engine wires the session registry, the store, and the notifier into the
// conversation state machine.
type Engine struct {
	store    Store
	notify   Notifier
	sessions *session.Registry
	isAdmin  func(userID int64) bool

	orderMu orderLocks
}

// New constructs the engine. isAdmin is the capability check over actor ids.
func New(st Store, n Notifier, sessions *session.Registry, isAdmin func(int64) bool) *Engine {
	if isAdmin == nil {
		isAdmin = func(int64) bool { return false }
	}
	return &Engine{
		store:    st,
		notify:   n,
		sessions: sessions,
		isAdmin:  isAdmin,
	}
}

// InProgress reports whether the actor has a flow awaiting input.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.InProgress(userID)
}

// HandleCommand processes a slash command.
func (e *Engine) HandleCommand(ctx context.Context, actor Actor, name string) (Reply, error) {
	switch name {
	case "start":
		if err := e.store.EnsureUser(ctx, store.User{
			UserID:    actor.ID,
			Username:  actor.Username,
			FirstName: actor.FirstName,
		}); err != nil {
			return Reply{Text: textInternal}, err
		}
		e.sessions.Reset(actor.ID)
		return Reply{Text: textWelcome, Rows: e.mainMenu(actor.ID)}, nil

	case "help":
		return Reply{Text: textHelp, Rows: [][]Button{backRow()}}, nil

	case "stats":
		if !e.isAdmin(actor.ID) {
			return Reply{Text: textForbidden}, nil
		}
		st, err := e.store.Stats(ctx)
		if err != nil {
			return Reply{Text: textInternal}, err
		}
		return Reply{Text: textStats(st)}, nil

	case "adddemo":
		if !e.isAdmin(actor.ID) {
			return Reply{Text: textForbidden}, nil
		}
		if err := e.store.SeedDemo(ctx); err != nil {
			return Reply{Text: textInternal}, err
		}
		return Reply{Text: textDemoSeeded}, nil

	default:
		return Reply{Text: textUnknownCommand}, nil
	}
}

// orderForActor fetches an order enforcing the ownership rule: a non-admin
// actor may only reference their own orders; a missing order and a foreign
// order are indistinguishable to the caller.
func (e *Engine) orderForActor(ctx context.Context, orderID int64, actor Actor) (store.Order, error) {
	o, err := e.store.OrderByID(ctx, orderID)
	if err != nil {
		return store.Order{}, err
	}
	if o.UserID != actor.ID && !e.isAdmin(actor.ID) {
		logger.Warn(ctx, "engine", "order.access_denied",
			slog.Int64("order_id", orderID),
			slog.Int64("user_id", actor.ID),
			slog.Int64("owner_id", o.UserID),
		)
		return store.Order{}, store.ErrNotFound
	}
	return o, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
