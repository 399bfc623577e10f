// Package notify fans out best-effort messages to the admin set and to
// order owners. Deliveries ride the asynchronous outbound queue: a failure
// is logged and never reaches the caller, and one admin failing does not
// stop delivery to the others.
package notify

import (
	"context"
	"errors"
	"sync"

	"log/slog"

	"github.com/m3rciful/topupbot/core/logger"
	"github.com/m3rciful/topupbot/core/telegram/sender"
	"github.com/m3rciful/topupbot/internal/engine"
)

// RecipientSender delivers one message to an arbitrary chat. Implemented by
// the transport adapter once the bot connection exists.
type RecipientSender interface {
	Send(userID int64, text string, rows [][]engine.Button) error
}

// Dispatcher implements engine.Notifier on top of the outbound send queue.
type Dispatcher struct {
	adminIDs []int64
	queue    *sender.Dispatcher

	mu  sync.RWMutex
	snd RecipientSender
}

// New creates a dispatcher for the given admin set. The sender is wired
// later, once the transport is up; notifications before that are dropped
// with a warning.
func New(adminIDs []int64, queue *sender.Dispatcher) *Dispatcher {
	return &Dispatcher{adminIDs: adminIDs, queue: queue}
}

// SetSender installs (or clears) the delivery backend.
func (d *Dispatcher) SetSender(s RecipientSender) {
	d.mu.Lock()
	d.snd = s
	d.mu.Unlock()
}

func (d *Dispatcher) sender() RecipientSender {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snd
}

// NotifyAdmins queues an independent delivery per configured admin.
func (d *Dispatcher) NotifyAdmins(ctx context.Context, text string, rows [][]engine.Button) {
	for _, adminID := range d.adminIDs {
		d.deliver(ctx, "notify.admin", adminID, text, rows)
	}
}

// NotifyUser queues a single best-effort delivery to the user.
func (d *Dispatcher) NotifyUser(ctx context.Context, userID int64, text string) {
	d.deliver(ctx, "notify.user", userID, text, nil)
}

func (d *Dispatcher) deliver(ctx context.Context, action string, userID int64, text string, rows [][]engine.Button) {
	snd := d.sender()
	if snd == nil {
		logger.Warn(ctx, "notify", "notify.drop",
			slog.String("action", action),
			slog.Int64("user_id", userID),
		)
		return
	}

	run := func() error { return snd.Send(userID, text, rows) }
	if d.queue == nil {
		go d.runLogged(ctx, action, userID, run)
		return
	}
	if err := d.queue.Enqueue(ctx, action, "sendMessage", run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "notify", "queue.fallback",
				slog.String("action", action),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
			go d.runLogged(ctx, action, userID, run)
			return
		}
		logger.Error(ctx, "notify", "enqueue.failed",
			slog.String("action", action),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

func (d *Dispatcher) runLogged(ctx context.Context, action string, userID int64, run func() error) {
	if err := run(); err != nil {
		logger.Error(ctx, "notify", "delivery.failed",
			slog.String("action", action),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}
