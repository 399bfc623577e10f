// Package session holds per-user conversation state. State lives only in
// process memory: a restart drops all in-flight conversations by design.
package session

import (
	"sync"

	"log/slog"

	"github.com/m3rciful/topupbot/core/logger"
)

// State identifies the step a conversation is waiting on.
type State string

const (
	StateIdle             State = "idle"
	StateOrderWaitProduct State = "order_wait_product"
	StateOrderWaitQty     State = "order_wait_qty"
	StateOrderConfirm     State = "order_confirm"
	StateProductWaitName  State = "product_wait_name"
	StateProductWaitPrice State = "product_wait_price"
	StatePriceWaitValue   State = "price_wait_value"
	StateTrackWaitID      State = "track_wait_id"
	StateProofWaitOrderID State = "proof_wait_order_id"
	StateProofWaitMedia   State = "proof_wait_media"
)

// Session carries the transient data a flow accumulates between messages.
type Session struct {
	State State

	// Data collected by the active flow; meaning depends on State.
	ProductID   int64
	ProductName string
	Qty         int
	Total       float64
	OrderID     int64
}

// Reset clears accumulated data and returns the session to the idle state.
func (s *Session) Reset() {
	*s = Session{State: StateIdle}
}

func newSession() *Session {
	return &Session{State: StateIdle}
}

type entry struct {
	mu   sync.Mutex
	sess *Session
}

// Registry owns all sessions and serializes access per user. Transition is
// the only mutation path; concurrent calls for the same user run one at a
// time while different users proceed in parallel.
type Registry struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[int64]*entry)}
}

func (r *Registry) entryFor(userID int64) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok {
		e = &entry{sess: newSession()}
		r.entries[userID] = e
	}
	return e
}

// Get returns a copy of the current session, creating a default one on miss.
func (r *Registry) Get(userID int64) Session {
	e := r.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.sess
}

// State returns the current conversation state for the user.
func (r *Registry) State(userID int64) State {
	return r.Get(userID).State
}

// InProgress reports whether the user has an active flow awaiting input.
func (r *Registry) InProgress(userID int64) bool {
	return r.State(userID) != StateIdle
}

// Reset discards all transient data and returns the user to the idle state.
func (r *Registry) Reset(userID int64) {
	e := r.entryFor(userID)
	e.mu.Lock()
	e.sess = newSession()
	e.mu.Unlock()
	logger.Debug(logger.Background(), "session", "session.reset",
		slog.Int64("user_id", userID),
	)
}

// Transition runs fn with exclusive access to the user's session. The
// function may mutate the session in place; it must not block on network
// calls while holding the lock.
func (r *Registry) Transition(userID int64, fn func(s *Session)) {
	e := r.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	before := e.sess.State
	fn(e.sess)
	if e.sess.State != before {
		logger.Debug(logger.Background(), "session", "session.transition",
			slog.Int64("user_id", userID),
			slog.String("state", string(before)),
			slog.String("state_to", string(e.sess.State)),
		)
	}
}
