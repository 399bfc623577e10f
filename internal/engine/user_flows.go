package engine

import (
	"context"
	"strings"

	"github.com/m3rciful/topupbot/internal/session"
	"github.com/m3rciful/topupbot/internal/store"
)

// HandleAction processes a decoded button press.
func (e *Engine) HandleAction(ctx context.Context, actor Actor, a Action) (Reply, error) {
	switch a.Kind {
	case ActionNoop:
		return Reply{}, nil

	case ActionBackMain:
		e.sessions.Reset(actor.ID)
		return Reply{Text: textWelcome, Rows: e.mainMenu(actor.ID), Edit: true}, nil

	case ActionHelp:
		return Reply{Text: textHelp, Rows: [][]Button{backRow()}, Edit: true}, nil

	case ActionListProducts:
		products, err := e.store.Products(ctx)
		if err != nil {
			return Reply{Text: textInternal}, err
		}
		return Reply{Text: productsOverview(products), Rows: [][]Button{backRow()}, Edit: true}, nil

	case ActionNewOrder:
		products, err := e.store.Products(ctx)
		if err != nil {
			return Reply{Text: textInternal}, err
		}
		if len(products) == 0 {
			return Reply{Text: textCatalogEmpty, Rows: [][]Button{backRow()}, Edit: true}, nil
		}
		e.sessions.Transition(actor.ID, func(s *session.Session) {
			s.Reset()
			s.State = session.StateOrderWaitProduct
		})
		return Reply{Text: textChooseProduct, Rows: productChoiceRows(products), Edit: true}, nil

	case ActionSelectProduct:
		return e.selectProduct(ctx, actor, a.ID)

	case ActionConfirmOrder:
		return e.confirmOrder(ctx, actor)

	case ActionSendProof:
		e.sessions.Transition(actor.ID, func(s *session.Session) {
			s.Reset()
			s.State = session.StateProofWaitOrderID
		})
		return Reply{Text: textAskProofID, Rows: [][]Button{backRow()}, Edit: true}, nil

	case ActionTrackOrder:
		e.sessions.Transition(actor.ID, func(s *session.Session) {
			s.Reset()
			s.State = session.StateTrackWaitID
		})
		return Reply{Text: textAskTrackID, Rows: [][]Button{backRow()}, Edit: true}, nil

	default:
		return e.handleAdminAction(ctx, actor, a)
	}
}

// selectProduct stores the pick and asks for a quantity. The state guard
// rejects stale product buttons pressed outside the order flow, so a leftover
// keyboard cannot hijack an unrelated conversation.
func (e *Engine) selectProduct(ctx context.Context, actor Actor, productID int64) (Reply, error) {
	var (
		reply Reply
		opErr error
	)
	e.sessions.Transition(actor.ID, func(s *session.Session) {
		if s.State != session.StateOrderWaitProduct && s.State != session.StateOrderWaitQty {
			reply = Reply{Alert: textStalePick}
			return
		}
		p, err := e.store.ProductByID(ctx, productID)
		if err != nil {
			if isNotFound(err) {
				reply = Reply{Alert: textProductNotFound}
				return
			}
			opErr = err
			reply = Reply{Text: textInternal}
			return
		}
		s.Reset()
		s.State = session.StateOrderWaitQty
		s.ProductID = p.ID
		s.ProductName = p.Name
		reply = Reply{Text: textAskQty, Rows: [][]Button{backRow()}, Edit: true}
	})
	return reply, opErr
}

// confirmOrder creates the pending order. The state guard defends against
// duplicate and late confirm clicks: a second tap finds the session idle and
// gets a transient alert instead of a second order.
func (e *Engine) confirmOrder(ctx context.Context, actor Actor) (Reply, error) {
	var (
		reply   Reply
		opErr   error
		created store.Order
		placed  bool
	)
	e.sessions.Transition(actor.ID, func(s *session.Session) {
		if s.State != session.StateOrderConfirm {
			reply = Reply{Alert: textStaleConfirm}
			return
		}
		productID, qty := s.ProductID, s.Qty
		s.Reset()

		o, err := e.store.CreateOrder(ctx, actor.ID, productID, qty)
		if err != nil {
			if isNotFound(err) {
				reply = Reply{Text: textProductGone, Rows: e.mainMenu(actor.ID), Edit: true}
				return
			}
			opErr = err
			reply = Reply{Text: textInternal}
			return
		}
		created = o
		placed = true
		reply = Reply{Text: textOrderCreated(o.ID, o.Total), Rows: e.mainMenu(actor.ID), Edit: true}
	})
	if placed {
		e.notify.NotifyAdmins(ctx, textNewOrderAlert(created),
			[][]Button{{btn("Review", ActionReviewOrder, created.ID)}})
	}
	return reply, opErr
}

// HandleText routes free text by the current conversation state. Malformed
// input never advances the state: the engine replies with a corrective
// message and waits for a retry.
func (e *Engine) HandleText(ctx context.Context, actor Actor, text string) (Reply, error) {
	var (
		reply Reply
		opErr error
	)
	e.sessions.Transition(actor.ID, func(s *session.Session) {
		switch s.State {
		case session.StateOrderWaitProduct:
			reply = Reply{Text: textUseButtons}

		case session.StateOrderWaitQty:
			qty, ok := parseQty(text)
			if !ok {
				reply = Reply{Text: textBadQty}
				return
			}
			// Re-validate: the catalog may have changed since selection.
			p, err := e.store.ProductByID(ctx, s.ProductID)
			if err != nil {
				if isNotFound(err) {
					s.Reset()
					reply = Reply{Text: textProductGone, Rows: e.mainMenu(actor.ID)}
					return
				}
				opErr = err
				reply = Reply{Text: textInternal}
				return
			}
			s.Qty = qty
			s.Total = p.Price * float64(qty)
			s.ProductName = p.Name
			s.State = session.StateOrderConfirm
			reply = Reply{Text: textOrderSummary(p.Name, qty, s.Total), Rows: confirmRows()}

		case session.StateOrderConfirm:
			reply = Reply{Text: textConfirmButtons, Rows: confirmRows()}

		case session.StateProductWaitName:
			name := strings.TrimSpace(text)
			if name == "" {
				reply = Reply{Text: textBadProductName}
				return
			}
			s.ProductName = name
			s.State = session.StateProductWaitPrice
			reply = Reply{Text: textAskProductPrice}

		case session.StateProductWaitPrice:
			price, ok := parsePrice(text)
			if !ok {
				reply = Reply{Text: textBadPrice}
				return
			}
			name := s.ProductName
			s.Reset()
			id, err := e.store.CreateProduct(ctx, name, price)
			if err != nil {
				opErr = err
				reply = Reply{Text: textInternal}
				return
			}
			reply = Reply{Text: textProductCreated(id, name, price), Rows: adminMenu()}

		case session.StatePriceWaitValue:
			price, ok := parsePrice(text)
			if !ok {
				reply = Reply{Text: textBadPrice}
				return
			}
			productID := s.ProductID
			s.Reset()
			if err := e.store.UpdatePrice(ctx, productID, price); err != nil {
				if isNotFound(err) {
					reply = Reply{Text: textProductNotFound, Rows: adminMenu()}
					return
				}
				opErr = err
				reply = Reply{Text: textInternal}
				return
			}
			reply = Reply{Text: textPriceUpdated, Rows: adminMenu()}

		case session.StateTrackWaitID:
			orderID, ok := parseID(text)
			if !ok {
				reply = Reply{Text: textBadOrderID}
				return
			}
			s.Reset()
			o, err := e.orderForActor(ctx, orderID, actor)
			if err != nil {
				if isNotFound(err) {
					reply = Reply{Text: textOrderNotFound, Rows: e.mainMenu(actor.ID)}
					return
				}
				opErr = err
				reply = Reply{Text: textInternal}
				return
			}
			reply = Reply{Text: textOrderStatus(o), Rows: e.mainMenu(actor.ID)}

		case session.StateProofWaitOrderID:
			orderID, ok := parseID(text)
			if !ok {
				reply = Reply{Text: textBadOrderID}
				return
			}
			if _, err := e.orderForActor(ctx, orderID, actor); err != nil {
				if isNotFound(err) {
					reply = Reply{Text: textOrderNotFound}
					return
				}
				opErr = err
				reply = Reply{Text: textInternal}
				return
			}
			s.OrderID = orderID
			s.State = session.StateProofWaitMedia
			reply = Reply{Text: textAskProofMedia}

		case session.StateProofWaitMedia:
			reply = Reply{Text: textProofTextOnly}

		default:
			reply = Reply{Text: textWelcome, Rows: e.mainMenu(actor.ID)}
		}
	})
	return reply, opErr
}

// HandleMedia attaches payment evidence when the session awaits it. Media in
// any other state is a silent no-op so unrelated uploads are not answered.
func (e *Engine) HandleMedia(ctx context.Context, actor Actor, mediaRef string) (Reply, error) {
	var (
		reply      Reply
		opErr      error
		attachedID int64
	)
	e.sessions.Transition(actor.ID, func(s *session.Session) {
		if s.State != session.StateProofWaitMedia {
			return
		}
		orderID := s.OrderID
		s.Reset()

		unlock := e.orderMu.lock(orderID)
		err := e.store.AttachEvidence(ctx, orderID, mediaRef)
		unlock()
		if err != nil {
			if isNotFound(err) {
				reply = Reply{Text: textOrderNotFound, Rows: e.mainMenu(actor.ID)}
				return
			}
			opErr = err
			reply = Reply{Text: textInternal}
			return
		}
		attachedID = orderID
		reply = Reply{Text: textProofAttached, Rows: e.mainMenu(actor.ID)}
	})
	if attachedID != 0 {
		e.notify.NotifyAdmins(ctx, textProofAlert(attachedID, actor.ID),
			[][]Button{{btn("Review", ActionReviewOrder, attachedID)}})
	}
	return reply, opErr
}
