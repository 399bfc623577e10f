package engine

import (
	"context"

	"github.com/m3rciful/topupbot/internal/session"
	"github.com/m3rciful/topupbot/internal/store"
)

// handleAdminAction processes the operator-only part of the action set. A
// non-admin actor gets a terse rejection and no state change.
func (e *Engine) handleAdminAction(ctx context.Context, actor Actor, a Action) (Reply, error) {
	if !e.isAdmin(actor.ID) {
		return Reply{Alert: textForbidden}, nil
	}

	switch a.Kind {
	case ActionAdminPanel:
		return Reply{Text: textAdminPanel, Rows: adminMenu(), Edit: true}, nil

	case ActionAddProduct:
		e.sessions.Transition(actor.ID, func(s *session.Session) {
			s.Reset()
			s.State = session.StateProductWaitName
		})
		return Reply{Text: textAskProductName, Rows: [][]Button{backRow()}, Edit: true}, nil

	case ActionManageProducts:
		products, err := e.store.Products(ctx)
		if err != nil {
			return Reply{Text: textInternal}, err
		}
		if len(products) == 0 {
			return Reply{Text: textCatalogEmpty, Rows: adminMenu(), Edit: true}, nil
		}
		return Reply{Text: textManageProducts, Rows: manageProductRows(products), Edit: true}, nil

	case ActionProductDetail:
		p, err := e.store.ProductByID(ctx, a.ID)
		if err != nil {
			if isNotFound(err) {
				return Reply{Alert: textProductNotFound}, nil
			}
			return Reply{Text: textInternal}, err
		}
		return Reply{Text: textProductDetail(p), Rows: productDetailRows(p.ID), Edit: true}, nil

	case ActionEditPrice:
		e.sessions.Transition(actor.ID, func(s *session.Session) {
			s.Reset()
			s.State = session.StatePriceWaitValue
			s.ProductID = a.ID
		})
		return Reply{Text: textAskNewPrice, Rows: [][]Button{backRow()}, Edit: true}, nil

	case ActionDeleteProduct:
		if err := e.store.DeleteProduct(ctx, a.ID); err != nil {
			if isNotFound(err) {
				return Reply{Alert: textProductNotFound}, nil
			}
			return Reply{Text: textInternal}, err
		}
		products, err := e.store.Products(ctx)
		if err != nil {
			return Reply{Text: textInternal}, err
		}
		if len(products) == 0 {
			return Reply{Text: textCatalogEmpty, Rows: adminMenu(), Edit: true, Alert: textProductDeleted}, nil
		}
		return Reply{Text: textManageProducts, Rows: manageProductRows(products), Edit: true, Alert: textProductDeleted}, nil

	case ActionListPending:
		ids, err := e.store.PendingOrderIDs(ctx)
		if err != nil {
			return Reply{Text: textInternal}, err
		}
		if len(ids) == 0 {
			return Reply{Text: textNoPending, Rows: [][]Button{backRow()}, Edit: true}, nil
		}
		return Reply{Text: textPendingOrders, Rows: pendingRows(ids), Edit: true}, nil

	case ActionReviewOrder:
		o, err := e.store.OrderByID(ctx, a.ID)
		if err != nil {
			if isNotFound(err) {
				return Reply{Alert: textOrderNotFound}, nil
			}
			return Reply{Text: textInternal}, err
		}
		reply := Reply{Text: textOrderReview(o), Rows: reviewRows(o.ID), Edit: true}
		if o.HasEvidence() {
			reply.Evidence = o.EvidenceRef.String
		}
		return reply, nil

	case ActionAcceptOrder:
		return e.decideOrder(ctx, a.ID, store.StatusAccepted)

	case ActionRejectOrder:
		return e.decideOrder(ctx, a.ID, store.StatusRejected)

	case ActionOrderDetails:
		o, err := e.store.OrderByID(ctx, a.ID)
		if err != nil {
			if isNotFound(err) {
				return Reply{Alert: textOrderNotFound}, nil
			}
			return Reply{Text: textInternal}, err
		}
		return Reply{Text: textOrderStatus(o), Rows: reviewRows(o.ID), Edit: true}, nil

	default:
		return Reply{Alert: textForbidden}, nil
	}
}

// decideOrder applies accept/reject. Re-deciding an already-terminal order is
// permitted: the status is re-applied and the owner re-notified. Total and
// created_at are never touched.
func (e *Engine) decideOrder(ctx context.Context, orderID int64, status string) (Reply, error) {
	unlock := e.orderMu.lock(orderID)
	ownerID, err := e.store.SetStatus(ctx, orderID, status)
	unlock()
	if err != nil {
		if isNotFound(err) {
			return Reply{Alert: textOrderNotFound}, nil
		}
		return Reply{Text: textInternal}, err
	}

	e.notify.NotifyUser(ctx, ownerID, textOrderDecided(orderID, status))

	alert := textOrderAccepted
	if status == store.StatusRejected {
		alert = textOrderRejected
	}
	o, err := e.store.OrderByID(ctx, orderID)
	if err != nil {
		return Reply{Alert: alert}, nil
	}
	return Reply{Text: textOrderReview(o), Rows: reviewRows(orderID), Edit: true, Alert: alert}, nil
}
