package bot

import (
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/topupbot/internal/engine"
)

// Callback token keys. Decoding happens once here; the engine only ever sees
// structured engine.Action values.
const (
	keyListProducts   = "user:list_products"
	keyNewOrder       = "user:new_order"
	keySelectProduct  = "user:product"
	keyConfirmOrder   = "user:confirm_order"
	keySendProof      = "user:send_proof"
	keyTrackOrder     = "user:track_order"
	keyHelp           = "user:help"
	keyAdminPanel     = "admin:panel"
	keyAddProduct     = "admin:add_product"
	keyManageProducts = "admin:manage_products"
	keyProductDetail  = "admin:product"
	keyEditPrice      = "admin:edit_price"
	keyDeleteProduct  = "admin:delete_product"
	keyListPending    = "admin:list_pending"
	keyReviewOrder    = "admin:review"
	keyAcceptOrder    = "admin:accept"
	keyRejectOrder    = "admin:reject"
	keyOrderDetails   = "admin:details"
	keyBackMain       = "back:main"
	keyNoop           = "noop"
)

var kindToKey = map[engine.ActionKind]string{
	engine.ActionListProducts:   keyListProducts,
	engine.ActionNewOrder:       keyNewOrder,
	engine.ActionSelectProduct:  keySelectProduct,
	engine.ActionConfirmOrder:   keyConfirmOrder,
	engine.ActionSendProof:      keySendProof,
	engine.ActionTrackOrder:     keyTrackOrder,
	engine.ActionHelp:           keyHelp,
	engine.ActionAdminPanel:     keyAdminPanel,
	engine.ActionAddProduct:     keyAddProduct,
	engine.ActionManageProducts: keyManageProducts,
	engine.ActionProductDetail:  keyProductDetail,
	engine.ActionEditPrice:      keyEditPrice,
	engine.ActionDeleteProduct:  keyDeleteProduct,
	engine.ActionListPending:    keyListPending,
	engine.ActionReviewOrder:    keyReviewOrder,
	engine.ActionAcceptOrder:    keyAcceptOrder,
	engine.ActionRejectOrder:    keyRejectOrder,
	engine.ActionOrderDetails:   keyOrderDetails,
	engine.ActionBackMain:       keyBackMain,
	engine.ActionNoop:           keyNoop,
}

var keyToKind = func() map[string]engine.ActionKind {
	m := make(map[string]engine.ActionKind, len(kindToKey))
	for kind, key := range kindToKey {
		m[key] = kind
	}
	return m
}()

// idKinds marks actions that carry a product or order id in the payload.
var idKinds = map[engine.ActionKind]bool{
	engine.ActionSelectProduct: true,
	engine.ActionProductDetail: true,
	engine.ActionEditPrice:     true,
	engine.ActionDeleteProduct: true,
	engine.ActionReviewOrder:   true,
	engine.ActionAcceptOrder:   true,
	engine.ActionRejectOrder:   true,
	engine.ActionOrderDetails:  true,
}

// encodeAction maps an engine action to its callback key and payload.
func encodeAction(a engine.Action) (key, payload string) {
	key = kindToKey[a.Kind]
	if idKinds[a.Kind] {
		payload = strconv.FormatInt(a.ID, 10)
	}
	return key, payload
}

// decodeAction reverses encodeAction. It fails on unknown keys and on a
// missing or malformed id for actions that require one.
func decodeAction(key, payload string) (engine.Action, bool) {
	kind, ok := keyToKind[key]
	if !ok {
		return engine.Action{}, false
	}
	a := engine.Action{Kind: kind}
	if idKinds[kind] {
		id, err := strconv.ParseInt(payload, 10, 64)
		if err != nil || id <= 0 {
			return engine.Action{}, false
		}
		a.ID = id
	}
	return a, true
}

// markupFor renders engine keyboard rows into an inline keyboard.
func markupFor(rows [][]engine.Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	m := &tele.ReplyMarkup{}
	teleRows := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		btns := make([]tele.Btn, 0, len(row))
		for _, b := range row {
			key, payload := encodeAction(b.Action)
			if payload != "" {
				btns = append(btns, m.Data(b.Label, key, payload))
			} else {
				btns = append(btns, m.Data(b.Label, key))
			}
		}
		teleRows = append(teleRows, m.Row(btns...))
	}
	m.Inline(teleRows...)
	return m
}
