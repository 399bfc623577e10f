package engine

// ActionKind enumerates every button action the engine understands. Decoding
// the transport's callback token into an Action happens once, at the
// transport boundary; the engine never parses strings.
type ActionKind int

const (
	ActionNoop ActionKind = iota
	ActionListProducts
	ActionNewOrder
	ActionSelectProduct
	ActionConfirmOrder
	ActionSendProof
	ActionTrackOrder
	ActionHelp
	ActionAdminPanel
	ActionAddProduct
	ActionManageProducts
	ActionProductDetail
	ActionEditPrice
	ActionDeleteProduct
	ActionListPending
	ActionReviewOrder
	ActionAcceptOrder
	ActionRejectOrder
	ActionOrderDetails
	ActionBackMain
)

// Action is a decoded button press. ID carries the product or order id for
// kinds that reference one; it is zero otherwise.
type Action struct {
	Kind ActionKind
	ID   int64
}

// Button is one labeled action in a reply keyboard row.
type Button struct {
	Label  string
	Action Action
}

// Reply is the engine's answer to a single inbound event. The transport
// adapter renders it: Edit requests an in-place message edit, Alert asks for
// a transient callback alert, Evidence is a stored media reference to
// re-send alongside the text.
type Reply struct {
	Text     string
	Rows     [][]Button
	Edit     bool
	Alert    string
	Evidence string
}

// Actor identifies the external identity behind an inbound event.
type Actor struct {
	ID        int64
	Username  string
	FirstName string
}
