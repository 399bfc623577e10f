package engine

import (
	"fmt"

	"github.com/m3rciful/topupbot/core/telegram/format"
	"github.com/m3rciful/topupbot/internal/store"
)

func btn(label string, kind ActionKind, id ...int64) Button {
	a := Action{Kind: kind}
	if len(id) > 0 {
		a.ID = id[0]
	}
	return Button{Label: label, Action: a}
}

func backRow() []Button {
	return []Button{btn("⬅️ Back", ActionBackMain)}
}

func (e *Engine) mainMenu(actorID int64) [][]Button {
	rows := [][]Button{
		{btn("🛒 New order", ActionNewOrder), btn("📦 Products", ActionListProducts)},
		{btn("🧾 Send proof", ActionSendProof), btn("🔎 Track order", ActionTrackOrder)},
		{btn("ℹ️ Help", ActionHelp)},
	}
	if e.isAdmin(actorID) {
		rows = append(rows, []Button{btn("🛠 Admin panel", ActionAdminPanel)})
	}
	return rows
}

func adminMenu() [][]Button {
	return [][]Button{
		{btn("➕ Add product", ActionAddProduct), btn("📋 Manage products", ActionManageProducts)},
		{btn("⏳ Pending orders", ActionListPending)},
		backRow(),
	}
}

func productChoiceRows(products []store.Product) [][]Button {
	rows := make([][]Button, 0, len(products)+1)
	for _, p := range products {
		label := fmt.Sprintf("%s · %s", p.Name, formatMoney(p.Price))
		rows = append(rows, []Button{btn(label, ActionSelectProduct, p.ID)})
	}
	rows = append(rows, backRow())
	return rows
}

func manageProductRows(products []store.Product) [][]Button {
	rows := make([][]Button, 0, len(products)+1)
	for _, p := range products {
		label := fmt.Sprintf("#%d %s", p.ID, p.Name)
		rows = append(rows, []Button{btn(label, ActionProductDetail, p.ID)})
	}
	rows = append(rows, backRow())
	return rows
}

func productDetailRows(id int64) [][]Button {
	return [][]Button{
		{btn("💲 Edit price", ActionEditPrice, id), btn("🗑 Delete", ActionDeleteProduct, id)},
		{btn("⬅️ Back", ActionManageProducts)},
	}
}

func confirmRows() [][]Button {
	return [][]Button{
		{btn("✅ Confirm", ActionConfirmOrder)},
		backRow(),
	}
}

func pendingRows(ids []int64) [][]Button {
	rows := make([][]Button, 0, len(ids)+1)
	for _, id := range ids {
		rows = append(rows, []Button{btn(fmt.Sprintf("Order #%d", id), ActionReviewOrder, id)})
	}
	rows = append(rows, backRow())
	return rows
}

func reviewRows(orderID int64) [][]Button {
	return [][]Button{
		{btn("✅ Accept", ActionAcceptOrder, orderID), btn("❌ Reject", ActionRejectOrder, orderID)},
		{btn("📄 Details", ActionOrderDetails, orderID)},
		{btn("⬅️ Back", ActionListPending)},
	}
}

func productsOverview(products []store.Product) string {
	if len(products) == 0 {
		return textCatalogEmpty
	}
	text := "<b>Catalog</b>\n"
	for _, p := range products {
		text += fmt.Sprintf("#%d %s · %s\n", p.ID, format.EscapeHTML(p.Name), formatMoney(p.Price))
	}
	return text
}
