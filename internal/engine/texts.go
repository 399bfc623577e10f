package engine

import (
	"fmt"

	"github.com/m3rciful/topupbot/core/telegram/format"
	"github.com/m3rciful/topupbot/internal/store"
)

const (
	textWelcome = "<b>Welcome to the top-up shop!</b>\nPick an option below."
	textHelp    = "<b>How it works</b>\n" +
		"1. Create an order: pick a product and a quantity.\n" +
		"2. Pay and send a photo or document of the payment as proof.\n" +
		"3. An operator reviews the order and accepts or rejects it.\n" +
		"Use <b>Track order</b> with your order number to check the status."

	textForbidden      = "Forbidden"
	textUnknownCommand = "Unknown command. Use /start."
	textInternal       = "Something went wrong. Please try again."

	textCatalogEmpty   = "The catalog is empty right now. Check back later."
	textChooseProduct  = "Choose a product:"
	textProductGone    = "That product is no longer available. The order was cancelled."
	textUseButtons     = "Please use the buttons to choose a product."
	textAskQty         = "How many would you like? Send a number between 1 and 10000."
	textBadQty         = "Invalid quantity. Send a whole number between 1 and 10000."
	textConfirmButtons = "Tap Confirm to place the order, or Back to cancel."
	textStaleConfirm   = "No order is awaiting confirmation."
	textStalePick      = "Start from Create order."

	textAskProductName  = "Send the new product's name."
	textBadProductName  = "Name can't be empty. Send the product's name."
	textAskProductPrice = "Send the product's price, e.g. 0.99 or 0,99."
	textBadPrice        = "Invalid price. Send a non-negative number, e.g. 0.99 or 0,99."
	textAskNewPrice     = "Send the new price."

	textAskTrackID      = "Send the order number you want to track."
	textAskProofID      = "Send the order number you are paying for."
	textBadOrderID      = "Invalid order number. Send a positive number."
	textOrderNotFound   = "Order not found. Check the number and try again."
	textAskProofMedia   = "Now send a photo or document of your payment."
	textProofTextOnly   = "Please send the proof as a photo or document."
	textProofAttached   = "Payment proof received. An operator will review your order soon."
	textProductDeleted  = "Product deleted."
	textProductNotFound = "Product not found."
	textPriceUpdated    = "Price updated."
	textDemoSeeded      = "Demo catalog added."
	textNoPending       = "No pending orders."

	textAdminPanel     = "<b>Admin panel</b>"
	textManageProducts = "<b>Products</b>\nPick one to edit or delete."
	textPendingOrders  = "<b>Pending orders</b>"
	textOrderAccepted  = "Order accepted"
	textOrderRejected  = "Order rejected"
)

func textOrderCreated(orderID int64, total float64) string {
	return fmt.Sprintf(
		"Order %s created, total %s.\nPay and use <b>Send proof</b> to attach your payment evidence.",
		format.Code(fmt.Sprintf("#%d", orderID)), formatMoney(total))
}

func textOrderSummary(name string, qty int, total float64) string {
	return fmt.Sprintf("<b>Order summary</b>\n%s × %d = %s\n\n%s",
		format.EscapeHTML(name), qty, formatMoney(total), textConfirmButtons)
}

func textProductCreated(id int64, name string, price float64) string {
	return fmt.Sprintf("Product <b>#%d</b> %s created, price %s.",
		id, format.EscapeHTML(name), formatMoney(price))
}

func textProductDetail(p store.Product) string {
	return fmt.Sprintf("%s\nPrice: %s",
		format.Bold(fmt.Sprintf("#%d %s", p.ID, p.Name)), formatMoney(p.Price))
}

// productLabel names the ordered product, falling back to the id when the
// catalog row has since been deleted.
func productLabel(o store.Order) string {
	if o.ProductName != "" {
		return format.EscapeHTML(o.ProductName)
	}
	return fmt.Sprintf("#%d", o.ProductID)
}

func textOrderStatus(o store.Order) string {
	evidence := "no"
	if o.HasEvidence() {
		evidence = "yes"
	}
	return fmt.Sprintf(
		"<b>Order #%d</b>\nProduct: %s\nStatus: %s\nQuantity: %d\nTotal: %s\nPayment proof: %s\nCreated: %s",
		o.ID, productLabel(o), o.Status, o.Qty, formatMoney(o.Total), evidence,
		o.CreatedAt.Format("2006-01-02 15:04"))
}

func textOrderReview(o store.Order) string {
	evidence := "missing"
	if o.HasEvidence() {
		evidence = "attached"
	}
	return fmt.Sprintf(
		"<b>Order #%d</b>\nUser: %d\nProduct: %s\nQuantity: %d\nTotal: %s\nStatus: %s\nProof: %s",
		o.ID, o.UserID, productLabel(o), o.Qty, formatMoney(o.Total), o.Status, evidence)
}

func textOrderDecided(orderID int64, status string) string {
	if status == store.StatusAccepted {
		return fmt.Sprintf("Your order <b>#%d</b> was accepted. Thank you!", orderID)
	}
	return fmt.Sprintf("Your order <b>#%d</b> was rejected. Contact support if you believe this is a mistake.", orderID)
}

func textNewOrderAlert(o store.Order) string {
	return fmt.Sprintf("New order <b>#%d</b>\nUser: %d\nProduct: %s\nQuantity: %d\nTotal: %s",
		o.ID, o.UserID, productLabel(o), o.Qty, formatMoney(o.Total))
}

func textProofAlert(orderID, userID int64) string {
	return fmt.Sprintf("Payment proof attached to order <b>#%d</b> by user %d.", orderID, userID)
}

func textStats(st store.Stats) string {
	return fmt.Sprintf(
		"<b>Stats</b>\nProducts: %d\nOrders: %d\nPending: %d\nAccepted: %d\nRejected: %d",
		st.Products, st.Orders, st.OrdersPending, st.OrdersAccepted, st.OrdersRejected)
}
