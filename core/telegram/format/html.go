package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes text for Telegram HTML parse mode.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// Bold wraps escaped text in bold tags.
func Bold(text string) string {
	return "<b>" + EscapeHTML(text) + "</b>"
}

// Code wraps escaped text in inline code tags.
func Code(text string) string {
	return "<code>" + EscapeHTML(text) + "</code>"
}
