package engine

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	minQty = 1
	maxQty = 10000
)

// parseQty validates a quantity input: all digits, no sign, no decimal,
// within [1, 10000].
func parseQty(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < minQty || n > maxQty {
		return 0, false
	}
	return n, true
}

// parsePrice accepts digits with at most one decimal separator, normalizing
// a comma to a period. Signs, exponents and other ParseFloat spellings such
// as inf or nan are rejected by the character scan.
func parsePrice(text string) (float64, bool) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	if strings.Count(text, ".") > 1 {
		return 0, false
	}
	digits := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits++
			continue
		}
		if r != '.' {
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseID validates a positive integer identifier (order or product id).
func parseID(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// formatMoney renders a fixed two-decimal amount with the currency symbol.
func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f$", v)
}
