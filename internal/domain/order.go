package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CompletedSession carries the routing facts from a checkout.session.completed
// webhook delivery. Only identifiers and customer contact details are taken
// from the payload; amounts and line items used in notifications are
// re-resolved from the provider.
type CompletedSession struct {
	SessionID       string
	PaymentIntentID string
	CreatedAt       time.Time
	CustomerName    string
	CustomerEmail   string
	AmountTotal     int64
	Currency        string
}

// LineItem is one authoritative line of a completed order, as reported by the
// provider after the session closed.
type LineItem struct {
	Description string
	Quantity    int64
}

// OrderSummary is the human-readable digest sent to the operator.
type OrderSummary struct {
	Description string
	ReceiptURL  string
}

// maxDescribedItems bounds how many line items are spelled out before the
// summary collapses to a generic label.
const maxDescribedItems = 3

// DescribeLineItems renders up to three line items as "2x Name, 1x Other";
// longer orders collapse to "Multiple Items (3+)".
func DescribeLineItems(items []LineItem) string {
	if len(items) > maxDescribedItems {
		return "Multiple Items (3+)"
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Description))
	}
	return strings.Join(parts, ", ")
}

// FormatOrderDate renders a timestamp in the operator timezone as
// "01/02/2006 3:04pm". An unknown timezone yields "Date Error" rather than
// failing the notification.
func FormatOrderDate(t time.Time, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "Date Error"
	}
	return t.In(loc).Format("01/02/2006 3:04pm")
}

// FormatDollars renders a minor-unit amount as "1,234.56".
func FormatDollars(amount int64) string {
	if amount < 0 {
		amount = -amount
	}
	dollars := strconv.FormatInt(amount/100, 10)

	var b strings.Builder
	lead := len(dollars) % 3
	if lead > 0 {
		b.WriteString(dollars[:lead])
	}
	for i := lead; i < len(dollars); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(dollars[i : i+3])
	}
	return fmt.Sprintf("%s.%02d", b.String(), amount%100)
}

// FormatAmount renders a minor-unit amount as "12.34 USD".
func FormatAmount(amount int64, currency string) string {
	if amount < 0 {
		amount = -amount
	}
	return fmt.Sprintf("%d.%02d %s", amount/100, amount%100, strings.ToUpper(currency))
}
