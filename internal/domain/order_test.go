package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDescribeLineItems(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  string
	}{
		{
			name:  "single item",
			items: []LineItem{{Description: "Coffee Beans", Quantity: 2}},
			want:  "2x Coffee Beans",
		},
		{
			name: "three items spelled out",
			items: []LineItem{
				{Description: "Coffee Beans", Quantity: 2},
				{Description: "Mug", Quantity: 1},
				{Description: "Grinder", Quantity: 1},
			},
			want: "2x Coffee Beans, 1x Mug, 1x Grinder",
		},
		{
			name: "four items collapse",
			items: []LineItem{
				{Description: "A", Quantity: 1},
				{Description: "B", Quantity: 1},
				{Description: "C", Quantity: 1},
				{Description: "D", Quantity: 1},
			},
			want: "Multiple Items (3+)",
		},
		{
			name:  "empty order",
			items: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeLineItems(tt.items))
		})
	}
}

func TestFormatDollars(t *testing.T) {
	assert.Equal(t, "12.34", FormatDollars(1234))
	assert.Equal(t, "0.00", FormatDollars(0))
	assert.Equal(t, "0.05", FormatDollars(5))
	assert.Equal(t, "1,234.56", FormatDollars(123456))
	assert.Equal(t, "1,234,567.89", FormatDollars(123456789))
	// Refund-style negative totals render as their absolute value.
	assert.Equal(t, "12.34", FormatDollars(-1234))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.34 USD", FormatAmount(1234, "usd"))
	assert.Equal(t, "0.05 CAD", FormatAmount(5, "cad"))
}

func TestFormatOrderDate(t *testing.T) {
	// 2025-01-02 15:04:05 UTC is 08:04am in Denver (MST, UTC-7).
	ts := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "01/02/2025 8:04am", FormatOrderDate(ts, "America/Denver"))
	assert.Equal(t, "01/02/2025 3:04pm", FormatOrderDate(ts, "UTC"))
	assert.Equal(t, "Date Error", FormatOrderDate(ts, "Not/AZone"))
}
