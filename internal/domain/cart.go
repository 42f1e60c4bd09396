package domain

// CartLine is one client-submitted cart entry. The client is free to repeat a
// product id across lines; Group sums them before any limit check.
type CartLine struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`
}

// GroupCartLines merges duplicate product ids, summing quantities, and
// returns the merged lines in first-seen order. Limit checks run on the
// merged quantities so splitting an order across lines cannot bypass the
// per-item cap.
func GroupCartLines(lines []CartLine) []CartLine {
	index := make(map[string]int, len(lines))
	grouped := make([]CartLine, 0, len(lines))

	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			grouped[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(grouped)
		grouped = append(grouped, line)
	}

	return grouped
}
