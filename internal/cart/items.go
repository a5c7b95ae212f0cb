package cart

import "strings"

// The list operations below are pure: they return a fresh slice and
// never mutate their input, so the engine can hand the previous list to
// an in-flight remote call while already showing the next one.

// Merge adds quantity to an existing line with the same stock number or
// appends a new line. Insertion order is preserved for display.
func Merge(items []Item, add Item) []Item {
	if add.Quantity < 1 {
		add.Quantity = 1
	}
	add.StockNo = strings.TrimSpace(add.StockNo)

	next := Clone(items)
	if idx := indexOf(next, add.StockNo); idx >= 0 {
		next[idx].Quantity += add.Quantity
		return next
	}
	return append(next, add)
}

// SetQuantity replaces the quantity of one line. A quantity of zero or
// less removes the line instead of storing a non-positive count.
func SetQuantity(items []Item, stockNo string, quantity int) []Item {
	stockNo = strings.TrimSpace(stockNo)
	if quantity <= 0 {
		return Remove(items, stockNo)
	}

	next := Clone(items)
	if idx := indexOf(next, stockNo); idx >= 0 {
		next[idx].Quantity = quantity
	}
	return next
}

// Remove filters out the line with the given stock number. Removing a
// missing line is a no-op, so repeated removes are idempotent.
func Remove(items []Item, stockNo string) []Item {
	stockNo = strings.TrimSpace(stockNo)
	next := make([]Item, 0, len(items))
	for _, it := range items {
		if it.StockNo == stockNo {
			continue
		}
		next = append(next, it)
	}
	return next
}

// Normalize dedupes lines by stock number (quantities are summed into
// the first occurrence) and drops lines that cannot live in a cart.
// First-seen order is preserved.
func Normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := map[string]int{}

	for _, it := range items {
		it.StockNo = strings.TrimSpace(it.StockNo)
		if it.StockNo == "" || it.Quantity < 1 {
			continue
		}
		if idx, ok := seen[it.StockNo]; ok {
			out[idx].Quantity += it.Quantity
			continue
		}
		seen[it.StockNo] = len(out)
		out = append(out, it)
	}
	return out
}

// Clone returns a shallow copy of the list. Meta maps are shared; the
// engine never mutates them in place.
func Clone(items []Item) []Item {
	if len(items) == 0 {
		return []Item{}
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// TotalQuantity sums the quantities of every line.
func TotalQuantity(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// TotalPrice sums price times quantity across every line.
func TotalPrice(items []Item) float64 {
	total := 0.0
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

func indexOf(items []Item, stockNo string) int {
	for i := range items {
		if items[i].StockNo == stockNo {
			return i
		}
	}
	return -1
}
