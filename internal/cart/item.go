// Package cart defines the dealer-panel cart domain: line items, the
// list operations every mutation is built from, and the derived totals
// the panel surfaces next to the cart badge.
package cart

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultCurrency is assumed when the backend omits a currency code.
const DefaultCurrency = "TRY"

// Item is one product line in a cart.
//
// The wire names follow the backend's stock vocabulary: stkno (stock
// number), stokadi (display name), fiyat (unit price), birim (unit of
// measure), adet (quantity). Fields the backend adds over time (kdv,
// bakiye, grupadi, resim, ...) are preserved untouched in Meta and
// written back verbatim.
type Item struct {
	StockNo  string
	Name     string
	Price    float64
	Currency string
	Unit     string
	Quantity int
	Meta     map[string]any
}

// ServerState is the cart content reported by the backend after a read
// or a confirmed write. LastSyncedAt is nil when the server has never
// confirmed this cart.
type ServerState struct {
	Items        []Item
	LastSyncedAt *time.Time
}

// knownItemKeys are the wire fields lifted into Item struct fields.
var knownItemKeys = map[string]struct{}{
	"stkno":   {},
	"stokadi": {},
	"fiyat":   {},
	"doviz":   {},
	"birim":   {},
	"adet":    {},
}

// LineTotal returns price times quantity for this line.
func (it Item) LineTotal() float64 {
	return it.Price * float64(it.Quantity)
}

// Validate reports whether the item can live in a cart.
func (it Item) Validate() error {
	if strings.TrimSpace(it.StockNo) == "" {
		return fmt.Errorf("item stock number is required")
	}
	if it.Quantity < 1 {
		return fmt.Errorf("item %s: quantity must be at least 1", it.StockNo)
	}
	return nil
}

// MarshalJSON writes the known fields plus every Meta field. Known
// fields win when Meta carries a stale copy of one.
func (it Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Meta)+6)
	for k, v := range it.Meta {
		out[k] = v
	}
	out["stkno"] = it.StockNo
	out["stokadi"] = it.Name
	out["fiyat"] = it.Price
	out["birim"] = it.Unit
	out["adet"] = it.Quantity
	currency := strings.TrimSpace(it.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	out["doviz"] = currency
	return json.Marshal(out)
}

// UnmarshalJSON lifts the known fields and keeps everything else in
// Meta so backend-added fields survive a round trip.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode cart item: %w", err)
	}

	decoded := Item{Currency: DefaultCurrency}
	if err := decodeField(raw, "stkno", &decoded.StockNo); err != nil {
		return err
	}
	if err := decodeField(raw, "stokadi", &decoded.Name); err != nil {
		return err
	}
	if err := decodeField(raw, "fiyat", &decoded.Price); err != nil {
		return err
	}
	if err := decodeField(raw, "birim", &decoded.Unit); err != nil {
		return err
	}
	if err := decodeField(raw, "adet", &decoded.Quantity); err != nil {
		return err
	}
	if _, ok := raw["doviz"]; ok {
		if err := decodeField(raw, "doviz", &decoded.Currency); err != nil {
			return err
		}
		if strings.TrimSpace(decoded.Currency) == "" {
			decoded.Currency = DefaultCurrency
		}
	}

	for key, value := range raw {
		if _, known := knownItemKeys[key]; known {
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("decode cart item field %s: %w", key, err)
		}
		if decoded.Meta == nil {
			decoded.Meta = map[string]any{}
		}
		decoded.Meta[key] = v
	}

	*it = decoded
	return nil
}

func decodeField(raw map[string]json.RawMessage, key string, target any) error {
	value, ok := raw[key]
	if !ok || string(value) == "null" {
		return nil
	}
	if err := json.Unmarshal(value, target); err != nil {
		return fmt.Errorf("decode cart item field %s: %w", key, err)
	}
	return nil
}
