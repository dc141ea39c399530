package domain

import (
	"math"
	"time"
)

// SchemaVersion is the version stamp written with every persisted cart.
// Records carrying a different version are discarded on load rather than
// migrated; the cart is cheap to rebuild and stale shapes must never leak
// into a checkout payload.
const SchemaVersion = 1

// Line is one product's presence in the cart. Name and UnitPrice are
// snapshots taken when the product was added; they are not re-synced against
// the catalog afterwards.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	// UnitPrice is in centavos.
	UnitPrice int64 `json:"unit_price"`
	Quantity  int   `json:"quantity"`
	// AvailableStock is an optional hint captured from the catalog payload
	// at add time. Nil means "unknown", which is different from zero.
	AvailableStock *int `json:"available_stock,omitempty"`
}

// Cart is one session's cart. Lines are kept in insertion order for display;
// ProductID is unique across lines.
type Cart struct {
	SessionID string    `json:"session_id"`
	Version   int       `json:"version"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCart creates an empty cart for the given session.
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Version:   SchemaVersion,
		Lines:     []Line{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Subtotal returns the sum of unit price times quantity over all lines,
// in centavos. Always recomputed, never cached.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// FindLine returns the index of the line for the given product ID, or -1.
func (c *Cart) FindLine(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Snapshot is a read-only copy of the cart with its derived values. Callers
// must not treat it as a handle onto live state.
type Snapshot struct {
	Lines     []Line `json:"lines"`
	ItemCount int    `json:"item_count"`
	Subtotal  int64  `json:"subtotal"`
}

// Snapshot returns a deep copy of the cart's lines together with the
// recomputed item count and subtotal.
func (c *Cart) Snapshot() Snapshot {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	for i := range lines {
		if c.Lines[i].AvailableStock != nil {
			v := *c.Lines[i].AvailableStock
			lines[i].AvailableStock = &v
		}
	}
	return Snapshot{
		Lines:     lines,
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
	}
}

// stockHintKeys are the field names under which catalog payloads have been
// observed to carry an available-stock figure, in probe order.
var stockHintKeys = []string{"stock", "available", "inventory", "qty_stock", "available_stock", "in_stock"}

// ExtractAvailableStock probes a raw catalog payload for an available-stock
// hint. It returns nil when no usable figure is present; absence of stock
// information must never be read as "zero stock". Negative figures are
// clamped to zero.
func ExtractAvailableStock(payload map[string]any) *int {
	for _, key := range stockHintKeys {
		raw, ok := payload[key]
		if !ok || raw == nil {
			continue
		}
		n, ok := coerceInt(raw)
		if !ok {
			continue
		}
		if n < 0 {
			n = 0
		}
		return &n
	}
	return nil
}

// coerceInt converts the loosely-typed numbers that arrive in JSON payloads
// (float64 from encoding/json) into an int. Strings and non-finite values
// are rejected.
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}
