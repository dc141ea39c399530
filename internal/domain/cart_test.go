package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestCartSubtotalAndItemCount(t *testing.T) {
	cart := NewCart("sess-1")
	cart.Lines = []Line{
		{ProductID: "a", Name: "Sabonete", UnitPrice: 1000, Quantity: 3},
		{ProductID: "b", Name: "Creme", UnitPrice: 2500, Quantity: 1},
	}

	assert.Equal(t, int64(5500), cart.Subtotal())
	assert.Equal(t, 4, cart.ItemCount())
}

func TestCartSubtotalEmpty(t *testing.T) {
	cart := NewCart("sess-1")

	assert.Equal(t, int64(0), cart.Subtotal())
	assert.Equal(t, 0, cart.ItemCount())
}

func TestCartFindLine(t *testing.T) {
	cart := NewCart("sess-1")
	cart.Lines = []Line{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 2},
	}

	assert.Equal(t, 0, cart.FindLine("a"))
	assert.Equal(t, 1, cart.FindLine("b"))
	assert.Equal(t, -1, cart.FindLine("missing"))
}

func TestCartSnapshotIsDefensiveCopy(t *testing.T) {
	cart := NewCart("sess-1")
	cart.Lines = []Line{
		{ProductID: "a", UnitPrice: 1000, Quantity: 2, AvailableStock: intPtr(5)},
	}

	snap := cart.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.ItemCount)
	assert.Equal(t, int64(2000), snap.Subtotal)

	snap.Lines[0].Quantity = 99
	*snap.Lines[0].AvailableStock = 0

	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 5, *cart.Lines[0].AvailableStock)
}

func TestExtractAvailableStock(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    *int
	}{
		{
			name:    "stock key",
			payload: map[string]any{"stock": float64(7)},
			want:    intPtr(7),
		},
		{
			name:    "available key",
			payload: map[string]any{"available": float64(3)},
			want:    intPtr(3),
		},
		{
			name:    "probe order prefers stock",
			payload: map[string]any{"available": float64(3), "stock": float64(7)},
			want:    intPtr(7),
		},
		{
			name:    "in_stock key",
			payload: map[string]any{"in_stock": float64(12)},
			want:    intPtr(12),
		},
		{
			name:    "negative clamps to zero",
			payload: map[string]any{"stock": float64(-4)},
			want:    intPtr(0),
		},
		{
			name:    "zero is a real figure",
			payload: map[string]any{"stock": float64(0)},
			want:    intPtr(0),
		},
		{
			name:    "no hint keys",
			payload: map[string]any{"price": float64(100), "name": "Sabonete"},
			want:    nil,
		},
		{
			name:    "non-numeric hint skipped",
			payload: map[string]any{"stock": "plenty"},
			want:    nil,
		},
		{
			name:    "nil value skipped, later key used",
			payload: map[string]any{"stock": nil, "available": float64(2)},
			want:    intPtr(2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAvailableStock(tt.payload)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}
