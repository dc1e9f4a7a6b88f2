package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartmart/internal/core/types"
)

func TestReweight(t *testing.T) {
	tests := []struct {
		name         string
		currentQty   string
		currentCost  string
		incomingQty  string
		incomingCost string
		want         string
	}{
		{
			name:         "blends existing and incoming batches",
			currentQty:   "10", currentCost: "5.00",
			incomingQty: "5", incomingCost: "8.00",
			// (10*5 + 5*8) / 15 = 90/15
			want: "6",
		},
		{
			name:       "empty stock takes incoming cost",
			currentQty: "0", currentCost: "0",
			incomingQty: "20", incomingCost: "3.50",
			want: "3.5",
		},
		{
			name:       "negative carry takes incoming cost",
			currentQty: "-5", currentCost: "4.00",
			incomingQty: "5", incomingCost: "7.00",
			want: "7",
		},
		{
			name:       "rounds to two decimals",
			currentQty: "3", currentCost: "1.00",
			incomingQty: "3", incomingCost: "2.00",
			// (3 + 6) / 6 = 1.5
			want: "1.5",
		},
		{
			name:       "repeating fraction rounds half up",
			currentQty: "1", currentCost: "1.00",
			incomingQty: "2", incomingCost: "2.00",
			// (1 + 4) / 3 = 1.666...
			want: "1.67",
		},
		{
			name:       "incoming at same cost keeps cost",
			currentQty: "100", currentCost: "9.99",
			incomingQty: "50", incomingCost: "9.99",
			want: "9.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reweight(
				types.MustMoney(tt.currentQty),
				types.MustMoney(tt.currentCost),
				types.MustMoney(tt.incomingQty),
				types.MustMoney(tt.incomingCost),
			)
			assert.True(t, got.Equal(types.MustMoney(tt.want)),
				"Reweight() = %s, want %s", got, tt.want)
		})
	}
}

func TestReweightZeroIncoming(t *testing.T) {
	// A zero-quantity receipt onto existing stock must not disturb the cost.
	got := Reweight(
		types.MustMoney("10"), types.MustMoney("5.00"),
		types.MustMoney("0"), types.MustMoney("99.00"),
	)
	assert.True(t, got.Equal(types.MustMoney("5")), "got %s", got)
}
