// Package costing implements weighted-average cost calculation.
//
// Every inbound receipt re-weights the product's cost price: the existing
// stock valued at the current cost is blended with the incoming batch valued
// at its purchase cost. Outbound movements never change cost.
package costing

import (
	"smartmart/internal/core/types"
)

// Reweight returns the new weighted-average unit cost after receiving
// incomingQty units at incomingCost on top of currentQty units carried
// at currentCost.
//
//	newCost = (currentQty*currentCost + incomingQty*incomingCost) / (currentQty + incomingQty)
//
// The result is rounded to 2 decimal places. When the combined quantity is
// not positive (empty stock, zero-quantity receipt) the incoming cost is
// returned as-is: there is nothing to average against.
func Reweight(currentQty, currentCost, incomingQty, incomingCost types.Money) types.Money {
	totalQty := currentQty.Add(incomingQty)
	if totalQty.Sign() <= 0 {
		return types.RoundMoney(incomingCost)
	}

	currentValue := currentQty.Mul(currentCost)
	incomingValue := incomingQty.Mul(incomingCost)

	return types.RoundMoney(currentValue.Add(incomingValue).Div(totalQty))
}
