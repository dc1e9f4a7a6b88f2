package discount

import (
	"smartmart/internal/core/types"
)

// Selection is deliberately asymmetric per discount kind:
//
//   - item and bill discounts prefer the one running the longest into the
//     future (latest end date), falling back to the most recently created;
//   - category discounts prefer the deepest cut (highest percent), falling
//     back to the most recently created.
//
// The functions are pure so the tie-break rules can be tested without a
// database. Candidates are expected to be pre-filtered to Active status and
// the relevant date window.

// SelectItemDiscount picks the winning item discount from candidates.
// Returns nil when candidates is empty.
func SelectItemDiscount(candidates []ItemDiscount) *ItemDiscount {
	var best *ItemDiscount
	for i := range candidates {
		c := &candidates[i]
		if best == nil {
			best = c
			continue
		}
		if c.EndDate.After(best.EndDate) {
			best = c
			continue
		}
		if c.EndDate.Equal(best.EndDate) && c.CreatedAt.After(best.CreatedAt) {
			best = c
		}
	}
	return best
}

// SelectCategoryDiscount picks the winning category discount from candidates.
// Returns nil when candidates is empty.
func SelectCategoryDiscount(candidates []CategoryDiscount) *CategoryDiscount {
	var best *CategoryDiscount
	for i := range candidates {
		c := &candidates[i]
		if best == nil {
			best = c
			continue
		}
		if c.Percent.GreaterThan(best.Percent) {
			best = c
			continue
		}
		if c.Percent.Equal(best.Percent) && c.CreatedAt.After(best.CreatedAt) {
			best = c
		}
	}
	return best
}

// SelectBillDiscount picks the winning bill discount among candidates whose
// condition matches the bill total. Returns nil when none match.
func SelectBillDiscount(candidates []BillDiscount, total types.Money) *BillDiscount {
	var best *BillDiscount
	for i := range candidates {
		c := &candidates[i]
		if !c.Matches(total) {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		if c.EndDate.After(best.EndDate) {
			best = c
			continue
		}
		if c.EndDate.Equal(best.EndDate) && c.CreatedAt.After(best.CreatedAt) {
			best = c
		}
	}
	return best
}
