// Package discount provides the three discount kinds (item, category, bill)
// and the resolver that picks the applicable ones at sale time.
package discount

import (
	"context"
	"time"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
)

// Status enables or disables a discount without deleting it.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Kind distinguishes how a discount value is interpreted.
type Kind string

const (
	// KindPercent deducts a percentage of the price.
	KindPercent Kind = "Percent"
	// KindValue deducts a fixed amount.
	KindValue Kind = "Value"
)

// BillCondition selects which bill totals a bill discount applies to.
type BillCondition string

const (
	ConditionAbove        BillCondition = "Above"
	ConditionEqualOrAbove BillCondition = "EqualOrAbove"
	ConditionBelow        BillCondition = "Below"
)

// ItemDiscount applies to a single product within an inclusive date window.
type ItemDiscount struct {
	entity.BaseEntity

	ProductID   id.ID       `db:"product_id" json:"productId"`
	Kind        Kind        `db:"kind" json:"kind"`
	Amount      types.Money `db:"amount" json:"amount"`
	Description string      `db:"description" json:"description"`
	StartDate   time.Time   `db:"start_date" json:"startDate"`
	EndDate     time.Time   `db:"end_date" json:"endDate"`
	Status      Status      `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

// Validate implements entity.Validatable.
func (d *ItemDiscount) Validate(ctx context.Context) error {
	if id.IsNil(d.ProductID) {
		return apperror.NewValidation("product_id is required")
	}
	if err := validateWindow(d.StartDate, d.EndDate); err != nil {
		return err
	}
	switch d.Kind {
	case KindPercent:
		return validatePercent(d.Amount)
	case KindValue:
		if d.Amount.Sign() <= 0 {
			return apperror.NewInvalidDiscountAmount("discount value must be positive")
		}
		return nil
	default:
		return apperror.NewValidation("unknown discount kind").
			WithDetail("kind", string(d.Kind))
	}
}

// InWindow reports whether asOf falls inside the inclusive date window.
func (d *ItemDiscount) InWindow(asOf time.Time) bool {
	return inWindow(asOf, d.StartDate, d.EndDate)
}

// Apply returns the price after applying the discount, floored at zero.
func (d *ItemDiscount) Apply(price types.Money) types.Money {
	var discounted types.Money
	switch d.Kind {
	case KindPercent:
		factor := types.MustMoney("100").Sub(d.Amount).Div(types.MustMoney("100"))
		discounted = price.Mul(factor)
	case KindValue:
		discounted = price.Sub(d.Amount)
	default:
		return price
	}
	if discounted.Sign() < 0 {
		return types.Zero()
	}
	return types.RoundMoney(discounted)
}

// CategoryDiscount applies a percentage to every product in a category.
type CategoryDiscount struct {
	entity.BaseEntity

	CategoryID id.ID       `db:"category_id" json:"categoryId"`
	Percent    types.Money `db:"percent" json:"percent"`
	StartDate  time.Time   `db:"start_date" json:"startDate"`
	EndDate    time.Time   `db:"end_date" json:"endDate"`
	Status     Status      `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`
}

// Validate implements entity.Validatable.
func (d *CategoryDiscount) Validate(ctx context.Context) error {
	if id.IsNil(d.CategoryID) {
		return apperror.NewValidation("category_id is required")
	}
	if err := validateWindow(d.StartDate, d.EndDate); err != nil {
		return err
	}
	return validatePercent(d.Percent)
}

// InWindow reports whether asOf falls inside the inclusive date window.
func (d *CategoryDiscount) InWindow(asOf time.Time) bool {
	return inWindow(asOf, d.StartDate, d.EndDate)
}

// BillDiscount applies to a whole invoice based on its total.
type BillDiscount struct {
	entity.BaseEntity

	// Condition and Threshold select qualifying bill totals,
	// e.g. Above 1000.00.
	Condition BillCondition `db:"condition_type" json:"conditionType"`
	Threshold types.Money   `db:"threshold" json:"threshold"`

	// Kind and Value describe the deduction: a percentage or a flat amount.
	Kind  Kind        `db:"kind" json:"kind"`
	Value types.Money `db:"value" json:"value"`

	Description string    `db:"description" json:"description,omitempty"`
	StartDate   time.Time `db:"start_date" json:"startDate"`
	EndDate     time.Time `db:"end_date" json:"endDate"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate implements entity.Validatable.
func (d *BillDiscount) Validate(ctx context.Context) error {
	switch d.Condition {
	case ConditionAbove, ConditionEqualOrAbove, ConditionBelow:
	default:
		return apperror.NewValidation("unknown bill condition").
			WithDetail("condition", string(d.Condition))
	}
	if d.Threshold.Sign() < 0 {
		return apperror.NewValidation("threshold cannot be negative")
	}
	if err := validateWindow(d.StartDate, d.EndDate); err != nil {
		return err
	}
	switch d.Kind {
	case KindPercent:
		return validatePercent(d.Value)
	case KindValue:
		if d.Value.Sign() <= 0 {
			return apperror.NewInvalidDiscountAmount("discount value must be positive")
		}
		return nil
	default:
		return apperror.NewValidation("unknown discount kind").
			WithDetail("kind", string(d.Kind))
	}
}

// InWindow reports whether asOf falls inside the inclusive date window.
func (d *BillDiscount) InWindow(asOf time.Time) bool {
	return inWindow(asOf, d.StartDate, d.EndDate)
}

// Matches reports whether the bill total satisfies the discount condition.
func (d *BillDiscount) Matches(total types.Money) bool {
	switch d.Condition {
	case ConditionAbove:
		return total.GreaterThan(d.Threshold)
	case ConditionEqualOrAbove:
		return total.GreaterThanOrEqual(d.Threshold)
	case ConditionBelow:
		return total.LessThan(d.Threshold)
	}
	return false
}

// Deduction returns the amount to subtract from the bill total.
func (d *BillDiscount) Deduction(total types.Money) types.Money {
	switch d.Kind {
	case KindPercent:
		return types.RoundMoney(total.Mul(d.Value).Div(types.MustMoney("100")))
	case KindValue:
		if d.Value.GreaterThan(total) {
			return total
		}
		return types.RoundMoney(d.Value)
	}
	return types.Zero()
}

// --- Shared validation ---

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperror.NewValidation("start and end dates are required")
	}
	if end.Before(start) {
		return apperror.NewValidation("end date cannot precede start date")
	}
	return nil
}

func validatePercent(p types.Money) error {
	one := types.MustMoney("1")
	hundred := types.MustMoney("100")
	if p.LessThan(one) || p.GreaterThan(hundred) {
		return apperror.NewInvalidDiscountAmount("percent must be between 1 and 100")
	}
	return nil
}

// inWindow compares dates only; windows are inclusive on both ends.
func inWindow(asOf, start, end time.Time) bool {
	day := asOf.UTC().Truncate(24 * time.Hour)
	s := start.UTC().Truncate(24 * time.Hour)
	e := end.UTC().Truncate(24 * time.Hour)
	return !day.Before(s) && !day.After(e)
}
