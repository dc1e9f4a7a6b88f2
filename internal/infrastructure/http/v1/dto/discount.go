package dto

import (
	"time"

	"smartmart/internal/core/entity"
	"smartmart/internal/core/id"
	"smartmart/internal/core/types"
	"smartmart/internal/domain/discount"
)

// --- Item discounts ---

// CreateItemDiscountRequest creates a per-product discount.
type CreateItemDiscountRequest struct {
	ProductID   string        `json:"productId" binding:"required"`
	Kind        discount.Kind `json:"kind" binding:"required"`
	Amount      types.Money   `json:"amount" binding:"required"`
	Description string        `json:"description"`
	StartDate   time.Time     `json:"startDate" binding:"required"`
	EndDate     time.Time     `json:"endDate" binding:"required"`
}

// ToEntity maps the request to an item discount entity.
func (r CreateItemDiscountRequest) ToEntity() (*discount.ItemDiscount, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &discount.ItemDiscount{
		BaseEntity:  entity.NewBaseEntity(),
		ProductID:   productID,
		Kind:        r.Kind,
		Amount:      r.Amount,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Status:      discount.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateItemDiscountRequest updates an item discount.
type UpdateItemDiscountRequest struct {
	Kind        *discount.Kind `json:"kind"`
	Amount      *types.Money   `json:"amount"`
	Description *string        `json:"description"`
	StartDate   *time.Time     `json:"startDate"`
	EndDate     *time.Time     `json:"endDate"`
}

// ApplyTo maps set fields onto an existing item discount.
func (r UpdateItemDiscountRequest) ApplyTo(d *discount.ItemDiscount) {
	if r.Kind != nil {
		d.Kind = *r.Kind
	}
	if r.Amount != nil {
		d.Amount = *r.Amount
	}
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.StartDate != nil {
		d.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		d.EndDate = *r.EndDate
	}
}

// --- Category discounts ---

// CreateCategoryDiscountRequest creates a category-wide percentage discount.
type CreateCategoryDiscountRequest struct {
	CategoryID string      `json:"categoryId" binding:"required"`
	Percent    types.Money `json:"percent" binding:"required"`
	StartDate  time.Time   `json:"startDate" binding:"required"`
	EndDate    time.Time   `json:"endDate" binding:"required"`
}

// ToEntity maps the request to a category discount entity.
func (r CreateCategoryDiscountRequest) ToEntity() (*discount.CategoryDiscount, error) {
	categoryID, err := id.Parse(r.CategoryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &discount.CategoryDiscount{
		BaseEntity: entity.NewBaseEntity(),
		CategoryID: categoryID,
		Percent:    r.Percent,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Status:     discount.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// UpdateCategoryDiscountRequest updates a category discount.
type UpdateCategoryDiscountRequest struct {
	Percent   *types.Money `json:"percent"`
	StartDate *time.Time   `json:"startDate"`
	EndDate   *time.Time   `json:"endDate"`
}

// ApplyTo maps set fields onto an existing category discount.
func (r UpdateCategoryDiscountRequest) ApplyTo(d *discount.CategoryDiscount) {
	if r.Percent != nil {
		d.Percent = *r.Percent
	}
	if r.StartDate != nil {
		d.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		d.EndDate = *r.EndDate
	}
}

// --- Bill discounts ---

// CreateBillDiscountRequest creates a bill-total discount.
type CreateBillDiscountRequest struct {
	Condition   discount.BillCondition `json:"conditionType" binding:"required"`
	Threshold   types.Money            `json:"threshold" binding:"required"`
	Kind        discount.Kind          `json:"kind" binding:"required"`
	Value       types.Money            `json:"value" binding:"required"`
	Description string                 `json:"description"`
	StartDate   time.Time              `json:"startDate" binding:"required"`
	EndDate     time.Time              `json:"endDate" binding:"required"`
}

// ToEntity maps the request to a bill discount entity.
func (r CreateBillDiscountRequest) ToEntity() *discount.BillDiscount {
	now := time.Now().UTC()
	return &discount.BillDiscount{
		BaseEntity:  entity.NewBaseEntity(),
		Condition:   r.Condition,
		Threshold:   r.Threshold,
		Kind:        r.Kind,
		Value:       r.Value,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Status:      discount.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateBillDiscountRequest updates a bill discount.
type UpdateBillDiscountRequest struct {
	Condition   *discount.BillCondition `json:"conditionType"`
	Threshold   *types.Money            `json:"threshold"`
	Kind        *discount.Kind          `json:"kind"`
	Value       *types.Money            `json:"value"`
	Description *string                 `json:"description"`
	StartDate   *time.Time              `json:"startDate"`
	EndDate     *time.Time              `json:"endDate"`
}

// ApplyTo maps set fields onto an existing bill discount.
func (r UpdateBillDiscountRequest) ApplyTo(d *discount.BillDiscount) {
	if r.Condition != nil {
		d.Condition = *r.Condition
	}
	if r.Threshold != nil {
		d.Threshold = *r.Threshold
	}
	if r.Kind != nil {
		d.Kind = *r.Kind
	}
	if r.Value != nil {
		d.Value = *r.Value
	}
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.StartDate != nil {
		d.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		d.EndDate = *r.EndDate
	}
}

// --- Status ---

// SetDiscountStatusRequest toggles a discount.
type SetDiscountStatusRequest struct {
	Status discount.Status `json:"status" binding:"required"`
}

// --- Resolution ---

// ResolvedDiscountsResponse is the outcome of discount resolution for a
// product. Either field may be null.
type ResolvedDiscountsResponse struct {
	Item     *discount.ItemDiscount     `json:"item,omitempty"`
	Category *discount.CategoryDiscount `json:"category,omitempty"`
}
