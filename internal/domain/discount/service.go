package discount

import (
	"context"
	"fmt"
	"time"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/id"
	"smartmart/internal/core/tx"
	"smartmart/internal/core/types"
)

// Repository persists the three discount kinds.
type Repository interface {
	CreateItem(ctx context.Context, d *ItemDiscount) error
	UpdateItem(ctx context.Context, d *ItemDiscount) error
	GetItem(ctx context.Context, discountID id.ID) (*ItemDiscount, error)
	ListItems(ctx context.Context, includeInactive bool) ([]ItemDiscount, error)
	SetItemStatus(ctx context.Context, discountID id.ID, status Status) error

	// ActiveItemsForProduct returns Active item discounts for the product
	// whose window contains asOf.
	ActiveItemsForProduct(ctx context.Context, productID id.ID, asOf time.Time) ([]ItemDiscount, error)

	CreateCategory(ctx context.Context, d *CategoryDiscount) error
	UpdateCategory(ctx context.Context, d *CategoryDiscount) error
	GetCategory(ctx context.Context, discountID id.ID) (*CategoryDiscount, error)
	ListCategories(ctx context.Context, includeInactive bool) ([]CategoryDiscount, error)
	SetCategoryStatus(ctx context.Context, discountID id.ID, status Status) error

	// ActiveCategoriesFor returns Active category discounts for the category
	// whose window contains asOf.
	ActiveCategoriesFor(ctx context.Context, categoryID id.ID, asOf time.Time) ([]CategoryDiscount, error)

	CreateBill(ctx context.Context, d *BillDiscount) error
	UpdateBill(ctx context.Context, d *BillDiscount) error
	GetBill(ctx context.Context, discountID id.ID) (*BillDiscount, error)
	ListBills(ctx context.Context, includeInactive bool) ([]BillDiscount, error)
	SetBillStatus(ctx context.Context, discountID id.ID, status Status) error

	// ActiveBills returns Active bill discounts whose window contains asOf.
	ActiveBills(ctx context.Context, asOf time.Time) ([]BillDiscount, error)
}

// SalePriceReader resolves a product's current sale price, used to validate
// value discounts at creation time.
type SalePriceReader interface {
	GetSalePrice(ctx context.Context, productID id.ID) (types.Money, error)
}

// Applicable is the resolver output for one sale line.
type Applicable struct {
	Item     *ItemDiscount
	Category *CategoryDiscount
}

// Service manages discount CRUD and resolution.
type Service struct {
	repo      Repository
	prices    SalePriceReader
	txManager tx.Manager
}

// NewService creates a discount service.
func NewService(repo Repository, prices SalePriceReader, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		prices:    prices,
		txManager: txManager,
	}
}

// Resolve returns the applicable item and category discounts for a product
// at asOf. The two kinds are selected independently; either or both may be
// nil. Which one the caller honors is a pricing decision, not a resolver one.
func (s *Service) Resolve(ctx context.Context, productID, categoryID id.ID, asOf time.Time) (Applicable, error) {
	var out Applicable

	items, err := s.repo.ActiveItemsForProduct(ctx, productID, asOf)
	if err != nil {
		return out, fmt.Errorf("load item discounts: %w", err)
	}
	out.Item = SelectItemDiscount(items)

	if !id.IsNil(categoryID) {
		cats, err := s.repo.ActiveCategoriesFor(ctx, categoryID, asOf)
		if err != nil {
			return out, fmt.Errorf("load category discounts: %w", err)
		}
		out.Category = SelectCategoryDiscount(cats)
	}

	return out, nil
}

// ResolveBill returns the applicable bill discount for a bill total at asOf,
// or nil when no active discount's condition matches.
func (s *Service) ResolveBill(ctx context.Context, total types.Money, asOf time.Time) (*BillDiscount, error) {
	bills, err := s.repo.ActiveBills(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("load bill discounts: %w", err)
	}
	return SelectBillDiscount(bills, total), nil
}

// CreateItem validates and persists an item discount. Value discounts may
// not exceed the product's current sale price.
func (s *Service) CreateItem(ctx context.Context, d *ItemDiscount) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkValueAgainstSalePrice(ctx, d); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateItem(ctx, d)
	})
}

// UpdateItem validates and persists changes to an item discount.
func (s *Service) UpdateItem(ctx context.Context, d *ItemDiscount) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkValueAgainstSalePrice(ctx, d); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.UpdateItem(ctx, d)
	})
}

func (s *Service) checkValueAgainstSalePrice(ctx context.Context, d *ItemDiscount) error {
	if d.Kind != KindValue {
		return nil
	}
	salePrice, err := s.prices.GetSalePrice(ctx, d.ProductID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewProductNotFound(d.ProductID.String())
		}
		return err
	}
	if d.Amount.GreaterThan(salePrice) {
		return apperror.NewInvalidDiscountAmount("discount value exceeds product sale price").
			WithDetail("sale_price", salePrice.String()).
			WithDetail("amount", d.Amount.String())
	}
	return nil
}

// CreateCategory validates and persists a category discount.
func (s *Service) CreateCategory(ctx context.Context, d *CategoryDiscount) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateCategory(ctx, d)
	})
}

// UpdateCategory validates and persists changes to a category discount.
func (s *Service) UpdateCategory(ctx context.Context, d *CategoryDiscount) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.UpdateCategory(ctx, d)
	})
}

// CreateBill validates and persists a bill discount.
func (s *Service) CreateBill(ctx context.Context, d *BillDiscount) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateBill(ctx, d)
	})
}

// UpdateBill validates and persists changes to a bill discount.
func (s *Service) UpdateBill(ctx context.Context, d *BillDiscount) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.UpdateBill(ctx, d)
	})
}

// GetItem returns an item discount by id.
func (s *Service) GetItem(ctx context.Context, discountID id.ID) (*ItemDiscount, error) {
	return s.repo.GetItem(ctx, discountID)
}

// GetCategory returns a category discount by id.
func (s *Service) GetCategory(ctx context.Context, discountID id.ID) (*CategoryDiscount, error) {
	return s.repo.GetCategory(ctx, discountID)
}

// GetBill returns a bill discount by id.
func (s *Service) GetBill(ctx context.Context, discountID id.ID) (*BillDiscount, error) {
	return s.repo.GetBill(ctx, discountID)
}

// ListItems returns item discounts.
func (s *Service) ListItems(ctx context.Context, includeInactive bool) ([]ItemDiscount, error) {
	return s.repo.ListItems(ctx, includeInactive)
}

// ListCategories returns category discounts.
func (s *Service) ListCategories(ctx context.Context, includeInactive bool) ([]CategoryDiscount, error) {
	return s.repo.ListCategories(ctx, includeInactive)
}

// ListBills returns bill discounts.
func (s *Service) ListBills(ctx context.Context, includeInactive bool) ([]BillDiscount, error) {
	return s.repo.ListBills(ctx, includeInactive)
}

// SetItemStatus toggles an item discount.
func (s *Service) SetItemStatus(ctx context.Context, discountID id.ID, status Status) error {
	return s.repo.SetItemStatus(ctx, discountID, status)
}

// SetCategoryStatus toggles a category discount.
func (s *Service) SetCategoryStatus(ctx context.Context, discountID id.ID, status Status) error {
	return s.repo.SetCategoryStatus(ctx, discountID, status)
}

// SetBillStatus toggles a bill discount.
func (s *Service) SetBillStatus(ctx context.Context, discountID id.ID, status Status) error {
	return s.repo.SetBillStatus(ctx, discountID, status)
}
