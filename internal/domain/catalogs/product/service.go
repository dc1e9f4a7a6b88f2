package product

import (
	"context"
	"fmt"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/id"
	"smartmart/internal/core/tx"
	"smartmart/internal/core/types"
	"smartmart/internal/domain"
	"smartmart/internal/domain/ledger"
	"smartmart/pkg/logger"
)

// Repository is the product persistence contract.
type Repository interface {
	domain.CatalogRepository[*Product]
}

// Service provides product operations on top of the generic catalog service.
// Stock-affecting operations (registration with opening qty, adjustments)
// delegate to the ledger engine inside a single transaction.
type Service struct {
	*domain.CatalogService[*Product]

	repo      Repository
	ledger    *ledger.Service
	txManager tx.Manager
}

// NewService creates a product service.
func NewService(repo Repository, ledgerSvc *ledger.Service, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "product",
		}),
		repo:      repo,
		ledger:    ledgerSvc,
		txManager: txManager,
	}
}

// Register creates a product and records its opening stock atomically.
//
// The declared initial quantity never lands in products.qty directly: the
// row is inserted with qty 0 and an Opening ledger entry brings the balance
// (and snapshot) up. A failure at any step rolls back both.
func (s *Service) Register(ctx context.Context, p *Product, openingQty types.Quantity) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if openingQty.Sign() < 0 {
		return apperror.NewValidation("opening quantity cannot be negative")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByCode(ctx, p.Code)
		if err != nil {
			return fmt.Errorf("check product code: %w", err)
		}
		if exists {
			return apperror.NewDuplicate("product", "code", p.Code)
		}

		p.Qty = types.Zero()
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		if _, err := s.ledger.RegisterOpening(ctx, p.ID, openingQty, "Opening Stock"); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "registered product",
		"product_id", p.ID,
		"code", p.Code,
		"opening_qty", openingQty.String(),
	)

	return nil
}

// UpdateDetails updates catalog fields and prices. The quantity snapshot is
// owned by the ledger engine and is deliberately not updatable here.
func (s *Service) UpdateDetails(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if current.Code != p.Code {
			return apperror.NewValidation("product code is immutable").
				WithDetail("code", current.Code)
		}

		p.Qty = current.Qty
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
}

// SetStock adjusts the product's stock to target via one Adjustment entry.
func (s *Service) SetStock(ctx context.Context, productID id.ID, target types.Quantity, remarks string) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := s.ledger.AdjustTo(ctx, productID, target, remarks)
		return err
	})
}

// Availability returns the current ledger balance for a product.
func (s *Service) Availability(ctx context.Context, productID id.ID) (types.Quantity, error) {
	exists, err := s.repo.Exists(ctx, productID)
	if err != nil {
		return types.Zero(), err
	}
	if !exists {
		return types.Zero(), apperror.NewProductNotFound(productID.String())
	}
	return s.ledger.Balance(ctx, productID)
}
