// Package customer provides the customer catalog.
package customer

import (
	"context"
	"fmt"
	"time"

	"smartmart/internal/core/entity"
	"smartmart/internal/core/tx"
	"smartmart/internal/core/types"
	"smartmart/internal/domain"
	"smartmart/pkg/logger"
)

// CashCustomerName is the walk-in customer seeded at startup.
// Invoices without an explicit customer settle against it.
const CashCustomerName = "Cash"

// Customer is a buyer, possibly with a running credit balance.
type Customer struct {
	entity.Catalog

	Phone     string      `db:"phone" json:"phone,omitempty"`
	Address   string      `db:"address" json:"address,omitempty"`
	Balance   types.Money `db:"balance" json:"balance"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// New creates a customer with generated ID and zero balance.
func New(code, name string) *Customer {
	now := time.Now().UTC()
	return &Customer{
		Catalog:   entity.NewCatalog(code, name),
		Balance:   types.Zero(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Repository is the customer persistence contract.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// GetByName retrieves a customer by exact name.
	GetByName(ctx context.Context, name string) (*Customer, error)
}

// Service provides customer operations.
type Service struct {
	*domain.CatalogService[*Customer]

	repo      Repository
	txManager tx.Manager
}

// NewService creates a customer service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "customer",
		}),
		repo:      repo,
		txManager: txManager,
	}
}

// EnsureCashCustomer seeds the default walk-in customer if missing.
// Called once at startup; safe to call repeatedly.
func (s *Service) EnsureCashCustomer(ctx context.Context) (*Customer, error) {
	existing, err := s.repo.GetByName(ctx, CashCustomerName)
	if err == nil {
		return existing, nil
	}

	c := New("CASH", CashCustomerName)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("seed cash customer: %w", err)
	}

	logger.Info(ctx, "seeded default cash customer", "customer_id", c.ID)
	return c, nil
}
