// Package category provides the product category catalog.
package category

import (
	"time"

	"smartmart/internal/core/entity"
	"smartmart/internal/core/tx"
	"smartmart/internal/domain"
)

// Category groups products for reporting and category discounts.
type Category struct {
	entity.Catalog

	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a category with generated ID.
func New(code, name string) *Category {
	now := time.Now().UTC()
	return &Category{
		Catalog:   entity.NewCatalog(code, name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Repository is the category persistence contract.
type Repository interface {
	domain.CatalogRepository[*Category]
}

// Service provides category operations.
type Service struct {
	*domain.CatalogService[*Category]
}

// NewService creates a category service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "category",
		}),
	}
}
