// Package unit provides the measurement unit catalog (pcs, kg, box).
package unit

import (
	"time"

	"smartmart/internal/core/entity"
	"smartmart/internal/core/tx"
	"smartmart/internal/domain"
)

// Unit is a product measurement unit.
type Unit struct {
	entity.Catalog

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a unit with generated ID.
func New(code, name string) *Unit {
	now := time.Now().UTC()
	return &Unit{
		Catalog:   entity.NewCatalog(code, name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Repository is the unit persistence contract.
type Repository interface {
	domain.CatalogRepository[*Unit]
}

// Service provides unit operations.
type Service struct {
	*domain.CatalogService[*Unit]
}

// NewService creates a unit service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Unit]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "unit",
		}),
	}
}
