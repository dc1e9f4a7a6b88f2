// Package supplier provides the supplier catalog.
package supplier

import (
	"context"
	"time"

	"smartmart/internal/core/apperror"
	"smartmart/internal/core/entity"
	"smartmart/internal/core/tx"
	"smartmart/internal/core/types"
	"smartmart/internal/domain"
)

// Status enables or disables a supplier.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Supplier is a goods vendor with payment terms and balances.
type Supplier struct {
	entity.Catalog

	ContactPerson string `db:"contact_person" json:"contactPerson,omitempty"`
	Phone         string `db:"phone" json:"phone"`
	Email         string `db:"email" json:"email,omitempty"`
	Address       string `db:"address" json:"address,omitempty"`
	City          string `db:"city" json:"city,omitempty"`
	Country       string `db:"country" json:"country,omitempty"`
	TaxNumber     string `db:"tax_number" json:"taxNumber,omitempty"`
	PaymentTerms  string `db:"payment_terms" json:"paymentTerms,omitempty"`
	BankDetails   string `db:"bank_details" json:"bankDetails,omitempty"`

	OpeningBalance     types.Money  `db:"opening_balance" json:"openingBalance"`
	OutstandingBalance types.Money  `db:"outstanding_balance" json:"outstandingBalance"`
	CreditLimit        *types.Money `db:"credit_limit" json:"creditLimit,omitempty"`

	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a supplier with generated ID.
func New(code, name string) *Supplier {
	now := time.Now().UTC()
	return &Supplier{
		Catalog:            entity.NewCatalog(code, name),
		OpeningBalance:     types.Zero(),
		OutstandingBalance: types.Zero(),
		Status:             StatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}
	if s.Phone == "" {
		return apperror.NewValidation("phone is required").
			WithDetail("field", "phone")
	}
	return nil
}

// Repository is the supplier persistence contract.
type Repository interface {
	domain.CatalogRepository[*Supplier]
}

// Service provides supplier operations.
type Service struct {
	*domain.CatalogService[*Supplier]
}

// NewService creates a supplier service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "supplier",
		}),
	}
}
