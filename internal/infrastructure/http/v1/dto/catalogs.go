package dto

import (
	"smartmart/internal/core/types"
	"smartmart/internal/domain/catalogs/category"
	"smartmart/internal/domain/catalogs/customer"
	"smartmart/internal/domain/catalogs/supplier"
	"smartmart/internal/domain/catalogs/unit"
	"smartmart/internal/domain/catalogs/user"
)

// --- Category ---

// CreateCategoryRequest creates a category.
type CreateCategoryRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ToEntity maps the request to a category entity.
func (r CreateCategoryRequest) ToEntity() *category.Category {
	c := category.New(r.Code, r.Name)
	c.Description = r.Description
	return c
}

// UpdateCategoryRequest updates a category.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ApplyTo maps set fields onto an existing category.
func (r UpdateCategoryRequest) ApplyTo(c *category.Category) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Description != nil {
		c.Description = *r.Description
	}
}

// --- Unit ---

// CreateUnitRequest creates a measurement unit.
type CreateUnitRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// ToEntity maps the request to a unit entity.
func (r CreateUnitRequest) ToEntity() *unit.Unit {
	return unit.New(r.Code, r.Name)
}

// UpdateUnitRequest updates a unit.
type UpdateUnitRequest struct {
	Name *string `json:"name"`
}

// ApplyTo maps set fields onto an existing unit.
func (r UpdateUnitRequest) ApplyTo(u *unit.Unit) {
	if r.Name != nil {
		u.Name = *r.Name
	}
}

// --- Supplier ---

// CreateSupplierRequest creates a supplier.
type CreateSupplierRequest struct {
	Code          string `json:"code" binding:"required"`
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone" binding:"required"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Country       string `json:"country"`
	TaxNumber     string `json:"taxNumber"`
	PaymentTerms  string `json:"paymentTerms"`
	BankDetails   string `json:"bankDetails"`

	OpeningBalance *types.Money `json:"openingBalance"`
	CreditLimit    *types.Money `json:"creditLimit"`
}

// ToEntity maps the request to a supplier entity.
func (r CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.New(r.Code, r.Name)
	s.ContactPerson = r.ContactPerson
	s.Phone = r.Phone
	s.Email = r.Email
	s.Address = r.Address
	s.City = r.City
	s.Country = r.Country
	s.TaxNumber = r.TaxNumber
	s.PaymentTerms = r.PaymentTerms
	s.BankDetails = r.BankDetails
	if r.OpeningBalance != nil {
		s.OpeningBalance = *r.OpeningBalance
		s.OutstandingBalance = *r.OpeningBalance
	}
	s.CreditLimit = r.CreditLimit
	return s
}

// UpdateSupplierRequest updates a supplier.
type UpdateSupplierRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	Country       *string `json:"country"`
	TaxNumber     *string `json:"taxNumber"`
	PaymentTerms  *string `json:"paymentTerms"`
	BankDetails   *string `json:"bankDetails"`

	CreditLimit *types.Money     `json:"creditLimit"`
	Status      *supplier.Status `json:"status"`
}

// ApplyTo maps set fields onto an existing supplier.
func (r UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.ContactPerson != nil {
		s.ContactPerson = *r.ContactPerson
	}
	if r.Phone != nil {
		s.Phone = *r.Phone
	}
	if r.Email != nil {
		s.Email = *r.Email
	}
	if r.Address != nil {
		s.Address = *r.Address
	}
	if r.City != nil {
		s.City = *r.City
	}
	if r.Country != nil {
		s.Country = *r.Country
	}
	if r.TaxNumber != nil {
		s.TaxNumber = *r.TaxNumber
	}
	if r.PaymentTerms != nil {
		s.PaymentTerms = *r.PaymentTerms
	}
	if r.BankDetails != nil {
		s.BankDetails = *r.BankDetails
	}
	if r.CreditLimit != nil {
		s.CreditLimit = r.CreditLimit
	}
	if r.Status != nil {
		s.Status = *r.Status
	}
}

// --- Customer ---

// CreateCustomerRequest creates a customer.
type CreateCustomerRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ToEntity maps the request to a customer entity.
func (r CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.New(r.Code, r.Name)
	c.Phone = r.Phone
	c.Address = r.Address
	return c
}

// UpdateCustomerRequest updates a customer.
type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// ApplyTo maps set fields onto an existing customer.
func (r UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
}

// --- User ---

// CreateUserRequest creates a staff user. Username doubles as code.
type CreateUserRequest struct {
	Username string    `json:"username" binding:"required"`
	FullName string    `json:"fullName" binding:"required"`
	Role     user.Role `json:"role" binding:"required"`
	Email    string    `json:"email"`
}

// ToEntity maps the request to a user entity.
func (r CreateUserRequest) ToEntity() *user.User {
	u := user.New(r.Username, r.FullName, r.Role)
	u.Email = r.Email
	return u
}

// UpdateUserRequest updates a staff user.
type UpdateUserRequest struct {
	FullName *string      `json:"fullName"`
	Role     *user.Role   `json:"role"`
	Status   *user.Status `json:"status"`
	Email    *string      `json:"email"`
}

// ApplyTo maps set fields onto an existing user.
func (r UpdateUserRequest) ApplyTo(u *user.User) {
	if r.FullName != nil {
		u.FullName = *r.FullName
		u.Name = *r.FullName
	}
	if r.Role != nil {
		u.Role = *r.Role
	}
	if r.Status != nil {
		u.Status = *r.Status
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
}
