package handlers

import (
	"smartmart/internal/domain/catalogs/category"
	"smartmart/internal/domain/catalogs/customer"
	"smartmart/internal/domain/catalogs/supplier"
	"smartmart/internal/domain/catalogs/unit"
	"smartmart/internal/domain/catalogs/user"
	"smartmart/internal/infrastructure/http/v1/dto"
)

// Entities marshal with their own json tags, so the simple catalogs respond
// with the entity itself.

// CategoryHandler handles category endpoints.
type CategoryHandler = CatalogHandler[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]{
		Service:    service.CatalogService,
		EntityName: "category",
		MapCreateDTO: func(req dto.CreateCategoryRequest) (*category.Category, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateCategoryRequest, existing *category.Category) (*category.Category, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(c *category.Category) any { return c },
	})
}

// UnitHandler handles measurement unit endpoints.
type UnitHandler = CatalogHandler[*unit.Unit, dto.CreateUnitRequest, dto.UpdateUnitRequest]

// NewUnitHandler creates a unit handler.
func NewUnitHandler(base *BaseHandler, service *unit.Service) *UnitHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*unit.Unit, dto.CreateUnitRequest, dto.UpdateUnitRequest]{
		Service:    service.CatalogService,
		EntityName: "unit",
		MapCreateDTO: func(req dto.CreateUnitRequest) (*unit.Unit, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateUnitRequest, existing *unit.Unit) (*unit.Unit, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(u *unit.Unit) any { return u },
	})
}

// SupplierHandler handles supplier endpoints.
type SupplierHandler = CatalogHandler[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]

// NewSupplierHandler creates a supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]{
		Service:    service.CatalogService,
		EntityName: "supplier",
		MapCreateDTO: func(req dto.CreateSupplierRequest) (*supplier.Supplier, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) (*supplier.Supplier, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(s *supplier.Supplier) any { return s },
	})
}

// CustomerHandler handles customer endpoints.
type CustomerHandler = CatalogHandler[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]

// NewCustomerHandler creates a customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]{
		Service:    service.CatalogService,
		EntityName: "customer",
		MapCreateDTO: func(req dto.CreateCustomerRequest) (*customer.Customer, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateCustomerRequest, existing *customer.Customer) (*customer.Customer, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(c *customer.Customer) any { return c },
	})
}

// UserHandler handles staff user endpoints.
type UserHandler = CatalogHandler[*user.User, dto.CreateUserRequest, dto.UpdateUserRequest]

// NewUserHandler creates a user handler.
func NewUserHandler(base *BaseHandler, service *user.Service) *UserHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*user.User, dto.CreateUserRequest, dto.UpdateUserRequest]{
		Service:    service.CatalogService,
		EntityName: "user",
		MapCreateDTO: func(req dto.CreateUserRequest) (*user.User, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateUserRequest, existing *user.User) (*user.User, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(u *user.User) any { return u },
	})
}
