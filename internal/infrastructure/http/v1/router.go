// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"smartmart/internal/core/id"
	"smartmart/internal/domain"
	"smartmart/internal/domain/catalogs/category"
	"smartmart/internal/domain/catalogs/customer"
	"smartmart/internal/domain/catalogs/product"
	"smartmart/internal/domain/catalogs/supplier"
	"smartmart/internal/domain/catalogs/unit"
	"smartmart/internal/domain/catalogs/user"
	"smartmart/internal/domain/discount"
	"smartmart/internal/domain/documents/invoice"
	"smartmart/internal/domain/documents/purchase"
	"smartmart/internal/domain/ledger"
	"smartmart/internal/domain/shop"
	"smartmart/internal/infrastructure/http/v1/handlers"
	"smartmart/internal/infrastructure/http/v1/middleware"
	"smartmart/internal/infrastructure/storage/postgres"
	"smartmart/internal/infrastructure/storage/postgres/catalog_repo"
	"smartmart/internal/infrastructure/storage/postgres/discount_repo"
	"smartmart/internal/infrastructure/storage/postgres/document_repo"
	"smartmart/internal/infrastructure/storage/postgres/ledger_repo"
	"smartmart/internal/infrastructure/storage/postgres/shop_repo"
	"smartmart/pkg/logger"
	"smartmart/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks and numbering)
	Pool *postgres.Pool

	// TxManager manages transactions for all repositories
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger
}

// Services bundles the wired domain services. The router builds it once;
// main reuses it for startup seeding.
type Services struct {
	Product  *product.Service
	Category *category.Service
	Supplier *supplier.Service
	Customer *customer.Service
	Unit     *unit.Service
	User     *user.Service
	Ledger   *ledger.Service
	Discount *discount.Service
	Invoice  *invoice.Service
	Purchase *purchase.Service
	Shop     *shop.Service
	Audit    *postgres.AuditService
}

// BuildServices wires repositories and domain services.
func BuildServices(pool *postgres.Pool, txm *postgres.TxManager) (*Services, error) {
	num := numerator.New(pool)

	audit, err := postgres.NewAuditService(txm)
	if err != nil {
		return nil, fmt.Errorf("init audit service: %w", err)
	}

	productRepo := catalog_repo.NewProductRepo(txm)
	categoryRepo := catalog_repo.NewCategoryRepo(txm)
	supplierRepo := catalog_repo.NewSupplierRepo(txm)
	customerRepo := catalog_repo.NewCustomerRepo(txm)
	unitRepo := catalog_repo.NewUnitRepo(txm)
	userRepo := catalog_repo.NewUserRepo(txm)
	ledgerRepo := ledger_repo.NewLedgerRepo(txm)
	discountRepo := discount_repo.NewDiscountRepo(txm)
	invoiceRepo := document_repo.NewInvoiceRepo(txm)
	purchaseRepo := document_repo.NewPurchaseRepo(txm)
	shopRepo := shop_repo.NewShopRepo(txm)

	ledgerSvc := ledger.NewService(ledgerRepo, productRepo)
	discountSvc := discount.NewService(discountRepo, productRepo, txm)

	services := &Services{
		Product:  product.NewService(productRepo, ledgerSvc, txm),
		Category: category.NewService(categoryRepo, txm),
		Supplier: supplier.NewService(supplierRepo, txm),
		Customer: customer.NewService(customerRepo, txm),
		Unit:     unit.NewService(unitRepo, txm),
		User:     user.NewService(userRepo, txm),
		Ledger:   ledgerSvc,
		Discount: discountSvc,
		Invoice:  invoice.NewService(invoiceRepo, ledgerSvc, productRepo, discountSvc, num, txm),
		Purchase: purchase.NewService(purchaseRepo, ledgerSvc, productRepo, num, txm),
		Shop:     shop.NewService(shopRepo, txm),
		Audit:    audit,
	}

	registerAuditHooks(services)

	return services, nil
}

// auditable is what the audit hooks need from a catalog entity.
type auditable interface {
	GetID() id.ID
}

// registerAuditHooks attaches audit logging to catalog lifecycle events.
// Hooks run after the owning transaction commits; a failed hook only warns.
func registerAuditHooks(s *Services) {
	catalogAuditHooks(s.Audit, s.Product.Hooks(), "product")
	catalogAuditHooks(s.Audit, s.Category.Hooks(), "category")
	catalogAuditHooks(s.Audit, s.Supplier.Hooks(), "supplier")
	catalogAuditHooks(s.Audit, s.Customer.Hooks(), "customer")
	catalogAuditHooks(s.Audit, s.Unit.Hooks(), "unit")
	catalogAuditHooks(s.Audit, s.User.Hooks(), "user")
}

func catalogAuditHooks[T auditable](audit *postgres.AuditService, hooks *domain.HookRegistry[T], entityType string) {
	log := func(action postgres.AuditAction) domain.Hook[T] {
		return func(ctx context.Context, e T) error {
			return audit.LogChange(ctx, entityType, e.GetID(), action, postgres.StructToMap(e))
		}
	}
	hooks.On(domain.AfterCreate, log(postgres.AuditActionCreate))
	hooks.On(domain.AfterUpdate, log(postgres.AuditActionUpdate))
	hooks.On(domain.AfterDelete, log(postgres.AuditActionDelete))
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig, services *Services) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	{
		registerCatalogRoutes(api, services)
		registerDocumentRoutes(api, services)
		registerStockRoutes(api, services, cfg.TxManager)
		registerDiscountRoutes(api, services)
		registerShopRoutes(api, services)
	}

	return router
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, services *Services) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- PRODUCTS ---
	{
		handler := handlers.NewProductHandler(baseHandler, services.Product)
		g := catalogs.Group("/products")
		g.GET("", handler.List)
		g.POST("", handler.Register)
		g.GET("/by-code/:code", handler.GetByCode)
		g.GET("/:id", handler.Get)
		g.PUT("/:id", handler.Update)
		g.DELETE("/:id", handler.Delete)
		g.POST("/:id/deletion-mark", handler.SetDeletionMark)
		g.POST("/:id/stock", handler.SetStock)
		g.GET("/:id/availability", handler.Availability)
	}

	// --- CATEGORIES ---
	{
		handler := handlers.NewCategoryHandler(baseHandler, services.Category)
		registerCatalogCRUD(catalogs.Group("/categories"), handler)
	}

	// --- SUPPLIERS ---
	{
		handler := handlers.NewSupplierHandler(baseHandler, services.Supplier)
		registerCatalogCRUD(catalogs.Group("/suppliers"), handler)
	}

	// --- CUSTOMERS ---
	{
		handler := handlers.NewCustomerHandler(baseHandler, services.Customer)
		registerCatalogCRUD(catalogs.Group("/customers"), handler)
	}

	// --- UNITS ---
	{
		handler := handlers.NewUnitHandler(baseHandler, services.Unit)
		registerCatalogCRUD(catalogs.Group("/units"), handler)
	}

	// --- USERS ---
	{
		handler := handlers.NewUserHandler(baseHandler, services.User)
		registerCatalogCRUD(catalogs.Group("/users"), handler)
	}
}

// catalogRoutes is the route surface shared by all simple catalogs.
type catalogRoutes interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	GetByCode(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// registerCatalogCRUD registers the standard catalog route set.
func registerCatalogCRUD(g *gin.RouterGroup, h catalogRoutes) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/by-code/:code", h.GetByCode)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/deletion-mark", h.SetDeletionMark)
}

// registerDocumentRoutes registers invoice and purchase endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, services *Services) {
	docs := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	// --- INVOICES ---
	{
		handler := handlers.NewInvoiceHandler(baseHandler, services.Invoice, services.Audit)
		g := docs.Group("/invoices")
		g.GET("", handler.List)
		g.POST("", handler.Commit)
		g.GET("/:id", handler.Get)
		g.POST("/:id/returns", handler.Return)
	}

	// --- PURCHASES ---
	{
		handler := handlers.NewPurchaseHandler(baseHandler, services.Purchase, services.Audit)
		g := docs.Group("/purchases")
		g.GET("", handler.List)
		g.POST("", handler.Commit)
		g.GET("/:id", handler.Get)
		g.POST("/:id/payment-status", handler.SetPaymentStatus)
	}
}

// registerStockRoutes registers stock ledger read endpoints.
func registerStockRoutes(rg *gin.RouterGroup, services *Services, txm *postgres.TxManager) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewStockHandler(baseHandler, services.Ledger, ledger_repo.NewLedgerRepo(txm))

	g := rg.Group("/stock")
	g.GET("/history/:productId", handler.History)
	g.GET("/by-transaction/:transactionId", handler.ByTransaction)
	g.GET("/turnover/:productId", handler.Turnover)
}

// registerDiscountRoutes registers discount endpoints.
func registerDiscountRoutes(rg *gin.RouterGroup, services *Services) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewDiscountHandler(baseHandler, services.Discount)

	discounts := rg.Group("/discounts")

	items := discounts.Group("/items")
	items.GET("", handler.ListItems)
	items.POST("", handler.CreateItem)
	items.GET("/:id", handler.GetItem)
	items.PUT("/:id", handler.UpdateItem)
	items.POST("/:id/status", handler.SetItemStatus)

	categories := discounts.Group("/categories")
	categories.GET("", handler.ListCategories)
	categories.POST("", handler.CreateCategory)
	categories.GET("/:id", handler.GetCategory)
	categories.PUT("/:id", handler.UpdateCategory)
	categories.POST("/:id/status", handler.SetCategoryStatus)

	bills := discounts.Group("/bills")
	bills.GET("", handler.ListBills)
	bills.POST("", handler.CreateBill)
	bills.GET("/:id", handler.GetBill)
	bills.PUT("/:id", handler.UpdateBill)
	bills.POST("/:id/status", handler.SetBillStatus)

	discounts.GET("/resolve/:productId", handler.Resolve)
}

// registerShopRoutes registers the shop profile endpoints.
func registerShopRoutes(rg *gin.RouterGroup, services *Services) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewShopHandler(baseHandler, services.Shop)

	g := rg.Group("/shop")
	g.GET("", handler.Get)
	g.PUT("", handler.Save)
}
