// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"smartmart/internal/core/apperror"
	"smartmart/internal/domain/catalogs/unit"
	"smartmart/internal/domain/catalogs/user"
	"smartmart/internal/domain/shop"
	v1 "smartmart/internal/infrastructure/http/v1"
	"smartmart/internal/infrastructure/storage/postgres"
	"smartmart/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	services, err := v1.BuildServices(pool, txManager)
	if err != nil {
		log.Fatalw("failed to build services", "error", err)
	}

	if _, err := services.Customer.EnsureCashCustomer(ctx); err != nil {
		log.Fatalw("failed to seed cash customer", "error", err)
	}

	if err := seedAdminUser(ctx, services, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if err := seedUnits(ctx, services, log); err != nil {
		log.Fatalw("failed to seed units", "error", err)
	}

	if err := seedShopProfile(ctx, services, log); err != nil {
		log.Fatalw("failed to seed shop profile", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, services *v1.Services, log *logger.Logger) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}

	existing, err := services.User.GetByCode(ctx, username)
	if err == nil {
		log.Infow("admin user already exists", "username", username, "user_id", existing.ID)
		return nil
	}
	if !apperror.IsNotFound(err) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	u := user.New(username, "System Admin", user.RoleAdmin)
	u.Status = user.StatusActive
	if err := services.User.Create(ctx, u); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	log.Infow("seeded admin user", "username", username, "user_id", u.ID)
	return nil
}

func seedUnits(ctx context.Context, services *v1.Services, log *logger.Logger) error {
	defaults := map[string]string{
		"PCS": "Pieces",
		"KG":  "Kilogram",
		"BOX": "Box",
	}

	for code, name := range defaults {
		exists, err := services.Unit.GetByCode(ctx, code)
		if err == nil {
			log.Infow("unit already exists", "code", code, "unit_id", exists.ID)
			continue
		}
		if !apperror.IsNotFound(err) {
			return fmt.Errorf("check unit %s: %w", code, err)
		}

		u := unit.New(code, name)
		if err := services.Unit.Create(ctx, u); err != nil {
			return fmt.Errorf("create unit %s: %w", code, err)
		}
		log.Infow("seeded unit", "code", code)
	}

	return nil
}

func seedShopProfile(ctx context.Context, services *v1.Services, log *logger.Logger) error {
	_, err := services.Shop.Get(ctx)
	if err == nil {
		log.Info("shop profile already exists")
		return nil
	}
	if !apperror.IsNotFound(err) {
		return fmt.Errorf("check shop profile: %w", err)
	}

	profile := &shop.Profile{
		ShopName: getEnv("SHOP_NAME", "SmartMart"),
		Phone:    getEnv("SHOP_PHONE", "000-000-0000"),
		Location: os.Getenv("SHOP_LOCATION"),
	}
	if err := services.Shop.Save(ctx, profile); err != nil {
		return fmt.Errorf("save shop profile: %w", err)
	}

	log.Infow("seeded shop profile", "shop_name", profile.ShopName)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
