// internal/database/connection.go
package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopdesk/crm-backend/internal/config"
	"github.com/shopdesk/crm-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.CustomerAnalytics{},
		&models.Product{},
		&models.Bill{},
		&models.BillItem{},
		&models.ReturnRequest{},
		&models.Sequence{},
		&models.AuditLog{},
		&models.Notification{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := EnsureSequences(db); err != nil {
		return fmt.Errorf("failed to bootstrap sequences: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// EnsureSequences creates the counter rows the sequence generator increments.
// A counter starting at 0 makes the first allocated transaction id TID0001.
func EnsureSequences(db *gorm.DB) error {
	seq := models.Sequence{Name: models.SequenceBillTransaction, Value: 0}
	err := db.First(&models.Sequence{}, "name = ?", seq.Name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&seq).Error
	}
	return err
}

func SeedData(db *gorm.DB, cfg *config.Config) error {
	log.Println("Seeding initial data...")

	// Seed admin account if none exists
	var adminCount int64
	if err := db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount).Error; err != nil {
		return fmt.Errorf("failed to check admin users: %w", err)
	}

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@crm.com",
			Role:     models.UserRoleAdmin,
		}
		if err := admin.SetPassword("admin123"); err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		log.Println("Seeded default admin account")
	}

	if !cfg.Billing.SeedDemoData || cfg.Environment == "production" {
		return nil
	}

	var productCount int64
	if err := db.Model(&models.Product{}).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to check products: %w", err)
	}

	if productCount == 0 {
		products := []models.Product{
			{Name: "Laptop Pro 15", Category: "Electronics", Price: 1299.99, TaxRate: 8.25, Qty: 25, Status: models.ProductStatusActive},
			{Name: "Wireless Mouse", Category: "Electronics", Price: 29.99, TaxRate: 5.50, Qty: 150, Status: models.ProductStatusActive},
			{Name: "USB-C Hub", Category: "Electronics", Price: 49.99, TaxRate: 6.75, Qty: 3, Status: models.ProductStatusActive},
			{Name: "Mechanical Keyboard", Category: "Electronics", Price: 89.99, TaxRate: 7.25, Qty: 35, Status: models.ProductStatusActive},
			{Name: "Monitor 27\"", Category: "Electronics", Price: 399.99, TaxRate: 8.50, Qty: 12, Status: models.ProductStatusActive},
			{Name: "Webcam HD", Category: "Electronics", Price: 79.99, TaxRate: 6.00, Qty: 2, Status: models.ProductStatusActive},
			{Name: "Desk Lamp", Category: "Office", Price: 34.99, TaxRate: 4.50, Qty: 45, Status: models.ProductStatusActive},
			{Name: "Office Chair", Category: "Furniture", Price: 299.99, TaxRate: 9.00, Qty: 18, Status: models.ProductStatusActive},
			{Name: "Notebook Set", Category: "Stationery", Price: 19.99, TaxRate: 3.50, Qty: 200, Status: models.ProductStatusActive},
			{Name: "Coffee Maker", Category: "Appliances", Price: 149.99, TaxRate: 7.75, Qty: 4, Status: models.ProductStatusActive},
		}
		if err := db.Create(&products).Error; err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
	}

	var customerCount int64
	if err := db.Model(&models.Customer{}).Count(&customerCount).Error; err != nil {
		return fmt.Errorf("failed to check customers: %w", err)
	}

	if customerCount == 0 {
		customers := []models.Customer{
			{Name: "John Doe", Email: "john@example.com", Phone: "555-0101", Address: "123 Main St"},
			{Name: "Jane Smith", Email: "jane@example.com", Phone: "555-0102", Address: "456 Oak Ave"},
			{Name: "Bob Johnson", Email: "bob@example.com", Phone: "555-0103", Address: "789 Pine Rd"},
			{Name: "Alice Brown", Email: "alice@example.com", Phone: "555-0104", Address: "321 Elm St"},
			{Name: "Charlie Wilson", Email: "charlie@example.com", Phone: "555-0105", Address: "654 Maple Dr"},
		}
		if err := db.Create(&customers).Error; err != nil {
			return fmt.Errorf("failed to seed customers: %w", err)
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
