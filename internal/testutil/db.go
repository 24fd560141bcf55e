// Package testutil holds fixtures shared by the repo, service and handler tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/db"
)

// NewDB opens a migrated in-memory database. A single connection keeps every
// query on the same memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := db.GormConfig()
	cfg.PrepareStmt = false

	gdb, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return gdb
}

func CreateUser(t testing.TB, gdb *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := &models.User{Name: "Test " + email, Email: email, PasswordHash: "x", Role: role}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func CreateProduct(t testing.TB, gdb *gorm.DB, name, category string, price float64, featured bool) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       price,
		Category:    category,
		Sizes:       []string{"M", "G"},
		IsFeatured:  featured,
		Image:       "https://images.example.com/products/" + name + ".png",
	}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}
