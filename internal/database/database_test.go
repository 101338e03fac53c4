package database

import (
	"context"
	"errors"
	"testing"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/user"
	"github.com/example/storefront/internal/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(config.Database{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { Close(db) })
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(config.Database{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpen_Ping(t *testing.T) {
	db := openTestDB(t)
	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestUniqueUsername_TranslatesToDuplicatedKey(t *testing.T) {
	db := openTestDB(t)

	first := &user.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", IsActive: true}
	if err := db.Create(first).Error; err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := &user.User{Username: "alice", Email: "other@example.com", PasswordHash: "x", IsActive: true}
	err := db.Create(dup).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("Create() error = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestDeleteUser_CascadesProfile(t *testing.T) {
	db := openTestDB(t)

	u := &user.User{Username: "bob", Email: "bob@example.com", PasswordHash: "x", IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Create(user) error = %v", err)
	}
	if err := db.Create(&user.Profile{UserID: u.ID, City: "Lisbon"}).Error; err != nil {
		t.Fatalf("Create(profile) error = %v", err)
	}

	if err := db.Delete(u).Error; err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var count int64
	db.Model(&user.Profile{}).Count(&count)
	if count != 0 {
		t.Errorf("profiles after user delete = %d, want 0", count)
	}
}

func TestDeleteCategory_NullsProductCategory(t *testing.T) {
	db := openTestDB(t)

	c := &catalog.Category{Name: "Books"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Create(category) error = %v", err)
	}
	p := &catalog.Product{
		Name:       "Go in Practice",
		Price:      decimal.RequireFromString("39.90"),
		CategoryID: &c.ID,
		IsActive:   true,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Create(product) error = %v", err)
	}

	if err := db.Delete(c).Error; err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var found catalog.Product
	if err := db.First(&found, p.ID).Error; err != nil {
		t.Fatalf("product should survive its category: %v", err)
	}
	if found.CategoryID != nil {
		t.Errorf("CategoryID = %v, want nil", *found.CategoryID)
	}
	if !found.Price.Equal(decimal.RequireFromString("39.90")) {
		t.Errorf("Price = %s, want 39.90", found.Price)
	}
}

func TestDeleteProduct_CascadesReviews(t *testing.T) {
	db := openTestDB(t)

	u := &user.User{Username: "carol", Email: "carol@example.com", PasswordHash: "x", IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Create(user) error = %v", err)
	}
	p := &catalog.Product{Name: "Gopher Mug", Price: decimal.RequireFromString("12.50"), IsActive: true}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Create(product) error = %v", err)
	}
	if err := db.Create(&catalog.Review{ProductID: p.ID, UserID: u.ID, Rating: 5}).Error; err != nil {
		t.Fatalf("Create(review) error = %v", err)
	}

	if err := db.Delete(p).Error; err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var count int64
	db.Model(&catalog.Review{}).Count(&count)
	if count != 0 {
		t.Errorf("reviews after product delete = %d, want 0", count)
	}
}

func TestDeleteUser_CascadesReviews(t *testing.T) {
	db := openTestDB(t)

	u := &user.User{Username: "dave", Email: "dave@example.com", PasswordHash: "x", IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Create(user) error = %v", err)
	}
	p := &catalog.Product{Name: "Gopher Plush", Price: decimal.RequireFromString("20.00"), IsActive: true}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Create(product) error = %v", err)
	}
	if err := db.Create(&catalog.Review{ProductID: p.ID, UserID: u.ID, Rating: 4}).Error; err != nil {
		t.Fatalf("Create(review) error = %v", err)
	}

	if err := db.Delete(u).Error; err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var count int64
	db.Model(&catalog.Review{}).Count(&count)
	if count != 0 {
		t.Errorf("reviews after user delete = %d, want 0", count)
	}
	if err := db.First(&catalog.Product{}, p.ID).Error; err != nil {
		t.Errorf("product should survive its reviewer: %v", err)
	}
}
