package service_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/turcoaput2/delanna-store/internal/datamodels/cart"
	"github.com/turcoaput2/delanna-store/internal/datamodels/product"
	"github.com/turcoaput2/delanna-store/internal/datamodels/user"
	"github.com/turcoaput2/delanna-store/internal/repository/mysql"
)

// newTestDB 每个测试一个独立的内存 SQLite 库，互不串表
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// busy_timeout 让并发事务排队等锁而不是立刻报 database is locked
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := mysql.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *user.User {
	t.Helper()
	u := &user.User{Email: email, Password: "x", Salt: "x"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64) *product.Product {
	t.Helper()
	p := &product.Product{Name: name, Price: price, Stock: 10, Status: product.StatusOnline}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}

func seedCartItem(t *testing.T, db *gorm.DB, userID, productID, qty int64) {
	t.Helper()
	it := &cart.Item{UserID: userID, ProductID: productID, Quantity: qty}
	if err := db.Create(it).Error; err != nil {
		t.Fatalf("failed to seed cart item: %v", err)
	}
}
