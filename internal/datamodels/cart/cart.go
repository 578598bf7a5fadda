package cart

import (
	"context"
	"time"
)

// Item 购物车行：每个 (user, product) 至多一行，重复加购只累加数量
type Item struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"` // 始终 > 0，降到 0 即删行
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository 购物车仓储接口
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]*Item, error)
	GetByUserProduct(ctx context.Context, userID, productID int64) (*Item, error)
	// Upsert 不存在则插入，存在则把数量累加 delta
	Upsert(ctx context.Context, userID, productID, delta int64) error
	SetQuantity(ctx context.Context, userID, productID, qty int64) error
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}
