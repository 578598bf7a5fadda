package product

import (
	"context"
	"time"
)

// 商品上下架状态
const (
	StatusOffline = 0 // 下架
	StatusOnline  = 1 // 正常在售
)

// Product 商品模型
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	Price       int64     `gorm:"not null" json:"price"` // 分
	Stock       int64     `gorm:"not null" json:"stock"`
	Status      int       `gorm:"index" json:"status"` // 0:下架 1:正常
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	ListOnline(ctx context.Context) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
