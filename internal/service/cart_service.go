package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/turcoaput2/delanna-store/internal/datamodels/cart"
	"github.com/turcoaput2/delanna-store/internal/datamodels/product"
)

// CartLine 渲染购物车页面用的行视图：购物车行 + 商品信息 + 小计
type CartLine struct {
	ProductID int64            `json:"product_id"`
	Product   *product.Product `json:"product"`
	Quantity  int64            `json:"quantity"`
	Subtotal  int64            `json:"subtotal"` // 分
}

// CartService 购物车读写
type CartService struct {
	carts    cart.Repository
	products product.Repository
}

// NewCartService 创建购物车服务
func NewCartService(carts cart.Repository, products product.Repository) *CartService {
	return &CartService{carts: carts, products: products}
}

// Add 加购。已有同商品的行则数量累加，否则新建一行
func (s *CartService) Add(ctx context.Context, userID, productID, delta int64) error {
	if delta <= 0 {
		delta = 1
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product_id=%d", ErrProductNotFound, productID)
		}
		return err
	}
	return s.carts.Upsert(ctx, userID, productID, delta)
}

// SetQuantity 改数量，qty <= 0 等价于删行
func (s *CartService) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	return s.carts.SetQuantity(ctx, userID, productID, qty)
}

// Remove 删行，行不存在也不报错
func (s *CartService) Remove(ctx context.Context, userID, productID int64) error {
	return s.carts.Remove(ctx, userID, productID)
}

// Clear 清空该用户的购物车
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.carts.Clear(ctx, userID)
}

// Lines 返回购物车页面数据和按现价算的合计。
// 商品已被后台删除的行在页面上直接略过不展示；真正的兜底在结算里，
// 那边遇到缺失商品会让整单失败而不是少算钱。
func (s *CartService) Lines(ctx context.Context, userID int64) ([]CartLine, int64, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	lines := make([]CartLine, 0, len(items))
	var total int64
	for _, it := range items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, 0, err
		}
		sub := it.Quantity * p.Price
		total += sub
		lines = append(lines, CartLine{
			ProductID: p.ID,
			Product:   p,
			Quantity:  it.Quantity,
			Subtotal:  sub,
		})
	}
	return lines, total, nil
}
