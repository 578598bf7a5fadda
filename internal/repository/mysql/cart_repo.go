package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/turcoaput2/delanna-store/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) ListByUser(ctx context.Context, userID int64) ([]*cart.Item, error) {
	var list []*cart.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *cartRepo) GetByUserProduct(ctx context.Context, userID, productID int64) (*cart.Item, error) {
	var it cart.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// Upsert 同一 (user, product) 冲突时累加数量，保证每对至多一行
func (r *cartRepo) Upsert(ctx context.Context, userID, productID, delta int64) error {
	it := cart.Item{UserID: userID, ProductID: productID, Quantity: delta}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", delta),
		}),
	}).Create(&it).Error
}

func (r *cartRepo) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	if qty <= 0 {
		return r.Remove(ctx, userID, productID)
	}
	return r.db.WithContext(ctx).
		Model(&cart.Item{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty).Error
}

// Remove 删除购物车行，行不存在时删 0 行，不算错误
func (r *cartRepo) Remove(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&cart.Item{}).Error
}

func (r *cartRepo) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&cart.Item{}).Error
}
