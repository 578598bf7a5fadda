package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turcoaput2/delanna-store/internal/datamodels/cart"
	"github.com/turcoaput2/delanna-store/internal/datamodels/order"
	"github.com/turcoaput2/delanna-store/internal/datamodels/product"
	"github.com/turcoaput2/delanna-store/internal/service"
)

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("computes total and snapshots prices", func(t *testing.T) {
		db := newTestDB(t)
		u := seedUser(t, db, "buyer@example.com")
		pa := seedProduct(t, db, "Product A", 1000)
		pb := seedProduct(t, db, "Product B", 500)
		seedCartItem(t, db, u.ID, pa.ID, 2)
		seedCartItem(t, db, u.ID, pb.ID, 1)

		svc := service.NewCheckoutService(db, nil)
		o, err := svc.Checkout(ctx, u.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(2500), o.Total)
		assert.Equal(t, order.StatusPending, o.Status)
		assert.NotEmpty(t, o.OrderNo)
		assert.Len(t, o.Items, 2)
		assert.Equal(t, int64(1000), o.Items[0].Price)
		assert.Equal(t, int64(2), o.Items[0].Quantity)
		assert.Equal(t, int64(500), o.Items[1].Price)
		assert.Equal(t, int64(1), o.Items[1].Quantity)

		// 总价恒等于订单行 quantity*price 之和
		var sum int64
		for _, it := range o.Items {
			sum += it.Quantity * it.Price
		}
		assert.Equal(t, o.Total, sum)

		// 购物车被清空
		var cartCount int64
		db.Model(&cart.Item{}).Where("user_id = ?", u.ID).Count(&cartCount)
		assert.Equal(t, int64(0), cartCount)

		// 结算不动库存
		var paNow product.Product
		db.First(&paNow, pa.ID)
		assert.Equal(t, int64(10), paNow.Stock)

		// 商品调价不追溯历史订单
		paNow.Price = 1200
		db.Save(&paNow)
		var stored order.Order
		db.Preload("Items").First(&stored, o.ID)
		assert.Equal(t, int64(2500), stored.Total)
		assert.Equal(t, int64(1000), stored.Items[0].Price)

		// 商品删除也不影响已有订单
		db.Delete(&product.Product{}, pa.ID)
		db.Preload("Items").First(&stored, o.ID)
		assert.Equal(t, int64(2500), stored.Total)
		assert.Equal(t, int64(1000), stored.Items[0].Price)
	})

	t.Run("empty cart fails without side effects", func(t *testing.T) {
		db := newTestDB(t)
		u := seedUser(t, db, "empty@example.com")
		seedProduct(t, db, "Product A", 1000)

		svc := service.NewCheckoutService(db, nil)
		_, err := svc.Checkout(ctx, u.ID)
		assert.ErrorIs(t, err, service.ErrEmptyCart)

		var orders, items int64
		db.Model(&order.Order{}).Count(&orders)
		db.Model(&order.Item{}).Count(&items)
		assert.Equal(t, int64(0), orders)
		assert.Equal(t, int64(0), items)
	})

	t.Run("missing product aborts the whole transaction", func(t *testing.T) {
		db := newTestDB(t)
		u := seedUser(t, db, "stale@example.com")
		pa := seedProduct(t, db, "Product A", 1000)
		pb := seedProduct(t, db, "Product B", 500)
		seedCartItem(t, db, u.ID, pa.ID, 1)
		seedCartItem(t, db, u.ID, pb.ID, 3)

		// 加购后商品 B 被后台删掉
		db.Delete(&product.Product{}, pb.ID)

		svc := service.NewCheckoutService(db, nil)
		_, err := svc.Checkout(ctx, u.ID)
		assert.ErrorIs(t, err, service.ErrProductNotFound)

		// 不许只按剩下的行少收钱：订单表没有任何残留
		var orders, items int64
		db.Model(&order.Order{}).Count(&orders)
		db.Model(&order.Item{}).Count(&items)
		assert.Equal(t, int64(0), orders)
		assert.Equal(t, int64(0), items)

		// 购物车原封不动
		var cartCount int64
		db.Model(&cart.Item{}).Where("user_id = ?", u.ID).Count(&cartCount)
		assert.Equal(t, int64(2), cartCount)
	})

	t.Run("second checkout sees an empty cart", func(t *testing.T) {
		db := newTestDB(t)
		u := seedUser(t, db, "twice@example.com")
		pa := seedProduct(t, db, "Product A", 1000)
		seedCartItem(t, db, u.ID, pa.ID, 1)

		svc := service.NewCheckoutService(db, nil)
		o, err := svc.Checkout(ctx, u.ID)
		assert.NoError(t, err)

		_, err = svc.Checkout(ctx, u.ID)
		assert.ErrorIs(t, err, service.ErrEmptyCart)

		// 不会重复扣单
		var orders int64
		db.Model(&order.Order{}).Where("user_id = ?", u.ID).Count(&orders)
		assert.Equal(t, int64(1), orders)

		var stored order.Order
		db.First(&stored, o.ID)
		assert.Equal(t, int64(1000), stored.Total)
	})

	t.Run("concurrent checkouts never both succeed", func(t *testing.T) {
		db := newTestDB(t)
		u := seedUser(t, db, "race@example.com")
		pa := seedProduct(t, db, "Product A", 1000)
		seedCartItem(t, db, u.ID, pa.ID, 2)

		svc := service.NewCheckoutService(db, nil)

		var wg sync.WaitGroup
		results := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = svc.Checkout(ctx, u.ID)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
				continue
			}
			// 输掉的那个要么看到空车，要么报并发冲突，绝不能也下单成功
			assert.True(t,
				errors.Is(err, service.ErrEmptyCart) || errors.Is(err, service.ErrConcurrencyConflict),
				"unexpected error: %v", err)
		}
		assert.Equal(t, 1, succeeded)

		var orders int64
		db.Model(&order.Order{}).Where("user_id = ?", u.ID).Count(&orders)
		assert.Equal(t, int64(1), orders)

		var cartCount int64
		db.Model(&cart.Item{}).Where("user_id = ?", u.ID).Count(&cartCount)
		assert.Equal(t, int64(0), cartCount)
	})
}
