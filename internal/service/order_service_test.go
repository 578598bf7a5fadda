package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/turcoaput2/delanna-store/internal/datamodels/order"
	"github.com/turcoaput2/delanna-store/internal/repository/mysql"
	"github.com/turcoaput2/delanna-store/internal/service"
)

func seedOrder(t *testing.T, db *gorm.DB, userID int64, status string) *order.Order {
	t.Helper()
	o := &order.Order{OrderNo: uuid.NewString(), UserID: userID, Total: 1000, Status: status}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return o
}

func TestOrderStatusTransitions(t *testing.T) {
	ctx := context.Background()

	newSvc := func(t *testing.T) (*service.OrderService, *gorm.DB) {
		db := newTestDB(t)
		return service.NewOrderService(mysql.NewOrderRepository(db)), db
	}

	t.Run("forward path is allowed", func(t *testing.T) {
		svc, db := newSvc(t)
		u := seedUser(t, db, "admin@example.com")
		o := seedOrder(t, db, u.ID, order.StatusPending)

		assert.NoError(t, svc.UpdateStatus(ctx, o.ID, order.StatusPaid))
		var got order.Order
		db.First(&got, o.ID)
		assert.Equal(t, order.StatusPaid, got.Status)

		assert.NoError(t, svc.UpdateStatus(ctx, o.ID, order.StatusShipped))
		db.First(&got, o.ID)
		assert.Equal(t, order.StatusShipped, got.Status)
	})

	t.Run("skipping forward is rejected", func(t *testing.T) {
		svc, db := newSvc(t)
		u := seedUser(t, db, "admin2@example.com")
		o := seedOrder(t, db, u.ID, order.StatusPending)

		err := svc.UpdateStatus(ctx, o.ID, order.StatusShipped)
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

		var got order.Order
		db.First(&got, o.ID)
		assert.Equal(t, order.StatusPending, got.Status)
	})

	t.Run("going backward is rejected", func(t *testing.T) {
		svc, db := newSvc(t)
		u := seedUser(t, db, "admin3@example.com")
		o := seedOrder(t, db, u.ID, order.StatusShipped)

		err := svc.UpdateStatus(ctx, o.ID, order.StatusPaid)
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

		var got order.Order
		db.First(&got, o.ID)
		assert.Equal(t, order.StatusShipped, got.Status)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		svc, db := newSvc(t)
		u := seedUser(t, db, "admin4@example.com")
		o := seedOrder(t, db, u.ID, order.StatusPending)

		err := svc.UpdateStatus(ctx, o.ID, "cancelled")
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

		var got order.Order
		db.First(&got, o.ID)
		assert.Equal(t, order.StatusPending, got.Status)
	})

	t.Run("same status is not a transition", func(t *testing.T) {
		svc, db := newSvc(t)
		u := seedUser(t, db, "admin5@example.com")
		o := seedOrder(t, db, u.ID, order.StatusPaid)

		err := svc.UpdateStatus(ctx, o.ID, order.StatusPaid)
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})
}

func TestOrderOwnership(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := service.NewOrderService(mysql.NewOrderRepository(db))

	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")
	o := seedOrder(t, db, owner.ID, order.StatusPending)

	got, err := svc.GetByNoForUser(ctx, o.OrderNo, owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.GetByNoForUser(ctx, o.OrderNo, other.ID)
	assert.Error(t, err)
}
