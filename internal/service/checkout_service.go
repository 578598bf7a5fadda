package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/turcoaput2/delanna-store/internal/datamodels/cart"
	"github.com/turcoaput2/delanna-store/internal/datamodels/order"
	"github.com/turcoaput2/delanna-store/internal/datamodels/product"
)

const orderEventsQueue = "order_events"

// OrderCreatedMessage 结算成功后投递到 MQ 的事件，通知 worker 消费
type OrderCreatedMessage struct {
	OrderID int64  `json:"order_id"`
	OrderNo string `json:"order_no"`
	UserID  int64  `json:"user_id"`
	Total   int64  `json:"total"`
}

// CheckoutService 把用户购物车一次性结算成订单。
// 订单行、订单头、清空购物车在同一个数据库事务里完成，要么全部落库要么全不落。
type CheckoutService struct {
	db     *gorm.DB
	mqConn *amqp.Connection // 可为 nil（测试环境），结算本身不依赖 MQ
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(db *gorm.DB, mqConn *amqp.Connection) *CheckoutService {
	return &CheckoutService{db: db, mqConn: mqConn}
}

// Checkout 结算当前购物车，返回新建订单。
// 空购物车返回 ErrEmptyCart；购物车里引用的商品已被删除则整体失败返回
// ErrProductNotFound，绝不悄悄跳过该行少收钱。并发冲突时整体重试一次，
// 第二次要么成功要么看到已被对方清空的购物车。
func (s *CheckoutService) Checkout(ctx context.Context, userID int64) (*order.Order, error) {
	GetMonitor().RecordCheckoutRequest()

	o, err := s.checkoutOnce(ctx, userID)
	if errors.Is(err, ErrConcurrencyConflict) {
		GetMonitor().RecordCheckoutConflict()
		o, err = s.checkoutOnce(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	GetMonitor().RecordCheckoutSuccess()
	// 事务已提交，事件投递只是尽力而为，失败不回滚订单
	if pubErr := s.publishOrderCreated(ctx, o); pubErr != nil {
		GetMonitor().RecordMQError()
	}
	return o, nil
}

func (s *CheckoutService) checkoutOnce(ctx context.Context, userID int64) (*order.Order, error) {
	var created *order.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁定用户的购物车行，它们是本次结算的争用单元
		q := tx.Where("user_id = ?", userID).Order("id")
		if tx.Dialector.Name() == "mysql" {
			// SQLite（测试用）不支持 FOR UPDATE，靠下面的删除行数校验兜底
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var lines []*cart.Item
		if err := q.Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// 2) 逐行取商品现价并快照，商品缺失则整单失败
		var total int64
		items := make([]order.Item, 0, len(lines))
		for _, line := range lines {
			var p product.Product
			if err := tx.First(&p, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product_id=%d", ErrProductNotFound, line.ProductID)
				}
				return err
			}
			total += line.Quantity * p.Price
			items = append(items, order.Item{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				Price:     p.Price, // 快照价，之后调价不追溯
			})
		}

		// 3) 创建订单头
		o := &order.Order{
			OrderNo: uuid.NewString(),
			UserID:  userID,
			Total:   total,
			Status:  order.StatusPending,
		}
		if err := tx.Create(o).Error; err != nil {
			return err
		}

		// 4) 批量创建订单行
		for i := range items {
			items[i].OrderID = o.ID
		}
		if err := tx.CreateInBatches(&items, len(items)).Error; err != nil {
			return err
		}
		o.Items = items

		// 5) 清空购物车。删除行数必须等于本事务读到的行数，
		// 否则说明有并发结算动过这些行，整个事务作废重来
		res := tx.Where("user_id = ?", userID).Delete(&cart.Item{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(lines)) {
			return ErrConcurrencyConflict
		}

		created = o
		return nil
	})
	if err != nil {
		if isConflictErr(err) {
			return nil, ErrConcurrencyConflict
		}
		if errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		GetMonitor().RecordDBError()
		return nil, err
	}
	return created, nil
}

// isConflictErr 把各方言的死锁/锁等待错误归一成并发冲突
func isConflictErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConcurrencyConflict) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock wait timeout") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

func (s *CheckoutService) publishOrderCreated(ctx context.Context, o *order.Order) error {
	if s.mqConn == nil {
		return nil
	}

	ch, err := s.mqConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(orderEventsQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(&OrderCreatedMessage{
		OrderID: o.ID,
		OrderNo: o.OrderNo,
		UserID:  o.UserID,
		Total:   o.Total,
	})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		orderEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
