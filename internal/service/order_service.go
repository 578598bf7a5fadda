package service

import (
	"context"
	"fmt"

	"github.com/turcoaput2/delanna-store/internal/datamodels/order"
)

// OrderService 订单查询与后台状态流转
type OrderService struct {
	repo order.Repository
}

// NewOrderService 创建订单服务
func NewOrderService(repo order.Repository) *OrderService {
	return &OrderService{repo: repo}
}

// ListByUser 查询用户自己的历史订单
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetByNoForUser 按订单号取单，只允许取本人的订单
func (s *OrderService) GetByNoForUser(ctx context.Context, orderNo string, userID int64) (*order.Order, error) {
	o, err := s.repo.GetByNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("order %s does not belong to user %d", orderNo, userID)
	}
	return o, nil
}

// ListRecent 查询最新的订单记录（后台用）
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	return s.repo.ListRecent(ctx, limit)
}

// UpdateStatus 后台改单状态，只放行 pending -> paid -> shipped 的单向流转。
// 其余一律返回 ErrInvalidStatusTransition，订单保持原状
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, to string) error {
	if !order.ValidStatus(to) {
		return fmt.Errorf("%w: unknown status %q", order.ErrInvalidStatusTransition, to)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", order.ErrInvalidStatusTransition, o.Status, to)
	}
	changed, err := s.repo.UpdateStatus(ctx, id, o.Status, to)
	if err != nil {
		return err
	}
	if !changed {
		// 读到的前置状态已被别的请求改走，按非法流转处理
		return fmt.Errorf("%w: order %d no longer in %s", order.ErrInvalidStatusTransition, id, o.Status)
	}
	return nil
}
