package order

import (
	"context"
	"errors"
	"time"
)

// 订单状态，只允许沿 pending -> paid -> shipped 单向流转
const (
	StatusPending = "pending" // 待支付
	StatusPaid    = "paid"    // 已支付
	StatusShipped = "shipped" // 已发货
)

// ErrInvalidStatusTransition 非法的状态流转
var ErrInvalidStatusTransition = errors.New("invalid order status transition")

// transitions 合法的 (from -> to) 流转表
var transitions = map[string]string{
	StatusPending: StatusPaid,
	StatusPaid:    StatusShipped,
}

// ValidStatus 判断是否为枚举内的状态值
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusPaid || s == StatusShipped
}

// CanTransition 判断 from -> to 是否合法，不允许跳级或回退
func CanTransition(from, to string) bool {
	return transitions[from] == to
}

// Order 订单模型。除 Status 外创建后不再变更，Total 为下单时一次性算定
type Order struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	OrderNo   string    `gorm:"uniqueIndex;size:64;not null" json:"order_no"` // 对外展示的订单号
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Total     int64     `gorm:"not null" json:"total"` // 分
	Status    string    `gorm:"size:20;index;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []Item `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// Item 订单行。Price 为下单时的快照价，之后商品调价或删除都不影响它
type Item struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	OrderID   int64     `gorm:"index;not null" json:"order_id"`
	ProductID int64     `gorm:"index;not null" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"` // 分，快照价
	CreatedAt time.Time `json:"created_at"`
}

// TableName 订单行表名
func (Item) TableName() string {
	return "order_items"
}

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByNo(ctx context.Context, orderNo string) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to string) (bool, error)
}
