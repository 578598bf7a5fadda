package main

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/turcoaput2/delanna-store/internal/config"
	"github.com/turcoaput2/delanna-store/internal/datamodels/order"
	"github.com/turcoaput2/delanna-store/internal/datamodels/user"
	"github.com/turcoaput2/delanna-store/internal/infra/mq"
	"github.com/turcoaput2/delanna-store/internal/repository/mysql"
	"github.com/turcoaput2/delanna-store/internal/service"
)

const orderEventsQueue = "order_events"

func main() {
	cfg := config.DefaultConfig()

	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)

	userRepo := mysql.NewUserRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	ch, err := mqConn.Channel()
	if err != nil {
		log.Fatalf("failed to open channel: %v", err)
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(orderEventsQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("failed to declare queue: %v", err)
	}

	// 手动确认模式（auto-ack=false），处理失败可以重回队列
	msgs, err := ch.Consume(orderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("failed to consume: %v", err)
	}

	log.Println("notify worker started, waiting for order events...")

	ctx := context.Background()
	for d := range msgs {
		var m service.OrderCreatedMessage
		if err := json.Unmarshal(d.Body, &m); err != nil {
			log.Printf("invalid message: %v", err)
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}
		handleMessage(ctx, userRepo, orderRepo, &m, d)
	}
}

// handleMessage 给下单用户发确认通知。当前实现只写日志，
// 后续接入邮件/短信网关时替换这里即可。
func handleMessage(ctx context.Context, userRepo user.Repository, orderRepo order.Repository, m *service.OrderCreatedMessage, d amqp.Delivery) {
	o, err := orderRepo.GetByID(ctx, m.OrderID)
	if err != nil {
		log.Printf("get order %d failed: %v", m.OrderID, err)
		service.GetMonitor().RecordDBError()
		service.GetMonitor().RecordNotifyFailed()
		// 订单可能还没对本连接可见，重新入队稍后再试
		_ = d.Nack(false, true)
		return
	}

	u, err := userRepo.GetByID(ctx, m.UserID)
	if err != nil {
		log.Printf("get user %d failed: %v", m.UserID, err)
		service.GetMonitor().RecordDBError()
		service.GetMonitor().RecordNotifyFailed()
		_ = d.Nack(false, true)
		return
	}

	log.Printf("order confirmation: order_no=%s user=%s total=%d items=%d",
		o.OrderNo, u.Email, o.Total, len(o.Items))
	service.GetMonitor().RecordNotifyProcessed()

	if err := d.Ack(false); err != nil {
		log.Printf("failed to ack message: %v", err)
	}
}
