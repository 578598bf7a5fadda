package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和结算吞吐
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	DBErrors    int64
	MQErrors    int64
	RedisErrors int64

	// 结算统计
	CheckoutRequests  int64
	CheckoutSuccess   int64
	CheckoutConflicts int64

	// 通知 worker 统计
	NotifyProcessed int64
	NotifyFailed    int64

	// 时间统计
	LastDBError      time.Time
	LastMQError      time.Time
	LastCheckoutTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordRedisError 记录Redis错误
func (m *Monitor) RecordRedisError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors++
}

// RecordCheckoutRequest 记录一次结算请求
func (m *Monitor) RecordCheckoutRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	m.LastCheckoutTime = time.Now()
}

// RecordCheckoutSuccess 记录结算成功
func (m *Monitor) RecordCheckoutSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutSuccess++
}

// RecordCheckoutConflict 记录结算并发冲突
func (m *Monitor) RecordCheckoutConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutConflicts++
}

// RecordNotifyProcessed 记录通知 worker 处理成功
func (m *Monitor) RecordNotifyProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyProcessed++
}

// RecordNotifyFailed 记录通知 worker 处理失败
func (m *Monitor) RecordNotifyFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyFailed++
}

// Snapshot 拷贝一份当前统计，供后台接口输出
func (m *Monitor) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]interface{}{
		"db_errors":          m.DBErrors,
		"mq_errors":          m.MQErrors,
		"redis_errors":       m.RedisErrors,
		"checkout_requests":  m.CheckoutRequests,
		"checkout_success":   m.CheckoutSuccess,
		"checkout_conflicts": m.CheckoutConflicts,
		"notify_processed":   m.NotifyProcessed,
		"notify_failed":      m.NotifyFailed,
		"last_db_error":      m.LastDBError,
		"last_mq_error":      m.LastMQError,
		"last_checkout":      m.LastCheckoutTime,
	}
}
