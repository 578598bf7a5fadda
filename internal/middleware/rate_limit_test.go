package middleware_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turcoaput2/delanna-store/internal/middleware"
)

func TestTokenBucket(t *testing.T) {
	bucket := middleware.NewTokenBucket(3, 1)

	// 初始容量内的请求全部放行
	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())

	// 桶空后拒绝
	assert.False(t, bucket.Allow())
	assert.False(t, bucket.Allow())
}
