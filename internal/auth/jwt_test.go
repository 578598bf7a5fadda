package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turcoaput2/delanna-store/internal/auth"
	"github.com/turcoaput2/delanna-store/internal/config"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "unit-test-secret"}

	token, err := auth.GenerateToken(cfg, 42, "user@example.com", true)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := auth.ParseToken(cfg, token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)

	// 换个密钥解不开
	_, err = auth.ParseToken(&config.JWTConfig{Secret: "other"}, token)
	assert.Error(t, err)
}

func TestConsistentHashRing(t *testing.T) {
	ring := auth.NewConsistentHashRing([]string{"n1", "n2", "n3"}, 50)

	// 同一个 key 总是落到同一个节点
	first := ring.GetNode("some-token")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ring.GetNode("some-token"))
	}
	assert.Contains(t, ring.Nodes(), first)
	assert.Equal(t, []string{"n1", "n2", "n3"}, ring.Nodes())

	// 空节点列表退化为默认节点而不是空环
	empty := auth.NewConsistentHashRing(nil, 0)
	assert.NotEmpty(t, empty.GetNode("anything"))
}
