package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/turcoaput2/delanna-store/internal/auth"
	"github.com/turcoaput2/delanna-store/internal/config"
	"github.com/turcoaput2/delanna-store/internal/repository/mysql"
	"github.com/turcoaput2/delanna-store/internal/service"
)

func TestUserService(t *testing.T) {
	ctx := context.Background()
	jwtCfg := &config.JWTConfig{Secret: "test-secret"}

	newSvc := func(t *testing.T) (*service.UserService, *gorm.DB) {
		db := newTestDB(t)
		return service.NewUserService(mysql.NewUserRepository(db), jwtCfg), db
	}

	t.Run("register normalizes email and hashes password", func(t *testing.T) {
		svc, _ := newSvc(t)
		u, err := svc.Register(ctx, "  Shopper@Example.COM ", "password123", "password123")
		assert.NoError(t, err)
		assert.Equal(t, "shopper@example.com", u.Email)
		assert.NotEmpty(t, u.Salt)
		assert.NotEqual(t, "password123", u.Password)
	})

	t.Run("register validation", func(t *testing.T) {
		svc, _ := newSvc(t)

		_, err := svc.Register(ctx, "not-an-email", "password123", "password123")
		assert.ErrorIs(t, err, service.ErrInvalidEmail)

		_, err = svc.Register(ctx, "a@example.com", "short", "short")
		assert.ErrorIs(t, err, service.ErrPasswordTooShort)

		_, err = svc.Register(ctx, "a@example.com", "password123", "password124")
		assert.ErrorIs(t, err, service.ErrPasswordMismatch)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		svc, _ := newSvc(t)
		_, err := svc.Register(ctx, "dup@example.com", "password123", "password123")
		assert.NoError(t, err)

		_, err = svc.Register(ctx, "DUP@example.com", "password456", "password456")
		assert.ErrorIs(t, err, service.ErrEmailTaken)
	})

	t.Run("login round trip issues a valid token", func(t *testing.T) {
		svc, _ := newSvc(t)
		u, err := svc.Register(ctx, "login@example.com", "password123", "password123")
		assert.NoError(t, err)

		token, err := svc.Login(ctx, "login@example.com", "password123")
		assert.NoError(t, err)

		claims, err := auth.ParseToken(jwtCfg, token)
		assert.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
		assert.Equal(t, "login@example.com", claims.Email)
		assert.False(t, claims.IsAdmin)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		svc, _ := newSvc(t)
		_, err := svc.Register(ctx, "wrong@example.com", "password123", "password123")
		assert.NoError(t, err)

		_, err = svc.Login(ctx, "wrong@example.com", "nope-nope-nope")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = svc.Login(ctx, "ghost@example.com", "password123")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("admin login rejects regular users", func(t *testing.T) {
		svc, db := newSvc(t)
		_, err := svc.Register(ctx, "plain@example.com", "password123", "password123")
		assert.NoError(t, err)

		_, err = svc.AdminLogin(ctx, "plain@example.com", "password123")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)

		// 升级为管理员后放行
		db.Exec("UPDATE users SET is_admin = ? WHERE email = ?", true, "plain@example.com")
		token, err := svc.AdminLogin(ctx, "plain@example.com", "password123")
		assert.NoError(t, err)

		claims, err := auth.ParseToken(jwtCfg, token)
		assert.NoError(t, err)
		assert.True(t, claims.IsAdmin)
	})
}
