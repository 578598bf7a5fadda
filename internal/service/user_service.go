package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/turcoaput2/delanna-store/internal/auth"
	"github.com/turcoaput2/delanna-store/internal/config"
	"github.com/turcoaput2/delanna-store/internal/datamodels/user"
)

// 注册/登录相关错误
var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService 注册、登录与后台登录
type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

// NewUserService 创建用户服务
func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

func hashPassword(raw, salt string) string {
	h := sha256.Sum256([]byte(raw + salt))
	return hex.EncodeToString(h[:])
}

func newSalt() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// Register 注册新用户。邮箱小写归一，密码至少 8 位且两次输入需一致
func (s *UserService) Register(ctx context.Context, email, password, confirm string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u := &user.User{
		Email: email,
		Salt:  newSalt(),
	}
	u.Password = hashPassword(password, u.Salt)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 校验密码并签发 JWT
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return auth.GenerateToken(s.jwt, u.ID, u.Email, u.IsAdmin)
}

// AdminLogin 后台登录，普通用户凭证一律拒绝
func (s *UserService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	u, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	if !u.IsAdmin {
		return "", ErrInvalidCredentials
	}
	return auth.GenerateToken(s.jwt, u.ID, u.Email, u.IsAdmin)
}

// ListAll 所有用户（后台用）
func (s *UserService) ListAll(ctx context.Context) ([]*user.User, error) {
	return s.repo.ListAll(ctx)
}

func (s *UserService) authenticate(ctx context.Context, email, password string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if hashPassword(password, u.Salt) != u.Password {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
