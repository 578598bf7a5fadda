package service

import (
	"context"
	"encoding/json"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/turcoaput2/delanna-store/internal/datamodels/product"
)

const catalogCacheKey = "catalog:online"

// ProductService 商品读写。首页在售列表走 Redis 短缓存，后台写操作负责失效
type ProductService struct {
	repo            product.Repository
	redis           radix.Client // 可为 nil（测试环境），此时全部直查数据库
	cacheTTLSeconds int
}

// NewProductService 创建商品服务
func NewProductService(repo product.Repository, redis radix.Client, cacheTTLSeconds int) *ProductService {
	return &ProductService{repo: repo, redis: redis, cacheTTLSeconds: cacheTTLSeconds}
}

// ListOnline 在售商品列表，优先读缓存
func (s *ProductService) ListOnline(ctx context.Context) ([]*product.Product, error) {
	if s.redis != nil && s.cacheTTLSeconds > 0 {
		var raw string
		if err := s.redis.Do(radix.Cmd(&raw, "GET", catalogCacheKey)); err != nil {
			GetMonitor().RecordRedisError()
		} else if raw != "" {
			var list []*product.Product
			if err := json.Unmarshal([]byte(raw), &list); err == nil {
				return list, nil
			}
			// 缓存数据损坏，删掉走数据库
			_ = s.redis.Do(radix.Cmd(nil, "DEL", catalogCacheKey))
		}
	}

	list, err := s.repo.ListOnline(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil && s.cacheTTLSeconds > 0 {
		if body, err := json.Marshal(list); err == nil {
			if err := s.redis.Do(radix.FlatCmd(nil, "SETEX", catalogCacheKey, s.cacheTTLSeconds, body)); err != nil {
				GetMonitor().RecordRedisError()
			}
		}
	}
	return list, nil
}

// ListAll 所有商品（后台用）
func (s *ProductService) ListAll(ctx context.Context) ([]*product.Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, p *product.Product) error {
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *ProductService) Update(ctx context.Context, p *product.Product) error {
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *ProductService) invalidateCache() {
	if s.redis == nil {
		return
	}
	if err := s.redis.Do(radix.Cmd(nil, "DEL", catalogCacheKey)); err != nil {
		GetMonitor().RecordRedisError()
	}
}
