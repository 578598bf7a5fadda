package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/turcoaput2/delanna-store/internal/auth"
	"github.com/turcoaput2/delanna-store/internal/config"
	"github.com/turcoaput2/delanna-store/internal/datamodels/order"
	"github.com/turcoaput2/delanna-store/internal/datamodels/product"
	"github.com/turcoaput2/delanna-store/internal/infra/redis"
	"github.com/turcoaput2/delanna-store/internal/repository/mysql"
	"github.com/turcoaput2/delanna-store/internal/service"
)

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台 Web 服务分离。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)

	// 仓储与服务
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	productSvc := service.NewProductService(productRepo, redisClient, cfg.CatalogCache.TTLSeconds)
	orderSvc := service.NewOrderService(orderRepo)

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	// 静态资源
	app.HandleDir("/assets", iris.Dir("./web/admin/assets"))
	app.Get("/", func(ctx iris.Context) {
		_ = ctx.ServeFile("./web/admin/index.html")
	})

	api := app.Party("/api")

	// 后台登录：只有 is_admin 用户能拿到 token
	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		token, err := userSvc.AdminLogin(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid admin credentials"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token}})
	})

	// 其余接口都要求管理员身份
	adminAPI := api.Party("/", func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}
		claims, ok, err := tokenCache.Get(ctx.Request().Context(), token)
		if err != nil || !ok {
			claims, err = auth.ParseToken(&cfg.JWT, token)
			if err != nil {
				ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
				return
			}
			_ = tokenCache.Set(ctx.Request().Context(), token, claims)
		}
		if !claims.IsAdmin {
			ctx.StopWithJSON(403, iris.Map{"code": 403, "msg": "admin only"})
			return
		}
		ctx.Values().Set("user_id", claims.UserID)
		ctx.Next()
	})

	// ---------- 商品管理 ----------

	// 商品列表（后台用：返回所有商品，含下架）
	adminAPI.Get("/products", func(ctx iris.Context) {
		list, err := productSvc.ListAll(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 创建商品
	adminAPI.Post("/products", func(ctx iris.Context) {
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p := &product.Product{}
		if err := req.applyTo(p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := productSvc.Create(ctx.Request().Context(), p); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// 更新商品。历史订单里的快照价不受这里调价影响
	adminAPI.Put("/products/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		p, err := productSvc.GetByID(ctx.Request().Context(), int64(id))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
			return
		}
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := req.applyTo(p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := productSvc.Update(ctx.Request().Context(), p); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// 删除商品。已下的订单不受影响，但还留在购物车里的行会让结算整单失败
	adminAPI.Delete("/products/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		if err := productSvc.Delete(ctx.Request().Context(), int64(id)); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})

	// ---------- 订单管理 ----------

	// 最近订单列表
	adminAPI.Get("/orders", func(ctx iris.Context) {
		limitStr := ctx.URLParamDefault("limit", "20")
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			limit = 20
		}
		list, err := orderSvc.ListRecent(ctx.Request().Context(), limit)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 改单状态，只放行 pending -> paid -> shipped
	adminAPI.Put("/orders/{id:uint64}/status", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := orderSvc.UpdateStatus(ctx.Request().Context(), int64(id), req.Status); err != nil {
			if errors.Is(err, order.ErrInvalidStatusTransition) {
				ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
				return
			}
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": fmt.Sprintf("order %d -> %s", id, req.Status)})
	})

	// ---------- 用户管理 ----------

	adminAPI.Get("/users", func(ctx iris.Context) {
		list, err := userSvc.ListAll(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		out := make([]iris.Map, 0, len(list))
		for _, u := range list {
			out = append(out, iris.Map{
				"id":         u.ID,
				"email":      u.Email,
				"is_admin":   u.IsAdmin,
				"created_at": u.CreatedAt,
			})
		}
		ctx.JSON(iris.Map{"code": 0, "data": out})
	})

	// ---------- 监控 ----------

	adminAPI.Get("/monitor", func(ctx iris.Context) {
		stats := service.GetMonitor().Snapshot()
		stats["auth_nodes"] = ring.Nodes()
		ctx.JSON(iris.Map{"code": 0, "data": stats})
	})
}

// ---- 辅助结构与函数 ----

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Price       int64  `json:"price"` // 分
	Stock       int64  `json:"stock"`
	Status      int    `json:"status"`
}

func (r *productRequest) applyTo(p *product.Product) error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Price < 0 {
		return fmt.Errorf("price must be non-negative")
	}
	if r.Stock < 0 {
		return fmt.Errorf("stock must be non-negative")
	}
	p.Name = r.Name
	p.Description = r.Description
	p.ImageURL = r.ImageURL
	p.Price = r.Price
	p.Stock = r.Stock
	p.Status = r.Status
	return nil
}
