package server

import (
	"errors"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/turcoaput2/delanna-store/internal/auth"
	"github.com/turcoaput2/delanna-store/internal/config"
	"github.com/turcoaput2/delanna-store/internal/infra/mq"
	"github.com/turcoaput2/delanna-store/internal/infra/redis"
	"github.com/turcoaput2/delanna-store/internal/middleware"
	"github.com/turcoaput2/delanna-store/internal/repository/mysql"
	"github.com/turcoaput2/delanna-store/internal/service"
	webcontrollers "github.com/turcoaput2/delanna-store/web/controllers"
)

// RegisterRoutes 注册前台商城的所有 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 静态资源
	app.HandleDir("/assets", iris.Dir("./web/assets"))

	// 仓储与服务
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	productSvc := service.NewProductService(productRepo, redisClient, cfg.CatalogCache.TTLSeconds)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo)
	checkoutSvc := service.NewCheckoutService(db, mqConn)

	// JWT 解析结果走 Redis 缓存，减少每个请求的签名计算
	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	// 从 cookie 或 Authorization 头解出当前用户，未登录返回 nil
	currentClaims := func(ctx iris.Context) *auth.Claims {
		token := ctx.GetCookie("token")
		if token == "" {
			token = ctx.GetHeader("Authorization")
		}
		if token == "" {
			return nil
		}
		if claims, ok, err := tokenCache.Get(ctx.Request().Context(), token); err == nil && ok {
			return claims
		}
		claims, err := auth.ParseToken(&cfg.JWT, token)
		if err != nil {
			return nil
		}
		_ = tokenCache.Set(ctx.Request().Context(), token, claims)
		return claims
	}

	// 页面用：未登录跳转登录页
	pageAuth := func(ctx iris.Context) {
		claims := currentClaims(ctx)
		if claims == nil {
			ctx.Redirect("/login", iris.StatusFound)
			return
		}
		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("email", claims.Email)
		ctx.Next()
	}

	// ---------------- 前台页面路由 ----------------

	shopController := webcontrollers.NewShopController(productSvc, cartSvc, orderSvc)
	userController := webcontrollers.NewUserController(userSvc)

	app.Get("/", shopController.Index)
	app.Get("/cart", pageAuth, shopController.CartPage)
	app.Get("/orders", pageAuth, shopController.OrdersPage)
	app.Get("/orders/{no:string}/confirmation", pageAuth, shopController.ConfirmationPage)

	app.Get("/login", userController.ShowLogin)
	app.Get("/register", userController.ShowRegister)
	app.Post("/user/login", userController.PostLogin)
	app.Post("/user/register", userController.PostRegister)
	app.Get("/user/logout", userController.Logout)

	// ---------------- JSON API ----------------

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"code": 0,
			"msg":  "ok",
		})
	})

	// 用户注册/登录
	api.Post("/register", func(ctx iris.Context) {
		var req struct {
			Email           string `json:"email"`
			Password        string `json:"password"`
			PasswordConfirm string `json:"password_confirm"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, err := userSvc.Register(ctx.Request().Context(), req.Email, req.Password, req.PasswordConfirm)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"id": u.ID, "email": u.Email}})
	})

	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		token, err := userSvc.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token}})
	})

	// 在售商品列表（无需登录）
	api.Get("/products", func(ctx iris.Context) {
		list, err := productSvc.ListOnline(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 需要登录的接口
	authAPI := api.Party("/", func(ctx iris.Context) {
		claims := currentClaims(ctx)
		if claims == nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing or invalid token"})
			return
		}
		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("email", claims.Email)
		ctx.Next()
	})

	// 购物车内容
	authAPI.Get("/cart", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		lines, total, err := cartSvc.Lines(ctx.Request().Context(), userID)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"lines": lines, "total": total}})
	})

	// 加购：同商品重复加购累加数量
	authAPI.Post("/cart/{id:uint64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetUint64("id")
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var req struct {
			Quantity int64 `json:"quantity"`
		}
		// 不带 body 时按 1 件处理
		_ = ctx.ReadJSON(&req)
		if err := cartSvc.Add(ctx.Request().Context(), userID, int64(pid), req.Quantity); err != nil {
			if errors.Is(err, service.ErrProductNotFound) {
				ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
				return
			}
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "added"})
	})

	// 改数量：0 或负数等价于删行
	authAPI.Put("/cart/{id:uint64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetUint64("id")
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var req struct {
			Quantity int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := cartSvc.SetQuantity(ctx.Request().Context(), userID, int64(pid), req.Quantity); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "updated"})
	})

	// 删行
	authAPI.Delete("/cart/{id:uint64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetUint64("id")
		userID := ctx.Values().GetInt64Default("user_id", 0)
		if err := cartSvc.Remove(ctx.Request().Context(), userID, int64(pid)); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "removed"})
	})

	// 清空购物车
	authAPI.Delete("/cart", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		if err := cartSvc.Clear(ctx.Request().Context(), userID); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "cleared"})
	})

	// 结算：整车转订单，全成或全不成
	authAPI.Post("/checkout", middleware.CheckoutRateLimit(), func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		o, err := checkoutSvc.Checkout(ctx.Request().Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyCart):
				ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "cart is empty"})
			case errors.Is(err, service.ErrProductNotFound):
				ctx.StopWithJSON(409, iris.Map{"code": 409, "msg": "cart references a removed product"})
			case errors.Is(err, service.ErrConcurrencyConflict):
				ctx.StopWithJSON(409, iris.Map{"code": 409, "msg": "checkout conflict, please retry"})
			default:
				ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			}
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{
			"order_id": o.ID,
			"order_no": o.OrderNo,
			"total":    o.Total,
			"status":   o.Status,
		}})
	})

	// 历史订单
	authAPI.Get("/orders", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		list, err := orderSvc.ListByUser(ctx.Request().Context(), userID)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 单个订单（只能看自己的）
	authAPI.Get("/orders/{no:string}", func(ctx iris.Context) {
		no := ctx.Params().Get("no")
		userID := ctx.Values().GetInt64Default("user_id", 0)
		o, err := orderSvc.GetByNoForUser(ctx.Request().Context(), no, userID)
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "order not found"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})
}
