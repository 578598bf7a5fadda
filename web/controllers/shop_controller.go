package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/turcoaput2/delanna-store/internal/service"
)

// ShopController 负责前台商城页面：首页、购物车、订单列表与确认页。
type ShopController struct {
	productService *service.ProductService
	cartService    *service.CartService
	orderService   *service.OrderService
}

// NewShopController 构造函数，供路由层复用同一套逻辑。
func NewShopController(productSvc *service.ProductService, cartSvc *service.CartService, orderSvc *service.OrderService) *ShopController {
	return &ShopController{
		productService: productSvc,
		cartService:    cartSvc,
		orderService:   orderSvc,
	}
}

// Index 首页商品列表。
func (c *ShopController) Index(ctx iris.Context) {
	products, err := c.productService.ListOnline(ctx.Request().Context())
	if err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载商品列表，请稍后重试。</h2>")
		return
	}
	if err := ctx.View("shop/index.html", iris.Map{"products": products}); err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载首页，请稍后重试。</h2>")
	}
}

// CartPage 购物车页面，展示各行小计和按现价算的合计。
func (c *ShopController) CartPage(ctx iris.Context) {
	userID := ctx.Values().GetInt64Default("user_id", 0)
	lines, total, err := c.cartService.Lines(ctx.Request().Context(), userID)
	if err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载购物车，请稍后重试。</h2>")
		return
	}
	if err := ctx.View("shop/cart.html", iris.Map{"lines": lines, "total": total}); err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载购物车页面，请稍后重试。</h2>")
	}
}

// OrdersPage 历史订单页。
func (c *ShopController) OrdersPage(ctx iris.Context) {
	userID := ctx.Values().GetInt64Default("user_id", 0)
	orders, err := c.orderService.ListByUser(ctx.Request().Context(), userID)
	if err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载订单，请稍后重试。</h2>")
		return
	}
	if err := ctx.View("orders/list.html", iris.Map{"orders": orders}); err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载订单页面，请稍后重试。</h2>")
	}
}

// ConfirmationPage 下单成功后的确认页，按订单号取单且只能看自己的。
func (c *ShopController) ConfirmationPage(ctx iris.Context) {
	no := ctx.Params().Get("no")
	userID := ctx.Values().GetInt64Default("user_id", 0)
	o, err := c.orderService.GetByNoForUser(ctx.Request().Context(), no, userID)
	if err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>订单不存在。</h2>")
		return
	}
	if err := ctx.View("orders/confirmation.html", iris.Map{"order": o}); err != nil {
		ctx.ContentType("text/html; charset=utf-8")
		_, _ = ctx.WriteString("<h2>无法加载确认页面，请稍后重试。</h2>")
	}
}
