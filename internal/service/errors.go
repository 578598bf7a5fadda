package service

import "errors"

// 业务错误，调用方用 errors.Is 判别后决定提示文案
var (
	// ErrEmptyCart 空购物车不能结算，不产生任何写入
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductNotFound 购物车行引用的商品已不在目录中，结算必须整体失败而不是悄悄少算
	ErrProductNotFound = errors.New("product not found")
	// ErrConcurrencyConflict 同一用户并发结算撞车，属瞬时错误，整个调用重试一次是安全的
	ErrConcurrencyConflict = errors.New("concurrent checkout conflict")
)
