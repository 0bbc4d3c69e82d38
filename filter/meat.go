package filter

import (
	"context"
	"strings"

	"github.com/rushteam/pizzakit/core"
)

// meatKeywords 是肉类配料关键词（与菜单语言一致，小写子串匹配）。
var meatKeywords = []string{
	"pepperoni",
	"calabresa",
	"frango",
	"presunto",
	"bacon",
	"carne",
	"salsicha",
}

// ContainsMeat 判断配料文本是否包含任一肉类关键词（大小写不敏感）。
func ContainsMeat(ingredients string) bool {
	lower := strings.ToLower(ingredients)
	for _, kw := range meatKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsVegetarian 根据历史订单判断顾客是否是素食者：
// 全部历史配料都不含肉类关键词则视为素食。空历史同样返回 true。
func IsVegetarian(orders []core.Order) bool {
	for _, o := range orders {
		if ContainsMeat(o.Ingredients) {
			return false
		}
	}
	return true
}

// VegetarianOrders 返回历史中不含肉类配料的订单（保持原始顺序）。
func VegetarianOrders(orders []core.Order) []core.Order {
	out := make([]core.Order, 0, len(orders))
	for _, o := range orders {
		if !ContainsMeat(o.Ingredients) {
			out = append(out, o)
		}
	}
	return out
}

// MeatFilter 是肉类过滤器：当顾客被判定为素食者时，
// 过滤掉配料含肉的披萨。配料通过菜单目录查询。
type MeatFilter struct {
	// Catalog 用于查询披萨配料
	Catalog core.Catalog

	// Orders 用于读取顾客历史判断素食画像
	Orders core.OrderStore
}

func (f *MeatFilter) Name() string {
	return "filter.meat"
}

func (f *MeatFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil || rctx.CustomerID == 0 || f.Orders == nil || f.Catalog == nil {
		return false, nil
	}

	history, err := f.Orders.ReadByCustomer(ctx, rctx.CustomerID)
	if err != nil || len(history) == 0 {
		// 无历史或读取失败时不做饮食过滤
		return false, nil
	}
	if !IsVegetarian(history) {
		return false, nil
	}

	mi, ok := f.Catalog.Lookup(item.ID)
	if !ok {
		return false, nil
	}
	return ContainsMeat(mi.Ingredients), nil
}
