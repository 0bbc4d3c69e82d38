package core

import (
	"strings"
	"time"
)

// Order 是一条历史订单。由 OrderStore 拥有，创建后不可变
// （仅能通过显式的 Update / Delete 操作修改）。
type Order struct {
	ID            int64
	CustomerID    int64
	CustomerName  string
	CustomerPhone string
	PlacedAt      time.Time
	Item          string
	// Ingredients 是逗号拼接的配料文本（含加料），与菜单定义同构。
	Ingredients string
	Price       float64
}

// IngredientList 返回按原顺序拆分并去除首尾空白的配料名序列。
func (o Order) IngredientList() []string {
	return SplitIngredients(o.Ingredients)
}

// SplitIngredients 把逗号拼接的配料文本拆成干净的有序序列。
// 空项被丢弃，顺序保持不变。
func SplitIngredients(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// OrderPatch 是订单的部分更新。nil 字段表示不修改。
type OrderPatch struct {
	CustomerName  *string
	CustomerPhone *string
	Item          *string
	Ingredients   *string
	Price         *float64
}

// Empty 判断是否没有任何待更新字段。
func (p OrderPatch) Empty() bool {
	return p.CustomerName == nil && p.CustomerPhone == nil &&
		p.Item == nil && p.Ingredients == nil && p.Price == nil
}
