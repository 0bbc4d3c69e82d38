package recall

import (
	"context"

	"github.com/rushteam/pizzakit/core"
)

// Source 表示一个可复用的召回源（相似口味/个人历史/情境热门/兜底/...）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// OrdersReader 是召回源读取订单历史的最小接口。
// core.OrderStore 天然满足；请求内已加载的历史可用 StaticOrders 包装，
// 避免同一次推荐重复读库。
type OrdersReader interface {
	ReadAll(ctx context.Context) ([]core.Order, error)
}

// StaticOrders 把内存中的订单切片包装成 OrdersReader。
type StaticOrders []core.Order

func (s StaticOrders) ReadAll(_ context.Context) ([]core.Order, error) {
	return s, nil
}
