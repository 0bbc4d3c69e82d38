package recommend

import (
	"context"
	"fmt"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/filter"
	"github.com/rushteam/pizzakit/recall"
)

// Heuristic 是启发式推荐器：不依赖训练好的模型，
// 按固定策略顺序（相似口味 → 个人历史 → 情境热门 → 兜底）选出披萨，
// 再做素食画像改写和天冷改写。除持久层读失败外永不失败，
// 总是返回菜单内的有效披萨和解释文案。
type Heuristic struct {
	Orders  core.OrderStore
	Catalog core.Catalog

	// Context 为空时按当前时间 + ScheduleColdSignal 构造情境。
	Context *core.ContextProvider

	// Similar 为空时使用默认 Top-3 相似顾客引擎。
	Similar *recall.SimilarCustomers

	// Cache 可选：透传给情境热门召回源做短 TTL 缓存。
	Cache core.Store

	// WarmItems 是天冷改写的暖胃名单。
	WarmItems []string
}

// Recommend 为指定顾客（0 表示匿名）生成一条推荐。
// 返回错误仅当订单历史读取失败（PERSISTENCE）。
func (h *Heuristic) Recommend(ctx context.Context, customerID int64) (*core.Recommendation, error) {
	orders, err := h.Orders.ReadAll(ctx)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodePersistence,
			fmt.Sprintf("recommend: read orders: %v", err))
	}

	rctx := &core.RecommendContext{
		CustomerID: customerID,
		Now:        h.currentContext(),
	}

	if len(orders) == 0 {
		item, reason := h.fallback(ctx, rctx)
		return finish(h.Catalog, item, "No orders yet. "+reason), nil
	}

	choice, reason := h.choose(ctx, rctx, orders)

	// 素食画像改写：顾客全部历史不含肉才算素食，空历史同样算。
	// 候选池默认是全部历史，素食顾客收缩为无肉历史。
	pool := orders
	if customerID != 0 && filter.IsVegetarian(recall.ByCustomer(orders, customerID)) {
		pool = filter.VegetarianOrders(orders)
		if !poolContains(pool, choice) && len(pool) > 0 {
			choice = pool[0].Item
			reason = "Adapted to your vegetarian profile."
		}
	}

	// 天冷改写：候选池里有暖胃款才改，改写取池中第一款暖胃披萨。
	if rctx.Now.IsCold && !h.isWarm(choice) {
		for _, o := range pool {
			if h.isWarm(o.Item) {
				choice = o.Item
				reason += " It's cold! How about something warm?"
				break
			}
		}
	}

	return finish(h.Catalog, choice, reason), nil
}

// choose 执行主策略链，返回披萨名和解释文案。
func (h *Heuristic) choose(ctx context.Context, rctx *core.RecommendContext, orders []core.Order) (string, string) {
	static := recall.StaticOrders(orders)
	mine := recall.ByCustomer(orders, rctx.CustomerID)

	if rctx.CustomerID != 0 && len(mine) > 0 {
		engine := h.Similar
		if engine == nil {
			engine = &recall.SimilarCustomers{}
		}
		// 相似度向量化只做一遍，窗口统计复用 Find 的结果
		similar := engine.Find(orders, rctx.CustomerID)

		if len(similar) > 0 {
			if items := recall.SimilarWindow(orders, similar, rctx.Now); len(items) > 0 {
				return items[0].ID, "Customers with similar taste ordered this!"
			}
			// 相似顾客在窗口内没有订单：退回个人最高频
			src := &recall.PersonalHistory{Orders: static}
			if items, _ := src.Recall(ctx, rctx); len(items) > 0 {
				return items[0].ID, labelReason(items[0])
			}
		}

		// 没有相似顾客：个人最高频，换一个口吻
		item, count := recall.MostFrequentItem(mine)
		return item, fmt.Sprintf("You always order this! (%dx)", count)
	}

	// 匿名或无历史顾客：情境热门，窗口为空时兜底
	src := &recall.PopularNow{Orders: static, Cache: h.Cache}
	if items, _ := src.Recall(ctx, rctx); len(items) > 0 {
		return items[0].ID, labelReason(items[0])
	}
	return h.fallback(ctx, rctx)
}

// fallback 返回确定性兜底披萨（菜单首项或运营推位）。
func (h *Heuristic) fallback(ctx context.Context, rctx *core.RecommendContext) (string, string) {
	src := &recall.Fallback{Catalog: h.Catalog, Store: h.Cache, Key: "promoted:items"}
	if items, _ := src.Recall(ctx, rctx); len(items) > 0 {
		return items[0].ID, labelReason(items[0])
	}
	return "", "Our signature suggestion!"
}

// finish 补全配料清单。披萨不在菜单里时退回菜单首项，保证返回始终有效。
func finish(catalog core.Catalog, item, reason string) *core.Recommendation {
	mi, ok := catalog.Lookup(item)
	if !ok {
		items := catalog.Items()
		if len(items) == 0 {
			return &core.Recommendation{Item: item, Ingredients: []string{}, Reason: reason}
		}
		mi = items[0]
	}
	return &core.Recommendation{
		Item:        mi.Name,
		Ingredients: mi.IngredientList(),
		Reason:      reason,
	}
}

func (h *Heuristic) currentContext() core.OrderContext {
	if h.Context != nil {
		return h.Context.Current()
	}
	p := &core.ContextProvider{}
	return p.Current()
}

func (h *Heuristic) isWarm(item string) bool {
	for _, w := range h.WarmItems {
		if w == item {
			return true
		}
	}
	return false
}

func poolContains(orders []core.Order, item string) bool {
	for _, o := range orders {
		if o.Item == item {
			return true
		}
	}
	return false
}

func labelReason(it *core.Item) string {
	if lbl, ok := it.GetLabel("reason"); ok {
		return lbl.Value
	}
	return ""
}
