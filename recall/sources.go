package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/pipeline"
	"github.com/rushteam/pizzakit/pkg/utils"
)

// SimilarTaste 是相似口味召回源：找到与目标顾客口味相近的顾客，
// 在情境窗口内统计他们点过的披萨，按频次降序返回。
// 目标顾客无历史、无相似顾客、或窗口内无订单时返回空。
type SimilarTaste struct {
	Orders OrdersReader
	Engine *SimilarCustomers
}

func (r *SimilarTaste) Name() string        { return "recall.similar_taste" }
func (r *SimilarTaste) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *SimilarTaste) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *SimilarTaste) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Orders == nil || rctx == nil || rctx.CustomerID == 0 {
		return nil, nil
	}
	orders, err := r.Orders.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	engine := r.Engine
	if engine == nil {
		engine = &SimilarCustomers{}
	}
	similar := engine.Find(orders, rctx.CustomerID)

	out := SimilarWindow(orders, similar, rctx.Now)
	for _, it := range out {
		it.PutLabel("recall_source", utils.Label{Value: "similar_taste", Source: "recall"})
		it.PutLabel("reason", utils.Label{Value: "Customers with similar taste ordered this!", Source: "recall"})
	}
	return out, nil
}

// PersonalHistory 是个人历史召回源：目标顾客自己点过的披萨按频次降序。
type PersonalHistory struct {
	Orders OrdersReader
}

func (r *PersonalHistory) Name() string        { return "recall.personal_history" }
func (r *PersonalHistory) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *PersonalHistory) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *PersonalHistory) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Orders == nil || rctx == nil || rctx.CustomerID == 0 {
		return nil, nil
	}
	orders, err := r.Orders.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	mine := ByCustomer(orders, rctx.CustomerID)
	out := RankByFrequency(mine)
	for _, it := range out {
		count := int(it.Score)
		it.PutLabel("recall_source", utils.Label{Value: "personal_history", Source: "recall"})
		it.PutLabel("repeat_count", utils.Label{Value: strconv.Itoa(count), Source: "recall"})
		it.PutLabel("reason", utils.Label{
			Value:  fmt.Sprintf("Based on your history. You ordered this %dx!", count),
			Source: "recall",
		})
	}
	return out, nil
}

// PopularNow 是情境热门召回源：统计情境窗口（同星期几、当前小时 ±2）内
// 全部订单的披萨频次。可选地把统计结果以短 TTL 缓存到 Store，
// 高峰期避免每个请求都重新扫一遍历史。
type PopularNow struct {
	Orders OrdersReader

	// Cache 为空时不缓存。key 形如 "popular:{weekday}:{hour}"。
	Cache    core.Store
	CacheTTL int // 秒，默认 60
}

func (r *PopularNow) Name() string        { return "recall.popular_now" }
func (r *PopularNow) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *PopularNow) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

type popularEntry struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

func (r *PopularNow) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Orders == nil || rctx == nil {
		return nil, nil
	}

	cacheKey := fmt.Sprintf("popular:%d:%d", int(rctx.Now.Weekday), rctx.Now.Hour)
	if r.Cache != nil {
		if data, err := r.Cache.Get(ctx, cacheKey); err == nil {
			var entries []popularEntry
			if json.Unmarshal(data, &entries) == nil {
				return r.toItems(entries), nil
			}
		}
	}

	orders, err := r.Orders.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	ranked := RankByFrequency(ContextWindow(orders, rctx.Now))

	if r.Cache != nil {
		entries := make([]popularEntry, 0, len(ranked))
		for _, it := range ranked {
			entries = append(entries, popularEntry{Item: it.ID, Count: int(it.Score)})
		}
		if data, err := json.Marshal(entries); err == nil {
			ttl := r.CacheTTL
			if ttl <= 0 {
				ttl = 60
			}
			// 缓存写失败不影响本次请求
			_ = r.Cache.Set(ctx, cacheKey, data, ttl)
		}
	}

	r.label(ranked)
	return ranked, nil
}

func (r *PopularNow) toItems(entries []popularEntry) []*core.Item {
	out := make([]*core.Item, 0, len(entries))
	for _, e := range entries {
		it := core.NewItem(e.Item)
		it.Score = float64(e.Count)
		out = append(out, it)
	}
	r.label(out)
	return out
}

func (r *PopularNow) label(items []*core.Item) {
	for _, it := range items {
		it.PutLabel("recall_source", utils.Label{Value: "popular_now", Source: "recall"})
		it.PutLabel("reason", utils.Label{Value: "Popular today at this hour!", Source: "recall"})
	}
}

// Fallback 是确定性兜底召回源：
//   - 优先从 Store 读取运营推位列表（JSON 数组的披萨名）
//   - 否则返回菜单首项（"招牌推荐"）
//
// 该源永不为空、永不出错，是策略链的最后一环。
type Fallback struct {
	Catalog core.Catalog

	// Store / Key 可选：运营可通过 KV 配置推位列表
	Store core.Store
	Key   string
}

func (r *Fallback) Name() string        { return "recall.fallback" }
func (r *Fallback) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *Fallback) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Fallback) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	var names []string

	if r.Store != nil && r.Key != "" {
		if data, err := r.Store.Get(ctx, r.Key); err == nil {
			var parsed []string
			if json.Unmarshal(data, &parsed) == nil {
				names = parsed
			}
		}
	}

	if len(names) == 0 && r.Catalog != nil {
		items := r.Catalog.Items()
		if len(items) > 0 {
			names = []string{items[0].Name}
		}
	}

	out := make([]*core.Item, 0, len(names))
	for _, name := range names {
		it := core.NewItem(name)
		it.PutLabel("recall_source", utils.Label{Value: "fallback", Source: "recall"})
		it.PutLabel("reason", utils.Label{Value: "Our signature suggestion!", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
