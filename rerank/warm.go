package rerank

import (
	"context"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/pipeline"
	"github.com/rushteam/pizzakit/pkg/utils"
)

// WarmNode 是天冷重排节点：天冷时段如果榜首不是暖胃款，
// 且候选中存在暖胃款，就把第一款暖胃披萨提到榜首。
// - 写入 labels：weather_override
// 天不冷、榜首已是暖胃款、或候选中没有暖胃款时不做任何调整。
type WarmNode struct {
	// Items 是暖胃披萨名单
	Items []string
}

func (n *WarmNode) Name() string {
	return "rerank.warm"
}

func (n *WarmNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

// IsWarm 判断披萨是否在暖胃名单中。
func (n *WarmNode) IsWarm(name string) bool {
	for _, w := range n.Items {
		if w == name {
			return true
		}
	}
	return false
}

func (n *WarmNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || !rctx.Now.IsCold || len(items) == 0 {
		return items, nil
	}
	if items[0] != nil && n.IsWarm(items[0].ID) {
		return items, nil
	}

	for i, it := range items {
		if it == nil || !n.IsWarm(it.ID) {
			continue
		}
		it.PutLabel("weather_override", utils.Label{
			Value:  "It's cold! How about something warm?",
			Source: "rerank.warm",
		})
		// 提到榜首，其余顺序不变
		promoted := it
		copy(items[1:i+1], items[:i])
		items[0] = promoted
		return items, nil
	}

	return items, nil
}
