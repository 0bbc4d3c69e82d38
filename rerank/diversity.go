package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/pipeline"
)

// Diversity 是一个简单的多样性 ReRank：按配料重合度去同质化。
// 当一款披萨与已保留披萨的配料重合数超过 MaxShared 时跳过，
// 避免榜单里全是"同一套配料换个名字"。
type Diversity struct {
	// Catalog 用于查询披萨配料
	Catalog core.Catalog

	// MaxShared 是允许的最大配料重合数，默认 2
	MaxShared int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || n.Catalog == nil {
		return items, nil
	}

	maxShared := n.MaxShared
	if maxShared <= 0 {
		maxShared = 2
	}

	kept := make([]map[string]bool, 0, len(items))
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		ings := n.ingredientSet(it.ID)
		// 菜单查不到配料时不参与去重，直接保留
		if ings == nil {
			out = append(out, it)
			continue
		}

		tooSimilar := false
		for _, prev := range kept {
			if sharedCount(ings, prev) > maxShared {
				tooSimilar = true
				break
			}
		}
		if tooSimilar {
			continue
		}

		kept = append(kept, ings)
		out = append(out, it)
	}

	return out, nil
}

func (n *Diversity) ingredientSet(name string) map[string]bool {
	mi, ok := n.Catalog.Lookup(name)
	if !ok {
		return nil
	}
	set := make(map[string]bool)
	for _, ing := range core.SplitIngredients(mi.Ingredients) {
		set[strings.ToLower(ing)] = true
	}
	return set
}

func sharedCount(a, b map[string]bool) int {
	count := 0
	for ing := range a {
		if b[ing] {
			count++
		}
	}
	return count
}
