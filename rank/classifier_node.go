package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/feature"
	"github.com/rushteam/pizzakit/model"
	"github.com/rushteam/pizzakit/pipeline"
	"github.com/rushteam/pizzakit/pkg/utils"
)

// ClassifierNode 是分类器打分 Node：
// 为每款候选披萨合成"当前顾客 + 当前上下文 + 该披萨"的特征行，
// 取分类器对该披萨自身类别的概率作为分数。
// - 写入 labels：rank_model / probability
// - 更新 item.Score 并按分数降序排序
//
// 单个候选特征合成失败时按 0 分跳过，不影响整体请求。
type ClassifierNode struct {
	Model        model.Classifier
	Transformers *feature.Transformers
	Catalog      core.Catalog
}

func (n *ClassifierNode) Name() string        { return "rank.classifier" }
func (n *ClassifierNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ClassifierNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Model == nil || n.Transformers == nil || len(items) == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.Score = n.score(rctx, it)
		it.PutLabel("rank_model", utils.Label{Value: n.Model.Name(), Source: "rank"})
		it.PutLabel("probability", utils.Label{
			Value:  fmt.Sprintf("%.4f", it.Score),
			Source: "rank",
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// score 返回分类器认为"该顾客此刻会点这款披萨"的概率。
// 菜单查不到、类别词表外、特征合成失败都按 0 分处理。
func (n *ClassifierNode) score(rctx *core.RecommendContext, it *core.Item) float64 {
	mi, ok := n.Catalog.Lookup(it.ID)
	if !ok {
		return 0
	}
	class, ok := n.Transformers.ItemEncoder.Transform(it.ID)
	if !ok {
		return 0
	}

	var customerID int64
	var octx core.OrderContext
	if rctx != nil {
		customerID = rctx.CustomerID
		octx = rctx.Now
	}

	row, err := n.Transformers.CandidateRow(customerID, octx, mi)
	if err != nil {
		return 0
	}
	probs, err := n.Model.PredictProba(row)
	if err != nil || class < 0 || class >= len(probs) {
		return 0
	}
	return probs[class]
}
