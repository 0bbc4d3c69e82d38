package recall

import (
	"sort"
	"strings"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/feature"
)

// CustomerScore 是相似顾客查找的结果项。
type CustomerScore struct {
	CustomerID int64
	Score      float64
}

// SimilarCustomers 是基于配料画像的相似顾客引擎（User-based，内容视角）。
//
// 核心思想："点过相似配料的顾客，口味相近"
//
// 算法流程：
//  1. 按顾客聚合历史订单，把每人的配料文本拼成一篇文档（小写化）
//  2. 在全部文档上做 TF-IDF 向量化
//  3. 计算目标顾客文档与其他每位顾客文档的余弦相似度
//  4. 排除目标自己，按相似度降序取 TopK
//
// 边界情况：目标顾客无历史、或词表为空（向量化失败）时返回空结果，
// 从不向调用方抛错——上层决策逻辑按"无相似信号"继续。
type SimilarCustomers struct {
	// TopK 返回的相似顾客数，默认 3。
	TopK int
}

// Find 在订单历史中查找与目标顾客口味最近的 TopK 位顾客，按相似度降序。
func (s *SimilarCustomers) Find(orders []core.Order, target int64) []CustomerScore {
	if len(orders) == 0 {
		return nil
	}

	// 按顾客聚合配料文档（保持首次出现顺序，结果确定）
	docs := make(map[int64]string)
	customers := make([]int64, 0)
	for _, o := range orders {
		if _, ok := docs[o.CustomerID]; !ok {
			customers = append(customers, o.CustomerID)
			docs[o.CustomerID] = strings.ToLower(o.Ingredients)
			continue
		}
		docs[o.CustomerID] += " " + strings.ToLower(o.Ingredients)
	}

	if _, ok := docs[target]; !ok {
		return nil
	}

	corpus := make([]string, len(customers))
	for i, id := range customers {
		corpus[i] = docs[id]
	}
	vec, ok := feature.FitVectorizer(corpus)
	if !ok {
		return nil
	}

	targetVec := vec.Transform(docs[target])
	scores := make([]CustomerScore, 0, len(customers)-1)
	for _, id := range customers {
		if id == target {
			continue
		}
		scores = append(scores, CustomerScore{
			CustomerID: id,
			Score:      feature.CosineSimilarity(targetVec, vec.Transform(docs[id])),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	topK := s.TopK
	if topK <= 0 {
		topK = 3
	}
	if len(scores) > topK {
		scores = scores[:topK]
	}
	return scores
}

// SimilarWindow 统计相似顾客在情境窗口内的披萨频次（降序）。
// similar 是 Find 的结果（已排除目标本人）；相似度计算开销大，
// 调用方算一遍后在这里复用，不重复向量化。
func SimilarWindow(orders []core.Order, similar []CustomerScore, octx core.OrderContext) []*core.Item {
	if len(similar) == 0 {
		return nil
	}
	set := make(map[int64]struct{}, len(similar))
	for _, s := range similar {
		set[s.CustomerID] = struct{}{}
	}

	window := ContextWindow(orders, octx)
	pool := make([]core.Order, 0, len(window))
	for _, o := range window {
		if _, ok := set[o.CustomerID]; ok {
			pool = append(pool, o)
		}
	}
	return RankByFrequency(pool)
}
