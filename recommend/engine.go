package recommend

import (
	"context"
	"fmt"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/pipeline"
)

// Engine 是配置驱动的推荐器：整条链路（召回 → 过滤 → 打分 → 重排）
// 由 pipeline 配置描述，Node 经 NodeFactory 装配，代码不再硬编码策略顺序。
// 解释文案从链路各 Node 写入的 labels 合成，labels 即 explain。
type Engine struct {
	Pipeline *pipeline.Pipeline
	Catalog  core.Catalog

	// Context 为空时按当前时间 + ScheduleColdSignal 构造情境。
	Context *core.ContextProvider
}

// Recommend 执行整条 pipeline 并把榜首候选转成推荐结果。
// 链路出错或候选为空返回 DATA_UNAVAILABLE，调用方可回退启发式。
func (e *Engine) Recommend(ctx context.Context, customerID int64) (*core.Recommendation, error) {
	rctx := &core.RecommendContext{
		CustomerID: customerID,
		Now:        e.currentContext(),
	}

	items, err := e.Pipeline.Run(ctx, rctx, nil)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeDataUnavailable,
			fmt.Sprintf("recommend: pipeline: %v", err))
	}
	if len(items) == 0 || items[0] == nil {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeDataUnavailable,
			"recommend: pipeline produced no candidates")
	}

	best := items[0]
	return finish(e.Catalog, best.ID, e.reason(best)), nil
}

// reason 从候选的 labels 合成解释文案：
// 召回源的 reason 优先，其次分类器概率，天冷改写文案追加在尾部。
func (e *Engine) reason(it *core.Item) string {
	reason := labelReason(it)
	if reason == "" {
		if p, ok := it.GetLabel("probability"); ok {
			reason = fmt.Sprintf("Based on an advanced AI model. Probability: %s", p.Value)
		}
	}
	if wo, ok := it.GetLabel("weather_override"); ok {
		if reason != "" {
			reason += " "
		}
		reason += wo.Value
	}
	if reason == "" {
		reason = "Our signature suggestion!"
	}
	return reason
}

func (e *Engine) currentContext() core.OrderContext {
	if e.Context != nil {
		return e.Context.Current()
	}
	p := &core.ContextProvider{}
	return p.Current()
}
