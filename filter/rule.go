package filter

import (
	"context"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/pkg/dsl"
)

// RuleFilter 是规则过滤器，用 CEL 表达式描述过滤条件，
// 让运营策略（比如"非天冷时段不推暖胃专属款"）落在配置而非代码。
// 表达式返回 true 表示过滤掉该披萨。
type RuleFilter struct {
	// Expr 是 CEL 过滤表达式，空表达式不过滤任何披萨
	Expr string
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.Expr == "" {
		return false, nil
	}

	eval := dsl.NewEval(item, rctx)
	return eval.Evaluate(f.Expr)
}
