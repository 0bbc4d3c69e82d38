package core

import (
	"time"

	"github.com/rushteam/pizzakit/pkg/utils"
)

// OrderContext 是下单/推荐时刻的上下文快照：小时、星期、月份与"天冷"信号。
// 纯值对象，无失败模式。
type OrderContext struct {
	Hour    int          // [0, 23]
	Weekday time.Weekday // Go 约定：Sunday == 0
	Month   time.Month   // [1, 12]
	IsCold  bool
}

// ColdSignal 是可插拔的天气代理信号。
// 当前默认实现是固定档期的启发式（周五晚），与真实气象数据无关；
// 接入真实天气源时替换实现即可，不要假设该信号可泛化。
type ColdSignal interface {
	IsCold(t time.Time) bool
}

// ScheduleColdSignal 按固定档期判定天冷：周五 18:00–23:59。
type ScheduleColdSignal struct{}

func (ScheduleColdSignal) IsCold(t time.Time) bool {
	return t.Weekday() == time.Friday && t.Hour() >= 18 && t.Hour() <= 23
}

// ContextProvider 从时钟派生当前 OrderContext。
// Now 为空时使用 time.Now；Cold 为空时使用 ScheduleColdSignal。
type ContextProvider struct {
	Now  func() time.Time
	Cold ColdSignal
}

func (p *ContextProvider) Current() OrderContext {
	now := time.Now
	if p != nil && p.Now != nil {
		now = p.Now
	}
	var cold ColdSignal = ScheduleColdSignal{}
	if p != nil && p.Cold != nil {
		cold = p.Cold
	}
	return ContextAt(now(), cold)
}

// ContextAt 在给定时刻计算 OrderContext（训练时用于历史订单回放）。
func ContextAt(t time.Time, cold ColdSignal) OrderContext {
	if cold == nil {
		cold = ScheduleColdSignal{}
	}
	return OrderContext{
		Hour:    t.Hour(),
		Weekday: t.Weekday(),
		Month:   t.Month(),
		IsCold:  cold.IsCold(t),
	}
}

// RecommendContext 承载单次推荐请求的信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// CustomerID 为 0 表示匿名请求（无个性化信号）。
	CustomerID int64

	// Now 是本次请求的时间上下文。
	Now OrderContext

	// Params 请求级参数（调试开关、场景标记等）。
	Params map[string]any

	// Labels 是请求级标签，可驱动整个 Pipeline 行为。
	Labels map[string]utils.Label
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
