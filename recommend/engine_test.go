package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/menu"
	"github.com/rushteam/pizzakit/pipeline"
	"github.com/rushteam/pizzakit/pkg/utils"
	"github.com/rushteam/pizzakit/recall"
	"github.com/rushteam/pizzakit/rerank"
)

// staticNode 是固定候选的 Node，用于链路组合测试。
type staticNode struct {
	items []*core.Item
	err   error
}

func (n *staticNode) Name() string        { return "recall.static" }
func (n *staticNode) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *staticNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.items, n.err
}

func fixedEngine(p *pipeline.Pipeline, at time.Time) *Engine {
	return &Engine{
		Pipeline: p,
		Catalog:  menu.Default(),
		Context:  &core.ContextProvider{Now: func() time.Time { return at }},
	}
}

// TestEngineRecommend 测试 pipeline 链路的推荐与理由合成
func TestEngineRecommend(t *testing.T) {
	// 召回兜底 + 天冷重排的完整链路；周五 19 点触发天冷改写
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&staticNode{items: []*core.Item{core.NewItem("Margherita"), core.NewItem("Calabresa")}},
		&rerank.WarmNode{Items: menu.WarmItems()},
		&rerank.TopNNode{N: 1},
	}}
	e := fixedEngine(p, time.Date(2026, 6, 5, 19, 0, 0, 0, time.UTC))

	rec, err := e.Recommend(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recommend() 返回错误: %v", err)
	}
	if rec.Item != "Calabresa" {
		t.Errorf("天冷链路应提升暖胃款，got %q", rec.Item)
	}
	if rec.Reason != "It's cold! How about something warm?" {
		t.Errorf("文案 = %q, 不符合预期", rec.Reason)
	}
	if len(rec.Ingredients) == 0 {
		t.Errorf("推荐应带配料清单")
	}
}

// TestEngineReasonFromLabels 测试召回 reason 与分类器概率标签的文案合成
func TestEngineReasonFromLabels(t *testing.T) {
	monday := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	withReason := core.NewItem("Margherita")
	withReason.PutLabel("reason", utils.Label{Value: "Popular today at this hour!", Source: "recall"})

	withProb := core.NewItem("Pepperoni")
	withProb.PutLabel("probability", utils.Label{Value: "0.7321", Source: "rank"})

	tests := []struct {
		name string
		item *core.Item
		want string
	}{
		{"召回 reason 优先", withReason, "Popular today at this hour!"},
		{"概率标签兜底", withProb, "Based on an advanced AI model. Probability: 0.7321"},
		{"无标签时招牌文案", core.NewItem("Margherita"), "Our signature suggestion!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &pipeline.Pipeline{Nodes: []pipeline.Node{
				&staticNode{items: []*core.Item{tt.item}},
			}}
			rec, err := fixedEngine(p, monday).Recommend(context.Background(), 0)
			if err != nil {
				t.Fatalf("Recommend() 返回错误: %v", err)
			}
			if rec.Reason != tt.want {
				t.Errorf("文案 = %q, want %q", rec.Reason, tt.want)
			}
		})
	}
}

// TestEngineSoftFailures 测试链路出错或无候选时的软失败
func TestEngineSoftFailures(t *testing.T) {
	monday := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	empty := &pipeline.Pipeline{Nodes: []pipeline.Node{&staticNode{}}}
	if _, err := fixedEngine(empty, monday).Recommend(context.Background(), 0); err == nil {
		t.Errorf("无候选应返回错误")
	} else if de := core.GetDomainError(err); de == nil || de.Code != core.ErrorCodeDataUnavailable {
		t.Errorf("应返回 DATA_UNAVAILABLE, got %v", err)
	}

	broken := &pipeline.Pipeline{Nodes: []pipeline.Node{&staticNode{err: errors.New("boom")}}}
	if _, err := fixedEngine(broken, monday).Recommend(context.Background(), 0); err == nil {
		t.Errorf("链路出错应返回错误")
	}
}

// TestEngineWithFanout 测试配置装配风格的链路：fanout 兜底召回可直接服务
func TestEngineWithFanout(t *testing.T) {
	monday := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Fanout{
			Sources:       []recall.Source{&recall.Fallback{Catalog: menu.Default()}},
			MergeStrategy: "priority",
		},
	}}
	rec, err := fixedEngine(p, monday).Recommend(context.Background(), 7)
	if err != nil {
		t.Fatalf("Recommend() 返回错误: %v", err)
	}
	if rec.Item != "Margherita" {
		t.Errorf("兜底链路应返回菜单首项，got %q", rec.Item)
	}
	if rec.Reason != "Our signature suggestion!" {
		t.Errorf("文案 = %q, 不符合预期", rec.Reason)
	}
}
