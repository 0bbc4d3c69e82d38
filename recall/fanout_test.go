package recall

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/pkg/utils"
)

// stubSource 是固定返回的召回源，用于合并策略测试。
type stubSource struct {
	name  string
	items []string
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Recall(_ context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*core.Item, 0, len(s.items))
	for _, name := range s.items {
		it := core.NewItem(name)
		it.PutLabel("recall_source", utils.Label{Value: s.name, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// TestFanoutMergeStrategies 测试 priority / union / 默认去重三种合并策略
func TestFanoutMergeStrategies(t *testing.T) {
	sources := []Source{
		&stubSource{name: "empty"},
		&stubSource{name: "primary", items: []string{"Calabresa", "Margherita"}},
		&stubSource{name: "secondary", items: []string{"Margherita", "Pepperoni"}},
	}

	tests := []struct {
		name     string
		strategy string
		dedup    bool
		want     []string
	}{
		{"priority 取第一个非空源", "priority", true, []string{"Calabresa", "Margherita"}},
		{"union 全量拼接不去重", "union", true,
			[]string{"Calabresa", "Margherita", "Margherita", "Pepperoni"}},
		{"默认策略按源顺序拼接去重", "", true, []string{"Calabresa", "Margherita", "Pepperoni"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fanout := &Fanout{Sources: sources, Dedup: tt.dedup, MergeStrategy: tt.strategy}
			got, err := fanout.Process(context.Background(), &core.RecommendContext{}, nil)
			if err != nil {
				t.Fatalf("Process() 返回错误: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("合并结果数 = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("第 %d 位 = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

// TestFanoutDedupMergesLabels 测试去重时保留首个出现并合并 labels
func TestFanoutDedupMergesLabels(t *testing.T) {
	fanout := &Fanout{
		Sources: []Source{
			&stubSource{name: "primary", items: []string{"Margherita"}},
			&stubSource{name: "secondary", items: []string{"Margherita"}},
		},
		Dedup: true,
	}
	got, err := fanout.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() 返回错误: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("去重后结果数 = %d, want 1", len(got))
	}
	lbl, ok := got[0].GetLabel("recall_source")
	if !ok {
		t.Fatalf("去重结果应保留 recall_source 标签")
	}
	if lbl.Value != "primary|secondary" {
		t.Errorf("标签合并 = %q, want primary|secondary", lbl.Value)
	}
}

// TestFanoutSourceFailure 测试单个源失败不影响其他源的结果
func TestFanoutSourceFailure(t *testing.T) {
	fanout := &Fanout{
		Sources: []Source{
			&stubSource{name: "broken", err: errors.New("boom")},
			&stubSource{name: "healthy", items: []string{"Calabresa"}},
		},
		Dedup: true,
	}
	got, err := fanout.Process(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Process() 返回错误: %v", err)
	}
	if len(got) != 1 || got[0].ID != "Calabresa" {
		t.Errorf("失败源应被跳过，结果 = %v", got)
	}
}
