package recall

import (
	"testing"
	"time"

	"github.com/rushteam/pizzakit/core"
)

func similarFixture() []core.Order {
	mk := func(customer int64, ingredients string) core.Order {
		return core.Order{
			CustomerID:  customer,
			Item:        "any",
			Ingredients: ingredients,
			PlacedAt:    time.Date(2026, 8, 7, 19, 0, 0, 0, time.UTC),
		}
	}
	return []core.Order{
		mk(1, "molho de tomate, mussarela, manjericão"),
		mk(2, "molho de tomate, mussarela, manjericão"), // 与 1 几乎一致
		mk(3, "molho de tomate, mussarela, pepperoni"),
		mk(4, "chocolate, banana"), // 口味最远
		mk(5, "molho de tomate, mussarela"),
	}
}

// TestSimilarCustomersOrdering 测试相似度降序、排除目标、长度 ≤ TopK
func TestSimilarCustomersOrdering(t *testing.T) {
	engine := &SimilarCustomers{}
	got := engine.Find(similarFixture(), 1)

	if len(got) == 0 || len(got) > 3 {
		t.Fatalf("期望 1~3 位相似顾客，实际 %d 位", len(got))
	}
	for _, s := range got {
		if s.CustomerID == 1 {
			t.Errorf("结果不应包含目标顾客自己")
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("相似度应单调不增: %v", got)
		}
	}
	if got[0].CustomerID != 2 {
		t.Errorf("配料完全一致的顾客 2 应排第一，实际 %d", got[0].CustomerID)
	}
}

// TestSimilarCustomersEdgeCases 测试边界：无历史目标 / 空订单集
func TestSimilarCustomersEdgeCases(t *testing.T) {
	engine := &SimilarCustomers{}

	if got := engine.Find(nil, 1); got != nil {
		t.Errorf("空订单集应返回 nil，实际 %v", got)
	}
	if got := engine.Find(similarFixture(), 99); got != nil {
		t.Errorf("目标无历史时应返回 nil，实际 %v", got)
	}
}

// TestSimilarCustomersTopK 测试自定义 TopK
func TestSimilarCustomersTopK(t *testing.T) {
	engine := &SimilarCustomers{TopK: 1}
	got := engine.Find(similarFixture(), 1)
	if len(got) != 1 {
		t.Fatalf("TopK=1 时期望 1 位，实际 %d 位", len(got))
	}
}

// TestSimilarWindow 测试复用已算好的相似结果做窗口统计
func TestSimilarWindow(t *testing.T) {
	at := func(day, hour int) time.Time {
		return time.Date(2026, 8, day, hour, 0, 0, 0, time.UTC) // 2026-08-02 是周日
	}
	orders := []core.Order{
		{CustomerID: 1, Item: "Margherita", PlacedAt: at(2, 12)},
		{CustomerID: 2, Item: "Calabresa", PlacedAt: at(2, 13)},
		{CustomerID: 2, Item: "Calabresa", PlacedAt: at(9, 11)},
		{CustomerID: 2, Item: "Pepperoni", PlacedAt: at(9, 12)},
		{CustomerID: 3, Item: "Portuguesa", PlacedAt: at(2, 12)}, // 不在相似列表中
		{CustomerID: 2, Item: "Margherita", PlacedAt: at(3, 12)}, // 周一，窗口外
	}
	octx := core.OrderContext{Hour: 12, Weekday: time.Sunday}
	similar := []CustomerScore{{CustomerID: 2, Score: 0.9}}

	got := SimilarWindow(orders, similar, octx)
	if len(got) != 2 {
		t.Fatalf("窗口内相似顾客披萨数 = %d, want 2", len(got))
	}
	if got[0].ID != "Calabresa" || got[0].Score != 2 {
		t.Errorf("首位 = %s(%v), want Calabresa(2)", got[0].ID, got[0].Score)
	}

	// 相似列表为空时直接返回空
	if out := SimilarWindow(orders, nil, octx); out != nil {
		t.Errorf("空相似列表应返回 nil, got %v", out)
	}
}
