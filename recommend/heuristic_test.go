package recommend

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/menu"
	"github.com/rushteam/pizzakit/store"
)

// 2026-06-01 是周一；周五 18:00 后为"天冷"档期
var (
	monday12 = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	tuesday3 = time.Date(2026, 6, 2, 3, 0, 0, 0, time.UTC)
	friday19 = time.Date(2026, 6, 5, 19, 0, 0, 0, time.UTC)
	sunday3  = time.Date(2026, 6, 7, 3, 0, 0, 0, time.UTC)
)

func newHeuristic(t *testing.T, at time.Time, orders ...core.Order) *Heuristic {
	t.Helper()
	s := store.NewMemoryOrderStore()
	for i := range orders {
		if _, err := s.Write(context.Background(), &orders[i]); err != nil {
			t.Fatalf("写入订单失败: %v", err)
		}
	}
	return &Heuristic{
		Orders:    s,
		Catalog:   menu.Default(),
		Context:   &core.ContextProvider{Now: func() time.Time { return at }},
		WarmItems: menu.WarmItems(),
	}
}

func orderOf(customerID int64, item string, at time.Time) core.Order {
	m := menu.Default()
	mi, _ := m.Lookup(item)
	return core.Order{
		CustomerID:  customerID,
		Item:        item,
		Ingredients: mi.Ingredients,
		Price:       mi.Price,
		PlacedAt:    at,
	}
}

// TestHeuristicEmptyHistory 测试空历史的兜底推荐
func TestHeuristicEmptyHistory(t *testing.T) {
	h := newHeuristic(t, monday12)
	rec, err := h.Recommend(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recommend() 返回错误: %v", err)
	}
	if rec.Item != "Margherita" {
		t.Errorf("空历史应推兜底 Margherita, got %q", rec.Item)
	}
	if rec.Reason != "No orders yet. Our signature suggestion!" {
		t.Errorf("文案 = %q, 不符合预期", rec.Reason)
	}
	if len(rec.Ingredients) == 0 {
		t.Errorf("推荐应带配料清单")
	}
}

// TestHeuristicSingleCustomerColdNight 测试无相似顾客的已知顾客：
// 个人最高频；素食历史的顾客候选池里没有暖胃款时天冷不改写
func TestHeuristicSingleCustomerColdNight(t *testing.T) {
	h := newHeuristic(t, friday19,
		orderOf(1, "Margherita", friday19.AddDate(0, 0, -7)),
	)
	rec, err := h.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recommend() 返回错误: %v", err)
	}
	if rec.Item != "Margherita" {
		t.Errorf("推荐 = %q, want Margherita", rec.Item)
	}
	if rec.Reason != "You always order this! (1x)" {
		t.Errorf("文案 = %q, want \"You always order this! (1x)\"", rec.Reason)
	}
	if strings.Contains(rec.Reason, "cold") {
		t.Errorf("素食候选池无暖胃款时不应触发天冷改写: %q", rec.Reason)
	}
}

// TestHeuristicPersonalHistory 测试有相似顾客但窗口为空时退回个人最高频
func TestHeuristicPersonalHistory(t *testing.T) {
	h := newHeuristic(t, tuesday3,
		orderOf(1, "Vegetariana", monday12),
		orderOf(1, "Vegetariana", monday12),
		orderOf(2, "Vegetariana", monday12),
	)
	rec, err := h.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recommend() 返回错误: %v", err)
	}
	if rec.Item != "Vegetariana" {
		t.Errorf("推荐 = %q, want Vegetariana", rec.Item)
	}
	if rec.Reason != "Based on your history. You ordered this 2x!" {
		t.Errorf("文案 = %q, 不符合预期", rec.Reason)
	}
}

// TestHeuristicSimilarTaste 测试相似口味召回命中窗口内高频披萨
func TestHeuristicSimilarTaste(t *testing.T) {
	h := newHeuristic(t, monday12,
		// 顾客 1 与顾客 2 口味相近（都点过 Pepperoni）
		orderOf(1, "Pepperoni", monday12.AddDate(0, 0, -7)),
		orderOf(2, "Pepperoni", monday12.AddDate(0, 0, -21)),
		// 相似顾客 1 在情境窗口内两次点了 Calabresa
		orderOf(1, "Calabresa", monday12.AddDate(0, 0, -7)),
		orderOf(1, "Calabresa", monday12.AddDate(0, 0, -14)),
	)
	rec, err := h.Recommend(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recommend() 返回错误: %v", err)
	}
	// 顾客 2 历史含肉，无素食改写；周一不冷，无天冷改写
	if rec.Item != "Calabresa" {
		t.Errorf("推荐 = %q, want Calabresa", rec.Item)
	}
	if rec.Reason != "Customers with similar taste ordered this!" {
		t.Errorf("文案 = %q, 不符合预期", rec.Reason)
	}
}

// TestHeuristicVegetarianRewrite 测试素食画像改写：
// 相似口味选中含肉披萨时替换为候选池首个素订单
func TestHeuristicVegetarianRewrite(t *testing.T) {
	h := newHeuristic(t, monday12,
		// 顾客 1 全素历史
		orderOf(1, "Margherita", monday12.AddDate(0, 0, -7)),
		orderOf(1, "Margherita", monday12.AddDate(0, 0, -14)),
		// 顾客 2 口味相近，但窗口内高频是 Pepperoni
		orderOf(2, "Margherita", monday12.AddDate(0, 0, -21)),
		orderOf(2, "Pepperoni", monday12.AddDate(0, 0, -7)),
		orderOf(2, "Pepperoni", monday12.AddDate(0, 0, -7)),
		orderOf(2, "Pepperoni", monday12.AddDate(0, 0, -14)),
	)
	rec, err := h.Recommend(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recommend() 返回错误: %v", err)
	}
	if rec.Item != "Margherita" {
		t.Errorf("素食顾客不应被推含肉披萨，got %q", rec.Item)
	}
	if rec.Reason != "Adapted to your vegetarian profile." {
		t.Errorf("文案 = %q, want \"Adapted to your vegetarian profile.\"", rec.Reason)
	}
}

// TestHeuristicAnonymousPopular 测试匿名顾客的情境热门召回
func TestHeuristicAnonymousPopular(t *testing.T) {
	h := newHeuristic(t, monday12,
		orderOf(1, "Quatro Queijos", monday12.AddDate(0, 0, -7)),
		orderOf(2, "Quatro Queijos", monday12.AddDate(0, 0, -14)),
		orderOf(3, "Margherita", monday12.AddDate(0, 0, -7)),
	)
	rec, err := h.Recommend(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recommend() 返回错误: %v", err)
	}
	if rec.Item != "Quatro Queijos" {
		t.Errorf("推荐 = %q, want Quatro Queijos", rec.Item)
	}
	if rec.Reason != "Popular today at this hour!" {
		t.Errorf("文案 = %q, 不符合预期", rec.Reason)
	}
}

// TestHeuristicAnonymousEmptyWindow 测试匿名顾客窗口为空时回到兜底
func TestHeuristicAnonymousEmptyWindow(t *testing.T) {
	h := newHeuristic(t, sunday3,
		orderOf(1, "Calabresa", monday12),
	)
	rec, err := h.Recommend(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recommend() 返回错误: %v", err)
	}
	if rec.Item != "Margherita" {
		t.Errorf("窗口为空应推兜底 Margherita, got %q", rec.Item)
	}
	if rec.Reason != "Our signature suggestion!" {
		t.Errorf("文案 = %q, 不符合预期", rec.Reason)
	}
}

// TestHeuristicColdOverride 测试天冷改写：候选池首个暖胃订单顶替非暖胃选择
func TestHeuristicColdOverride(t *testing.T) {
	h := newHeuristic(t, friday19,
		orderOf(1, "Calabresa", monday12),
		orderOf(2, "Margherita", friday19.AddDate(0, 0, -7)),
		orderOf(3, "Margherita", friday19.AddDate(0, 0, -14)),
	)
	rec, err := h.Recommend(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recommend() 返回错误: %v", err)
	}
	if rec.Item != "Calabresa" {
		t.Errorf("天冷应改推候选池首个暖胃款 Calabresa, got %q", rec.Item)
	}
	want := "Popular today at this hour! It's cold! How about something warm?"
	if rec.Reason != want {
		t.Errorf("文案 = %q, want %q", rec.Reason, want)
	}
}
