package feature

import (
	"testing"
	"time"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/menu"
)

func builderOrders() []core.Order {
	catalog := menu.Default()
	items := catalog.Items()
	out := make([]core.Order, 0, 20)
	for i := 0; i < 20; i++ {
		mi := items[i%len(items)]
		out = append(out, core.Order{
			ID:          int64(i + 1),
			CustomerID:  int64(i%4 + 1),
			Item:        mi.Name,
			Ingredients: mi.Ingredients,
			Price:       mi.Price,
			PlacedAt:    time.Date(2026, 8, 7, 12+i%8, 0, 0, 0, time.UTC),
		})
	}
	return out
}

// TestBuilderFit 测试特征矩阵构建：行宽与列清单一致、目标为披萨编码
func TestBuilderFit(t *testing.T) {
	b := &Builder{}
	catalog := menu.Default()

	matrix, transformers, err := b.Fit(builderOrders(), catalog)
	if err != nil {
		t.Fatalf("拟合失败: %v", err)
	}

	if len(matrix.Rows) != 20 || len(matrix.Targets) != 20 {
		t.Fatalf("期望 20 行样本，实际 %d 行 %d 目标", len(matrix.Rows), len(matrix.Targets))
	}
	for i, row := range matrix.Rows {
		if len(row) != len(transformers.Columns) {
			t.Fatalf("第 %d 行宽 %d 与列清单 %d 不一致", i, len(row), len(transformers.Columns))
		}
	}
	for i, target := range matrix.Targets {
		if target < 0 || target >= transformers.ItemEncoder.NumClasses() {
			t.Errorf("第 %d 个目标编码 %d 越界", i, target)
		}
	}

	// 披萨名编码只作监督目标，不应出现在特征列里
	for _, col := range transformers.Columns {
		if col == "item_encoded" || col == "pizza_encoded" {
			t.Errorf("特征列不应包含披萨名编码列: %s", col)
		}
	}
}

// TestBuilderFitEmpty 测试空历史：DATA_UNAVAILABLE
func TestBuilderFitEmpty(t *testing.T) {
	b := &Builder{}
	_, _, err := b.Fit(nil, menu.Default())
	if err == nil {
		t.Fatal("空历史应报错")
	}
	if de := core.GetDomainError(err); de == nil || de.Code != core.ErrorCodeDataUnavailable {
		t.Errorf("期望 DATA_UNAVAILABLE，实际 %v", err)
	}
}

// TestCandidateRowAlignment 测试预测时的候选行与训练列对齐：
// 菜单每款披萨的候选行宽都必须等于训练列数
func TestCandidateRowAlignment(t *testing.T) {
	b := &Builder{}
	catalog := menu.Default()

	_, transformers, err := b.Fit(builderOrders(), catalog)
	if err != nil {
		t.Fatalf("拟合失败: %v", err)
	}

	octx := core.OrderContext{Hour: 19, Weekday: time.Friday, Month: time.August, IsCold: true}
	for _, mi := range catalog.Items() {
		row, err := transformers.CandidateRow(1, octx, mi)
		if err != nil {
			t.Fatalf("候选行构造失败 (%s): %v", mi.Name, err)
		}
		if len(row) != len(transformers.Columns) {
			t.Errorf("%s 候选行宽 %d != 列数 %d", mi.Name, len(row), len(transformers.Columns))
		}
	}
}

// TestCandidateRowUnknownCustomer 测试词表外顾客的 -1 哨兵
func TestCandidateRowUnknownCustomer(t *testing.T) {
	b := &Builder{}
	catalog := menu.Default()

	_, transformers, err := b.Fit(builderOrders(), catalog)
	if err != nil {
		t.Fatalf("拟合失败: %v", err)
	}

	octx := core.OrderContext{Hour: 19, Weekday: time.Friday, Month: time.August}
	row, err := transformers.CandidateRow(999, octx, catalog.Items()[0])
	if err != nil {
		t.Fatalf("候选行构造失败: %v", err)
	}
	// customer_id_encoded 是第 0 列
	if row[0] != -1 {
		t.Errorf("未见过的顾客应编码为 -1，实际 %v", row[0])
	}
}

// TestCandidateRowNotFitted 测试变换器缺损时的 TRANSFORM_ERROR
func TestCandidateRowNotFitted(t *testing.T) {
	empty := &Transformers{}
	_, err := empty.CandidateRow(1, core.OrderContext{}, core.MenuItem{Name: "Margherita"})
	if !core.IsTransformError(err) {
		t.Errorf("期望 TRANSFORM_ERROR，实际 %v", err)
	}
}

// TestContainsAny 测试关键词画像匹配
func TestContainsAny(t *testing.T) {
	if !ContainsAny("Molho, Pepperoni, Queijo", spicyKeywords) {
		t.Error("pepperoni 应命中辣味关键词")
	}
	if ContainsAny("molho de tomate, mussarela", sweetKeywords) {
		t.Error("普通配料不应命中甜味关键词")
	}
}
