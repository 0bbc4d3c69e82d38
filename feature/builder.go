package feature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rushteam/pizzakit/core"
)

// 订单画像关键词：配料/名称的大小写不敏感子串匹配。
// 与菜单数据同源（葡语配料名），菜单换语言时需要一并调整。
var (
	veggieKeywords = []string{"tomate", "cebola", "pimentão", "ervilha", "milho", "berinjela", "espinafre", "brocolis", "palmito"}
	spicyKeywords  = []string{"pepperoni", "calabresa", "pimenta", "jalapeño", "catupiry"}
	sweetKeywords  = []string{"chocolate", "doce de leite", "banana"}
)

// ContainsAny 判断文本是否包含任一关键词（大小写不敏感子串匹配）。
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Matrix 是训练用特征矩阵：列名有序，Targets 是编码后的披萨名（监督目标）。
type Matrix struct {
	Columns []string
	Rows    [][]float64
	Targets []int
}

// Transformers 是拟合后的全部变换器 + 有序列名清单。
// 列清单是模型工件的一部分：预测时的候选行必须按它对齐。
type Transformers struct {
	Vectorizer      *Vectorizer     `json:"vectorizer"`
	CustomerEncoder *LabelEncoder   `json:"customer_encoder"`
	ItemEncoder     *LabelEncoder   `json:"item_encoder"`
	Scaler          *StandardScaler `json:"scaler"`
	Columns         []string        `json:"columns"`
}

// Builder 把原始订单历史变换为数值特征矩阵。
//
// 列布局（顺序固定）：
//   - customer_id_encoded：顾客 ID 稠密编码（词表外 → -1 哨兵）
//   - hour / weekday / month：z-score 标准化的时间上下文
//   - item_price：菜单基础价（菜单查不到时为 0）
//   - is_veggie / is_spicy / is_sweet：关键词派生布尔
//   - is_cold：订单时刻的天冷信号（训练与预测共用同一信号源）
//   - ingredient_i：配料文本的 TF-IDF 列
//
// 披萨名编码只作监督目标，不进特征列。
type Builder struct {
	// Cold 为空时使用 ScheduleColdSignal。
	Cold core.ColdSignal
}

// 时间上下文列在 Scaler 中的下标。
const (
	scalerHour = iota
	scalerWeekday
	scalerMonth
)

// ScaledColumns 是 Scaler 覆盖的时间上下文列数（hour / weekday / month），
// 工件校验据此检查 scaler 形状。
const ScaledColumns = 3

// Fit 在订单历史上拟合全部变换器并构建特征矩阵。
// 订单为空返回 DATA_UNAVAILABLE；配料词表为空返回 TRANSFORM_ERROR。
func (b *Builder) Fit(orders []core.Order, catalog core.Catalog) (*Matrix, *Transformers, error) {
	if len(orders) == 0 {
		return nil, nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeDataUnavailable,
			"feature: no orders to fit on")
	}

	docs := make([]string, len(orders))
	customers := make([]string, len(orders))
	items := make([]string, len(orders))
	for i, o := range orders {
		docs[i] = o.Ingredients
		customers[i] = strconv.FormatInt(o.CustomerID, 10)
		items[i] = o.Item
	}

	vec, ok := FitVectorizer(docs)
	if !ok {
		return nil, nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeTransform,
			"feature: empty ingredient vocabulary")
	}
	customerEnc := FitLabelEncoder(customers)
	itemEnc := FitLabelEncoder(items)

	hours := make([]float64, len(orders))
	weekdays := make([]float64, len(orders))
	months := make([]float64, len(orders))
	for i, o := range orders {
		hours[i] = float64(o.PlacedAt.Hour())
		weekdays[i] = float64(o.PlacedAt.Weekday())
		months[i] = float64(o.PlacedAt.Month())
	}
	scaler := FitStandardScaler([][]float64{hours, weekdays, months})

	t := &Transformers{
		Vectorizer:      vec,
		CustomerEncoder: customerEnc,
		ItemEncoder:     itemEnc,
		Scaler:          scaler,
		Columns:         buildColumns(vec),
	}

	cold := b.Cold
	if cold == nil {
		cold = core.ScheduleColdSignal{}
	}

	m := &Matrix{
		Columns: t.Columns,
		Rows:    make([][]float64, 0, len(orders)),
		Targets: make([]int, 0, len(orders)),
	}
	for _, o := range orders {
		price := 0.0
		if it, ok := catalog.Lookup(o.Item); ok {
			price = it.Price
		}
		octx := core.ContextAt(o.PlacedAt, cold)
		row := t.row(o.CustomerID, octx, o.Item, o.Ingredients, price)
		target, _ := itemEnc.Transform(o.Item) // 训练集上拟合，必然在词表内
		m.Rows = append(m.Rows, row)
		m.Targets = append(m.Targets, target)
	}
	return m, t, nil
}

func buildColumns(vec *Vectorizer) []string {
	cols := []string{
		"customer_id_encoded", "hour", "weekday", "month",
		"item_price", "is_veggie", "is_spicy", "is_sweet", "is_cold",
	}
	for i := range vec.Vocab {
		cols = append(cols, fmt.Sprintf("ingredient_%d", i))
	}
	return cols
}

// CandidateRow 为"指定顾客 + 当前上下文 + 某款候选披萨"合成一行特征，
// 复用训练期的变换器并按 Columns 对齐。词表外顾客编码为 -1 哨兵。
// 变换器缺损（工件损坏）时返回 TRANSFORM_ERROR，调用方按候选跳过。
func (t *Transformers) CandidateRow(customerID int64, octx core.OrderContext, item core.MenuItem) ([]float64, error) {
	if t.Vectorizer == nil || t.CustomerEncoder == nil || t.Scaler == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeTransform,
			"feature: transformers not fitted")
	}
	row := t.row(customerID, octx, item.Name, item.Ingredients, item.Price)
	if len(row) != len(t.Columns) {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeTransform,
			fmt.Sprintf("feature: row width %d != column list %d", len(row), len(t.Columns)))
	}
	return row, nil
}

func (t *Transformers) row(customerID int64, octx core.OrderContext, itemName, ingredients string, price float64) []float64 {
	encoded, _ := t.CustomerEncoder.Transform(strconv.FormatInt(customerID, 10))

	isCold := 0.0
	if octx.IsCold {
		isCold = 1.0
	}
	row := []float64{
		float64(encoded),
		t.Scaler.Transform(scalerHour, float64(octx.Hour)),
		t.Scaler.Transform(scalerWeekday, float64(octx.Weekday)),
		t.Scaler.Transform(scalerMonth, float64(octx.Month)),
		price,
		boolFeature(ContainsAny(ingredients, veggieKeywords)),
		boolFeature(ContainsAny(ingredients, spicyKeywords)),
		boolFeature(ContainsAny(itemName, sweetKeywords)),
		isCold,
	}
	return append(row, t.Vectorizer.Transform(ingredients)...)
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
