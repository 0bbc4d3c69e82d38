package core

// MenuItem 是菜单中的一款披萨：固定字段结构，加载时校验。
type MenuItem struct {
	Name        string
	Ingredients string // 逗号拼接的配料文本
	Price       float64
}

// IngredientList 返回按原顺序拆分的配料名序列。
func (m MenuItem) IngredientList() []string {
	return SplitIngredients(m.Ingredients)
}

// Extra 是可追加的加料：名称 + 价格增量。
type Extra struct {
	Name  string
	Price float64
}

// Catalog 是菜单协作方的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由 menu 包实现
//   - 菜单在进程启动时加载一次，对核心只读
//   - Items 保持声明顺序，首项即确定性兜底推荐
type Catalog interface {
	// Lookup 按名称查找披萨，不存在时返回 (MenuItem{}, false)。
	Lookup(name string) (MenuItem, bool)

	// Items 返回全部披萨（声明顺序）。
	Items() []MenuItem

	// LookupExtra 按名称查找加料价格增量，不存在时返回 (0, false)。
	LookupExtra(name string) (float64, bool)
}
