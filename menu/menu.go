// Package menu 实现菜单协作方：静态菜单与加料表，进程启动时加载一次，对核心只读。
package menu

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/pizzakit/core"
)

// Menu 是校验过的静态菜单。实现 core.Catalog 接口。
// items 保持声明顺序：首项是无任何信号时的确定性兜底推荐。
type Menu struct {
	items  []core.MenuItem
	byName map[string]core.MenuItem
	extras map[string]float64
}

var _ core.Catalog = (*Menu)(nil)

// New 从条目与加料表构建 Menu，并做加载期校验：
// 名称非空且唯一、配料非空、价格为正。
func New(items []core.MenuItem, extras []core.Extra) (*Menu, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("menu: no items")
	}
	m := &Menu{
		items:  make([]core.MenuItem, 0, len(items)),
		byName: make(map[string]core.MenuItem, len(items)),
		extras: make(map[string]float64, len(extras)),
	}
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("menu: item with empty name")
		}
		if _, dup := m.byName[it.Name]; dup {
			return nil, fmt.Errorf("menu: duplicate item %q", it.Name)
		}
		if len(it.IngredientList()) == 0 {
			return nil, fmt.Errorf("menu: item %q has no ingredients", it.Name)
		}
		if it.Price <= 0 {
			return nil, fmt.Errorf("menu: item %q has non-positive price", it.Name)
		}
		m.items = append(m.items, it)
		m.byName[it.Name] = it
	}
	for _, ex := range extras {
		if strings.TrimSpace(ex.Name) == "" {
			return nil, fmt.Errorf("menu: extra with empty name")
		}
		m.extras[ex.Name] = ex.Price
	}
	return m, nil
}

// Lookup 按名称查找披萨。
func (m *Menu) Lookup(name string) (core.MenuItem, bool) {
	it, ok := m.byName[name]
	return it, ok
}

// Items 返回全部披萨（声明顺序）。返回副本，调用方不可变更菜单。
func (m *Menu) Items() []core.MenuItem {
	out := make([]core.MenuItem, len(m.items))
	copy(out, m.items)
	return out
}

// LookupExtra 按名称查找加料价格增量。
func (m *Menu) LookupExtra(name string) (float64, bool) {
	p, ok := m.extras[name]
	return p, ok
}

// Fallback 返回确定性兜底披萨（菜单首项）。
func (m *Menu) Fallback() core.MenuItem {
	return m.items[0]
}

// Compose 按基础款 + 加料组合出最终配料文本与价格。
// 组合是确定性的：配料按加料列表顺序追加，未知加料被忽略（与价格不符的静默
// 加价是不可接受的，未知项不计价也不追加）。
func (m *Menu) Compose(itemName string, extras []string) (ingredients string, price float64, err error) {
	base, ok := m.Lookup(itemName)
	if !ok {
		return "", 0, core.NewDomainError(core.ModuleMenu, core.ErrorCodeNotFound,
			fmt.Sprintf("menu: item %q not found", itemName))
	}
	ingredients = base.Ingredients
	price = base.Price
	for _, ex := range extras {
		delta, ok := m.LookupExtra(ex)
		if !ok {
			continue
		}
		price += delta
		ingredients += ", " + ex
	}
	return ingredients, price, nil
}

// yamlFile 是菜单 YAML 文件的结构。
//
//	items:
//	  - name: Margherita
//	    ingredients: "molho de tomate, mussarela, manjericão"
//	    price: 32.00
//	extras:
//	  - name: Bacon
//	    price: 5.00
type yamlFile struct {
	Items []struct {
		Name        string  `yaml:"name"`
		Ingredients string  `yaml:"ingredients"`
		Price       float64 `yaml:"price"`
	} `yaml:"items"`
	Extras []struct {
		Name  string  `yaml:"name"`
		Price float64 `yaml:"price"`
	} `yaml:"extras"`
}

// LoadFromYAML 从 YAML 文件加载菜单。
func LoadFromYAML(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	items := make([]core.MenuItem, 0, len(f.Items))
	for _, it := range f.Items {
		items = append(items, core.MenuItem{Name: it.Name, Ingredients: it.Ingredients, Price: it.Price})
	}
	extras := make([]core.Extra, 0, len(f.Extras))
	for _, ex := range f.Extras {
		extras = append(extras, core.Extra{Name: ex.Name, Price: ex.Price})
	}
	return New(items, extras)
}
