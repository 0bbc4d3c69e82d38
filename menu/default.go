package menu

import "github.com/rushteam/pizzakit/core"

// Default 返回内置菜单（经典巴西风味披萨店配置）。
// 未提供菜单文件时使用；首项 Margherita 即确定性兜底推荐。
func Default() *Menu {
	m, err := New([]core.MenuItem{
		{Name: "Margherita", Ingredients: "molho de tomate, mussarela, manjericão", Price: 32.00},
		{Name: "Pepperoni", Ingredients: "molho de tomate, mussarela, pepperoni", Price: 38.00},
		{Name: "Quatro Queijos", Ingredients: "mussarela, provolone, gorgonzola, parmesão", Price: 42.00},
		{Name: "Calabresa", Ingredients: "molho de tomate, mussarela, calabresa, cebola", Price: 35.00},
		{Name: "Frango com Catupiry", Ingredients: "molho de tomate, mussarela, frango, catupiry", Price: 40.00},
		{Name: "Vegetariana", Ingredients: "molho de tomate, mussarela, pimentão, cebola, azeitona", Price: 36.00},
		{Name: "Portuguesa", Ingredients: "molho de tomate, mussarela, presunto, ovo, cebola, azeitona", Price: 40.00},
	}, []core.Extra{
		{Name: "Bacon", Price: 5.00},
		{Name: "Milho", Price: 3.00},
		{Name: "Azeitona Extra", Price: 2.00},
		{Name: "Ovo", Price: 3.00},
		{Name: "Catupiry Extra", Price: 4.00},
	})
	if err != nil {
		// 内置数据在编译期固定，构建失败属于程序缺陷
		panic(err)
	}
	return m
}

// WarmItems 是固定的"暖胃款"集合：天冷信号触发时的替换候选。
// 菜单自定义时可通过配置覆盖。
func WarmItems() []string {
	return []string{"Calabresa", "Pepperoni", "Frango com Catupiry", "Quatro Queijos"}
}
