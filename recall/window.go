package recall

import "github.com/rushteam/pizzakit/core"

// ContextWindow 返回"情境窗口"内的订单：同一星期几、且下单小时在当前
// 小时 ±2 之内（窗口边界截断到 [0,23]，不跨日回绕）。
func ContextWindow(orders []core.Order, octx core.OrderContext) []core.Order {
	lo := octx.Hour - 2
	if lo < 0 {
		lo = 0
	}
	hi := octx.Hour + 2
	if hi > 23 {
		hi = 23
	}

	out := make([]core.Order, 0)
	for _, o := range orders {
		if o.PlacedAt.Weekday() != octx.Weekday {
			continue
		}
		h := o.PlacedAt.Hour()
		if h >= lo && h <= hi {
			out = append(out, o)
		}
	}
	return out
}

// ByCustomer 过滤出指定顾客的订单（保持原顺序）。
func ByCustomer(orders []core.Order, customerID int64) []core.Order {
	out := make([]core.Order, 0)
	for _, o := range orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out
}

// MostFrequentItem 返回订单中出现次数最多的披萨及其次数。
// 并列时取先出现者（与插入序计数器的 most_common 语义一致，保证确定性）。
// 空集合返回 ("", 0)。
func MostFrequentItem(orders []core.Order) (string, int) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, o := range orders {
		if _, ok := counts[o.Item]; !ok {
			firstSeen[o.Item] = i
		}
		counts[o.Item]++
	}

	best := ""
	bestCount := 0
	for item, c := range counts {
		switch {
		case c > bestCount:
			best, bestCount = item, c
		case c == bestCount && best != "" && firstSeen[item] < firstSeen[best]:
			best = item
		}
	}
	return best, bestCount
}

// RankByFrequency 按出现频次降序返回去重后的披萨 Item 序列，Score 即次数。
// 并列时先出现者排前。
func RankByFrequency(orders []core.Order) []*core.Item {
	counts := make(map[string]int)
	names := make([]string, 0)
	for _, o := range orders {
		if _, ok := counts[o.Item]; !ok {
			names = append(names, o.Item)
		}
		counts[o.Item]++
	}

	// 插入序上的稳定选择排序：并列保持先出现者在前
	for i := 0; i < len(names); i++ {
		maxIdx := i
		for j := i + 1; j < len(names); j++ {
			if counts[names[j]] > counts[names[maxIdx]] {
				maxIdx = j
			}
		}
		if maxIdx != i {
			name := names[maxIdx]
			copy(names[i+1:maxIdx+1], names[i:maxIdx])
			names[i] = name
		}
	}

	out := make([]*core.Item, 0, len(names))
	for _, name := range names {
		it := core.NewItem(name)
		it.Score = float64(counts[name])
		out = append(out, it)
	}
	return out
}
