package feature

import "sort"

// LabelEncoder 把类别值映射为稠密整数（0, 1, 2, ...）。
// Classes 按字典序排列，下标即编码；随模型工件整体持久化。
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int // 惰性重建
}

// FitLabelEncoder 在取值集合上拟合编码器（去重 + 字典序）。
func FitLabelEncoder(values []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	sort.Strings(classes)
	e := &LabelEncoder{Classes: classes}
	e.rebuildIndex()
	return e
}

func (e *LabelEncoder) rebuildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}

// Transform 返回类别的编码；词表外取值返回 (-1, false)。
// -1 即 out-of-vocabulary 哨兵：预测时未见过的顾客落在这里。
func (e *LabelEncoder) Transform(v string) (int, bool) {
	if e.index == nil {
		e.rebuildIndex()
	}
	i, ok := e.index[v]
	if !ok {
		return -1, false
	}
	return i, true
}

// NumClasses 返回类别数。
func (e *LabelEncoder) NumClasses() int {
	return len(e.Classes)
}
