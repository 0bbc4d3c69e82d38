package feature

import "math"

// StandardScaler 对数值列做 z-score 标准化：x' = (x - mean) / std。
// 每列独立拟合；std 为 0 的列按 1 处理（恒定列不缩放不平移出 NaN）。
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitStandardScaler 按列拟合均值与标准差。cols[i] 是第 i 列的全部取值。
func FitStandardScaler(cols [][]float64) *StandardScaler {
	s := &StandardScaler{
		Mean: make([]float64, len(cols)),
		Std:  make([]float64, len(cols)),
	}
	for i, col := range cols {
		if len(col) == 0 {
			s.Std[i] = 1
			continue
		}
		var sum float64
		for _, v := range col {
			sum += v
		}
		mean := sum / float64(len(col))
		var varSum float64
		for _, v := range col {
			d := v - mean
			varSum += d * d
		}
		std := math.Sqrt(varSum / float64(len(col)))
		if std == 0 {
			std = 1
		}
		s.Mean[i] = mean
		s.Std[i] = std
	}
	return s
}

// Transform 标准化第 i 列的单个取值。
func (s *StandardScaler) Transform(i int, v float64) float64 {
	return (v - s.Mean[i]) / s.Std[i]
}
