package model

import "math/rand"

// TrainTestSplit 把数据集按 testFrac 比例切分为训练/测试两份。
//
// stratify 为 true 时按类别分层抽样（每个类别内部独立切分），保证测试集
// 覆盖各类别；调用方须先确认每个类别至少有 2 个样本，否则应退回普通切分。
// seed 固定时切分完全可复现。
func TrainTestSplit(rows [][]float64, targets []int, testFrac float64, seed int64, stratify bool) (
	trainRows [][]float64, trainTargets []int, testRows [][]float64, testTargets []int) {

	rng := rand.New(rand.NewSource(seed))

	var groups [][]int
	if stratify {
		byClass := make(map[int][]int)
		order := make([]int, 0)
		for i, t := range targets {
			if _, ok := byClass[t]; !ok {
				order = append(order, t)
			}
			byClass[t] = append(byClass[t], i)
		}
		for _, t := range order {
			groups = append(groups, byClass[t])
		}
	} else {
		all := make([]int, len(rows))
		for i := range all {
			all[i] = i
		}
		groups = [][]int{all}
	}

	for _, idx := range groups {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(float64(len(idx)) * testFrac)
		if stratify && nTest == 0 && len(idx) > 1 {
			nTest = 1 // 分层时每个类别至少留一个测试样本
		}
		for n, i := range idx {
			if n < nTest {
				testRows = append(testRows, rows[i])
				testTargets = append(testTargets, targets[i])
			} else {
				trainRows = append(trainRows, rows[i])
				trainTargets = append(trainTargets, targets[i])
			}
		}
	}
	return trainRows, trainTargets, testRows, testTargets
}

// CanStratify 判断是否满足分层切分条件：每个类别至少 2 个样本。
func CanStratify(targets []int) bool {
	counts := make(map[int]int)
	for _, t := range targets {
		counts[t]++
	}
	if len(counts) < 2 {
		return false
	}
	for _, c := range counts {
		if c < 2 {
			return false
		}
	}
	return true
}
