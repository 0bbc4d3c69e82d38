package model

import (
	"fmt"
	"math"
)

// SoftmaxModel 实现了多分类逻辑回归（softmax / multinomial logistic regression）。
//
// 预测原理：
//  1. 每个类别一组线性权重: z_k = Bias_k + sum(Weight_k_i * Feature_i)
//  2. softmax 变换: P_k = exp(z_k) / sum_j(exp(z_j))
//
// 输出是菜单各款披萨的概率分布；推荐取"候选披萨自身类别"的概率最高者。
type SoftmaxModel struct {
	// Weights[k] 是第 k 个类别的特征权重，长度 == 特征数。
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

func (m *SoftmaxModel) Name() string    { return "softmax" }
func (m *SoftmaxModel) NumClasses() int { return len(m.Weights) }

// PredictProba 返回每个类别的概率。特征维度或偏置长度不匹配时报错
// （工件与输入不一致，属于加载了损坏工件的情形）。
func (m *SoftmaxModel) PredictProba(features []float64) ([]float64, error) {
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("softmax: model not trained")
	}
	if len(m.Bias) != len(m.Weights) {
		return nil, fmt.Errorf("softmax: bias length %d, want %d classes", len(m.Bias), len(m.Weights))
	}
	logits := make([]float64, len(m.Weights))
	for k, w := range m.Weights {
		if len(w) != len(features) {
			return nil, fmt.Errorf("softmax: feature width %d, want %d", len(features), len(w))
		}
		z := m.Bias[k]
		for i, x := range features {
			z += w[i] * x
		}
		logits[k] = z
	}
	return softmax(logits), nil
}

// softmax 做数值稳定的 softmax 变换（减去最大 logit 再取指数）。
func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, z := range logits[1:] {
		if z > maxLogit {
			maxLogit = z
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, z := range logits {
		out[i] = math.Exp(z - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// TrainConfig 是 softmax 训练超参数。零值字段在 Train 内解析为默认值。
type TrainConfig struct {
	Epochs       int     // 默认 300
	LearningRate float64 // 默认 0.5
	L2           float64 // 默认 1e-4
}

// TrainSoftmax 用全量梯度下降训练 softmax 回归。
// 权重零初始化，过程完全确定（无随机源），同样的数据得到同样的模型。
func TrainSoftmax(rows [][]float64, targets []int, numClasses int, cfg TrainConfig) (*SoftmaxModel, error) {
	if len(rows) == 0 || len(rows) != len(targets) {
		return nil, fmt.Errorf("softmax: bad training set (%d rows, %d targets)", len(rows), len(targets))
	}
	if numClasses < 2 {
		return nil, fmt.Errorf("softmax: need at least 2 classes, got %d", numClasses)
	}
	numFeatures := len(rows[0])

	epochs := cfg.Epochs
	if epochs <= 0 {
		epochs = 300
	}
	lr := cfg.LearningRate
	if lr <= 0 {
		lr = 0.5
	}
	l2 := cfg.L2
	if l2 < 0 {
		l2 = 0
	} else if l2 == 0 {
		l2 = 1e-4
	}

	m := &SoftmaxModel{
		Weights: make([][]float64, numClasses),
		Bias:    make([]float64, numClasses),
	}
	for k := range m.Weights {
		m.Weights[k] = make([]float64, numFeatures)
	}

	gradW := make([][]float64, numClasses)
	gradB := make([]float64, numClasses)
	for k := range gradW {
		gradW[k] = make([]float64, numFeatures)
	}

	n := float64(len(rows))
	for epoch := 0; epoch < epochs; epoch++ {
		for k := range gradW {
			gradB[k] = 0
			for i := range gradW[k] {
				gradW[k][i] = 0
			}
		}

		for r, row := range rows {
			probs, err := m.PredictProba(row)
			if err != nil {
				return nil, err
			}
			for k := range probs {
				// 交叉熵梯度: (p_k - y_k) * x
				diff := probs[k]
				if k == targets[r] {
					diff -= 1
				}
				gradB[k] += diff
				for i, x := range row {
					gradW[k][i] += diff * x
				}
			}
		}

		for k := range m.Weights {
			m.Bias[k] -= lr * gradB[k] / n
			for i := range m.Weights[k] {
				m.Weights[k][i] -= lr * (gradW[k][i]/n + l2*m.Weights[k][i])
			}
		}
	}
	return m, nil
}

// Accuracy 计算模型在给定集合上的命中率（信息性指标，不作为上线门槛）。
func Accuracy(m Classifier, rows [][]float64, targets []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	hits := 0
	for r, row := range rows {
		probs, err := m.PredictProba(row)
		if err != nil {
			continue
		}
		best := 0
		for k := range probs {
			if probs[k] > probs[best] {
				best = k
			}
		}
		if best == targets[r] {
			hits++
		}
	}
	return float64(hits) / float64(len(rows))
}
