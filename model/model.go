package model

// Classifier 是多分类器的最小抽象：输入特征行，输出每个类别的概率。
// 具体实现可以是本地模型（softmax 回归）或远程推理服务。
type Classifier interface {
	Name() string
	NumClasses() int

	// PredictProba 返回长度为 NumClasses 的概率分布（和为 1）。
	PredictProba(features []float64) ([]float64, error)
}
