// Package pizzakit 是一个披萨推荐工具包。
//
// 设计要点：
//   - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
//   - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
//   - 双路径: 启发式策略链（recommend.Heuristic）与分类器打分（recommend.Classifier），
//     分类器不可用时回退启发式
package pizzakit

import "github.com/rushteam/pizzakit/pipeline"

// 轻量 facade：便于用户直接 import "pizzakit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
