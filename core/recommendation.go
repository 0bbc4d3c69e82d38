package core

// Recommendation 是一次推荐的最终结果：一款披萨、其配料序列与可读的推荐理由。
type Recommendation struct {
	Item        string   `json:"item"`
	Ingredients []string `json:"ingredients"`
	Reason      string   `json:"reason"`
}
