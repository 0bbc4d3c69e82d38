package feature

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Vectorizer 是 TF-IDF 文本向量化器，用于把配料文本变成数值向量。
//
// 约定（与训练/预测两侧保持一致，随模型工件整体持久化）：
//   - 分词：小写化后按非字母数字切分，丢弃长度 < 2 的 token
//   - idf：平滑公式 ln((1+n)/(1+df)) + 1
//   - 每行向量做 l2 归一化，因此两行的余弦相似度即点积
type Vectorizer struct {
	Vocab []string  `json:"vocab"` // 词表（字典序），下标即特征列
	IDF   []float64 `json:"idf"`

	index map[string]int // 词 -> 列，惰性重建（JSON 反序列化后为空）
}

// Tokenize 分词：小写化，按字母/数字连续段切分，丢弃单字符 token。
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) >= 2 {
			tokens = append(tokens, string(cur))
		}
		cur = cur[:0]
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// FitVectorizer 在语料上拟合词表与 idf。
// 语料为空或词表为空时返回 (nil, false)：调用方按"向量化失败"降级，不报错。
func FitVectorizer(docs []string) (*Vectorizer, bool) {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, false
	}

	vocab := make([]string, 0, len(df))
	for tok := range df {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, tok := range vocab {
		idf[i] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}

	v := &Vectorizer{Vocab: vocab, IDF: idf}
	v.rebuildIndex()
	return v, true
}

func (v *Vectorizer) rebuildIndex() {
	v.index = make(map[string]int, len(v.Vocab))
	for i, tok := range v.Vocab {
		v.index[tok] = i
	}
}

// Transform 把一段文本变成 l2 归一化的 TF-IDF 向量（长度 == len(Vocab)）。
// 词表外 token 被忽略；全零向量原样返回（不做归一化）。
func (v *Vectorizer) Transform(doc string) []float64 {
	if v.index == nil {
		v.rebuildIndex()
	}
	out := make([]float64, len(v.Vocab))
	for _, tok := range Tokenize(doc) {
		if i, ok := v.index[tok]; ok {
			out[i] += 1
		}
	}
	var norm float64
	for i := range out {
		out[i] *= v.IDF[i]
		norm += out[i] * out[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range out {
			out[i] /= norm
		}
	}
	return out
}

// CosineSimilarity 计算两个向量的余弦相似度。
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
