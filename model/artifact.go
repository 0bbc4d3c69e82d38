package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/feature"
)

// Artifact 是训练产物的完整快照：分类器 + 全部变换器 + 有序特征列清单。
// 进程启动时整体加载，运行期只读；重训产生新的 Artifact 整体替换，不做增量更新。
type Artifact struct {
	Model        *SoftmaxModel         `json:"model"`
	Transformers *feature.Transformers `json:"transformers"`

	// Accuracy 是留出集命中率（信息性指标，不作为加载门槛）。
	Accuracy  float64   `json:"accuracy"`
	TrainedAt time.Time `json:"trained_at"`
}

// Validate 校验工件自洽：模型、变换器、列清单齐备且维度一致。
// JSON 合法但内容残缺（bias 为 null、scaler 空列等）的工件必须在这里被拒绝，
// 调用方据此重训，而不是带病进入 Loaded 状态。
func (a *Artifact) Validate() error {
	if a.Model == nil || len(a.Model.Weights) == 0 {
		return fmt.Errorf("artifact: missing model")
	}
	if len(a.Model.Bias) != a.Model.NumClasses() {
		return fmt.Errorf("artifact: bias length %d != %d classes",
			len(a.Model.Bias), a.Model.NumClasses())
	}
	if a.Transformers == nil || len(a.Transformers.Columns) == 0 {
		return fmt.Errorf("artifact: missing transformers")
	}
	if len(a.Model.Weights[0]) != len(a.Transformers.Columns) {
		return fmt.Errorf("artifact: model width %d != column list %d",
			len(a.Model.Weights[0]), len(a.Transformers.Columns))
	}
	if a.Transformers.ItemEncoder == nil ||
		a.Transformers.ItemEncoder.NumClasses() != a.Model.NumClasses() {
		return fmt.Errorf("artifact: item encoder does not match model classes")
	}
	if a.Transformers.Vectorizer == nil || a.Transformers.CustomerEncoder == nil {
		return fmt.Errorf("artifact: missing fitted transformers")
	}
	if a.Transformers.Scaler == nil ||
		len(a.Transformers.Scaler.Mean) != feature.ScaledColumns ||
		len(a.Transformers.Scaler.Std) != feature.ScaledColumns {
		return fmt.Errorf("artifact: scaler must cover %d columns", feature.ScaledColumns)
	}
	return nil
}

// SaveFile 把工件序列化为 JSON 写入文件。
func (a *Artifact) SaveFile(path string) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// LoadFile 从文件加载并校验工件。文件缺失或损坏都返回错误，
// 调用方据此决定重训。
func LoadFile(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return unmarshalArtifact(data)
}

// SaveStore 把工件写入 KV 存储（如 Redis），便于多实例共享同一份训练产物。
func (a *Artifact) SaveStore(ctx context.Context, s core.Store, key string) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}
	return nil
}

// LoadStore 从 KV 存储加载并校验工件。
func LoadStore(ctx context.Context, s core.Store, key string) (*Artifact, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	return unmarshalArtifact(data)
}

func unmarshalArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
