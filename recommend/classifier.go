package recommend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/feature"
	"github.com/rushteam/pizzakit/model"
	"github.com/rushteam/pizzakit/rank"
)

// ModelState 是分类器推荐器的生命周期状态。
type ModelState string

const (
	StateUninitialized ModelState = "uninitialized" // 尚未加载/训练
	StateLoaded        ModelState = "loaded"        // 工件加载成功
	StateTrained       ModelState = "trained"       // 工件缺失/损坏，已用当前历史重训
	StateUnavailable   ModelState = "unavailable"   // 历史订单不足，预测一律软失败
)

// MinTrainingOrders 是训练所需的最少历史订单数。
const MinTrainingOrders = 15

// ClassifierConfig 是分类器推荐器的配置。
type ClassifierConfig struct {
	// ArtifactPath 是模型工件的本地文件路径（可选）。
	ArtifactPath string

	// ArtifactStore / ArtifactKey 可选：把工件放进 KV 存储，
	// 多实例部署时共享同一份模型。
	ArtifactStore core.Store
	ArtifactKey   string

	// Train 是训练超参，零值使用默认。
	Train model.TrainConfig

	// Seed 是训练集切分的随机种子，默认 42。
	Seed int64

	// TestFraction 是留出集比例，默认 0.2。
	TestFraction float64
}

// Classifier 是分类器推荐器：为每款候选披萨合成特征行，
// 取模型对该披萨类别的概率，推荐概率最高者。
//
// 工件在进程启动时一次性加载（LoadOrTrain），此后只读。
// 运行期重训与预测的并发序列化由调用方负责。
type Classifier struct {
	Orders  core.OrderStore
	Catalog core.Catalog
	Builder *feature.Builder
	Logger  *zap.Logger

	cfg      ClassifierConfig
	state    ModelState
	artifact *model.Artifact
}

// NewClassifier 创建一个未初始化的分类器推荐器。
func NewClassifier(orders core.OrderStore, catalog core.Catalog, cfg ClassifierConfig) *Classifier {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.TestFraction == 0 {
		cfg.TestFraction = 0.2
	}
	return &Classifier{
		Orders:  orders,
		Catalog: catalog,
		Builder: &feature.Builder{},
		cfg:     cfg,
		state:   StateUninitialized,
	}
}

// State 返回当前生命周期状态。
func (c *Classifier) State() ModelState {
	return c.state
}

// Artifact 返回已加载/训练的模型工件；不可用时为 nil。
// rank.classifier Node 的装配依赖由此取得。
func (c *Classifier) Artifact() *model.Artifact {
	return c.artifact
}

// LoadOrTrain 在进程启动时调用：优先加载既有工件，
// 加载不到或校验失败则用当前订单历史重训。
// 历史订单不足 MinTrainingOrders 时置为 Unavailable 并返回软失败。
func (c *Classifier) LoadOrTrain(ctx context.Context) error {
	if art := c.tryLoad(ctx); art != nil {
		c.artifact = art
		c.state = StateLoaded
		c.logger().Info("model artifact loaded",
			zap.Int("classes", art.Model.NumClasses()),
			zap.Float64("accuracy", art.Accuracy))
		return nil
	}
	return c.Train(ctx)
}

// Train 用当前订单历史重训模型并持久化工件。
func (c *Classifier) Train(ctx context.Context) error {
	orders, err := c.Orders.ReadAll(ctx)
	if err != nil {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodePersistence,
			fmt.Sprintf("model: read orders: %v", err))
	}
	if len(orders) < MinTrainingOrders {
		c.state = StateUnavailable
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeModelUnavailable,
			fmt.Sprintf("model: %d orders, need at least %d to train", len(orders), MinTrainingOrders))
	}

	builder := c.Builder
	if builder == nil {
		builder = &feature.Builder{}
	}
	matrix, transformers, err := builder.Fit(orders, c.Catalog)
	if err != nil {
		c.state = StateUnavailable
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeModelUnavailable,
			fmt.Sprintf("model: build features: %v", err))
	}

	stratify := model.CanStratify(matrix.Targets)
	trainRows, trainTargets, testRows, testTargets := model.TrainTestSplit(
		matrix.Rows, matrix.Targets, c.cfg.TestFraction, c.cfg.Seed, stratify)

	m, err := model.TrainSoftmax(trainRows, trainTargets, transformers.ItemEncoder.NumClasses(), c.cfg.Train)
	if err != nil {
		c.state = StateUnavailable
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeModelUnavailable,
			fmt.Sprintf("model: train: %v", err))
	}

	// 留出集准确率仅作观测，不做门槛
	accuracy := model.Accuracy(m, testRows, testTargets)
	c.logger().Info("model trained",
		zap.Int("orders", len(orders)),
		zap.Int("classes", m.NumClasses()),
		zap.Bool("stratified", stratify),
		zap.Float64("accuracy", accuracy))

	art := &model.Artifact{
		Model:        m,
		Transformers: transformers,
		Accuracy:     accuracy,
		TrainedAt:    time.Now(),
	}
	c.persist(ctx, art)

	c.artifact = art
	c.state = StateTrained
	return nil
}

// Predict 用分类器为指定顾客和情境生成推荐。
// 模型不可用返回 MODEL_UNAVAILABLE 软失败，调用方应回退启发式。
func (c *Classifier) Predict(ctx context.Context, customerID int64, octx core.OrderContext) (*core.Recommendation, error) {
	if c.artifact == nil || (c.state != StateLoaded && c.state != StateTrained) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelUnavailable,
			fmt.Sprintf("model: not ready (state=%s)", c.state))
	}

	items := c.candidates()
	if len(items) == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelUnavailable,
			"model: empty catalog")
	}

	rctx := &core.RecommendContext{
		CustomerID: customerID,
		Now:        octx,
	}
	node := &rank.ClassifierNode{
		Model:        c.artifact.Model,
		Transformers: c.artifact.Transformers,
		Catalog:      c.Catalog,
	}
	ranked, err := node.Process(ctx, rctx, items)
	if err != nil || len(ranked) == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelUnavailable,
			fmt.Sprintf("model: scoring failed: %v", err))
	}

	best := ranked[0]
	mi, ok := c.Catalog.Lookup(best.ID)
	if !ok {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelUnavailable,
			fmt.Sprintf("model: predicted item %q not in catalog", best.ID))
	}
	return &core.Recommendation{
		Item:        mi.Name,
		Ingredients: mi.IngredientList(),
		Reason:      fmt.Sprintf("Based on an advanced AI model. Probability: %.4f", best.Score),
	}, nil
}

// candidates 把整个菜单展开为候选 Item 集合。
func (c *Classifier) candidates() []*core.Item {
	menu := c.Catalog.Items()
	out := make([]*core.Item, 0, len(menu))
	for _, mi := range menu {
		out = append(out, core.NewItem(mi.Name))
	}
	return out
}

// tryLoad 尝试从 Store 或文件加载工件，全部失败返回 nil。
func (c *Classifier) tryLoad(ctx context.Context) *model.Artifact {
	if c.cfg.ArtifactStore != nil && c.cfg.ArtifactKey != "" {
		if art, err := model.LoadStore(ctx, c.cfg.ArtifactStore, c.cfg.ArtifactKey); err == nil {
			if art.Validate() == nil {
				return art
			}
			c.logger().Warn("stored model artifact invalid, retraining")
		}
	}
	if c.cfg.ArtifactPath != "" {
		if art, err := model.LoadFile(c.cfg.ArtifactPath); err == nil {
			if art.Validate() == nil {
				return art
			}
			c.logger().Warn("model artifact file invalid, retraining",
				zap.String("path", c.cfg.ArtifactPath))
		}
	}
	return nil
}

// persist 把工件写到配置的全部目的地。写失败只告警，不影响本进程使用。
func (c *Classifier) persist(ctx context.Context, art *model.Artifact) {
	if c.cfg.ArtifactStore != nil && c.cfg.ArtifactKey != "" {
		if err := art.SaveStore(ctx, c.cfg.ArtifactStore, c.cfg.ArtifactKey); err != nil {
			c.logger().Warn("save model artifact to store failed", zap.Error(err))
		}
	}
	if c.cfg.ArtifactPath != "" {
		if err := art.SaveFile(c.cfg.ArtifactPath); err != nil {
			c.logger().Warn("save model artifact file failed",
				zap.String("path", c.cfg.ArtifactPath), zap.Error(err))
		}
	}
}

func (c *Classifier) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}
