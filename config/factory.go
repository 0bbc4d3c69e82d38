package config

import (
	"fmt"
	"time"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/filter"
	"github.com/rushteam/pizzakit/menu"
	"github.com/rushteam/pizzakit/model"
	"github.com/rushteam/pizzakit/pipeline"
	"github.com/rushteam/pizzakit/pkg/conv"
	"github.com/rushteam/pizzakit/rank"
	"github.com/rushteam/pizzakit/recall"
	"github.com/rushteam/pizzakit/rerank"
)

// Deps 是 Node 构建所需的运行时依赖。
// 依赖显式注入而非全局注册表：工件/存储的生命周期由进程入口统一管理。
type Deps struct {
	Orders  core.OrderStore
	Catalog core.Catalog

	// Cache 可选：popular_now 缓存、fallback 运营推位、exclude 售罄列表。
	Cache core.Store

	// Artifact 可选：rank.classifier 需要，未加载时该类型不可用。
	Artifact *model.Artifact
}

// DefaultFactory 返回一个包含所有内置 Node 的工厂。
//
// 支持的类型：
//   - recall.fanout / recall.similar_taste / recall.personal_history
//   - recall.popular_now / recall.fallback
//   - filter（meat / exclude / rule）
//   - rank.classifier
//   - rerank.warm / rerank.diversity / rerank.topn
func DefaultFactory(deps Deps) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	factory.Register("recall.fanout", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildFanoutNode(deps, cfg)
	})
	registerSource := func(nodeType, sourceType string) {
		factory.Register(nodeType, func(cfg map[string]interface{}) (pipeline.Node, error) {
			src, err := buildSource(deps, sourceType, cfg)
			if err != nil {
				return nil, err
			}
			node, ok := src.(pipeline.Node)
			if !ok {
				return nil, fmt.Errorf("source %s is not a pipeline node", sourceType)
			}
			return node, nil
		})
	}
	registerSource("recall.similar_taste", "similar_taste")
	registerSource("recall.personal_history", "personal_history")
	registerSource("recall.popular_now", "popular_now")
	registerSource("recall.fallback", "fallback")

	factory.Register("filter", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildFilterNode(deps, cfg)
	})

	factory.Register("rank.classifier", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildClassifierNode(deps, cfg)
	})

	factory.Register("rerank.warm", func(cfg map[string]interface{}) (pipeline.Node, error) {
		items := conv.SliceAnyToString(cfg["items"])
		if len(items) == 0 {
			items = menu.WarmItems()
		}
		return &rerank.WarmNode{Items: items}, nil
	})
	factory.Register("rerank.diversity", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rerank.Diversity{
			Catalog:   deps.Catalog,
			MaxShared: int(conv.ConfigGetInt64(cfg, "max_shared", 0)),
		}, nil
	})
	factory.Register("rerank.topn", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
	})

	return factory
}

func buildSource(deps Deps, sourceType string, cfg map[string]interface{}) (recall.Source, error) {
	switch sourceType {
	case "similar_taste":
		engine := &recall.SimilarCustomers{
			TopK: int(conv.ConfigGetInt64(cfg, "top_k", 0)),
		}
		return &recall.SimilarTaste{Orders: deps.Orders, Engine: engine}, nil
	case "personal_history":
		return &recall.PersonalHistory{Orders: deps.Orders}, nil
	case "popular_now":
		return &recall.PopularNow{
			Orders:   deps.Orders,
			Cache:    deps.Cache,
			CacheTTL: int(conv.ConfigGetInt64(cfg, "cache_ttl", 0)),
		}, nil
	case "fallback":
		return &recall.Fallback{
			Catalog: deps.Catalog,
			Store:   deps.Cache,
			Key:     conv.ConfigGet[string](cfg, "key", ""),
		}, nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", sourceType)
	}
}

func buildFanoutNode(deps Deps, cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		src, err := buildSource(deps, conv.ConfigGet[string](sourceMap, "type", ""), sourceMap)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet[bool](cfg, "dedup", true),
		MergeStrategy: conv.ConfigGet[string](cfg, "merge_strategy", ""),
	}
	if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	return fanout, nil
}

func buildFilterNode(deps Deps, cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet[string](filterMap, "type", ""); filterType {
		case "meat":
			filters = append(filters, &filter.MeatFilter{
				Catalog: deps.Catalog,
				Orders:  deps.Orders,
			})
		case "exclude":
			filters = append(filters, &filter.ExcludeFilter{
				Items:          conv.SliceAnyToString(filterMap["items"]),
				Store:          deps.Cache,
				UnavailableKey: conv.ConfigGet[string](filterMap, "unavailable_key", ""),
				DislikePrefix:  conv.ConfigGet[string](filterMap, "dislike_prefix", ""),
			})
		case "rule":
			filters = append(filters, &filter.RuleFilter{
				Expr: conv.ConfigGet[string](filterMap, "expr", ""),
			})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}

func buildClassifierNode(deps Deps, cfg map[string]interface{}) (pipeline.Node, error) {
	if deps.Artifact == nil {
		return nil, fmt.Errorf("rank.classifier requires a loaded model artifact")
	}
	return &rank.ClassifierNode{
		Model:        deps.Artifact.Model,
		Transformers: deps.Artifact.Transformers,
		Catalog:      deps.Catalog,
	}, nil
}
