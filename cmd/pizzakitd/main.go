package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/pizzakit/config"
	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/menu"
	"github.com/rushteam/pizzakit/pipeline"
	"github.com/rushteam/pizzakit/recall"
	"github.com/rushteam/pizzakit/recommend"
	"github.com/rushteam/pizzakit/server"
	"github.com/rushteam/pizzakit/store"
)

// appConfig 是守护进程配置（YAML）。敏感项可用环境变量覆盖。
type appConfig struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Store struct {
		// Backend: memory / postgres
		Backend  string               `yaml:"backend"`
		Postgres store.PostgresConfig `yaml:"postgres"`
		Redis    struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"store"`

	Menu struct {
		Path string `yaml:"path"`
	} `yaml:"menu"`

	// Pipeline 配置了路径时，/api/recommend/pipeline 走配置装配的链路。
	Pipeline struct {
		Path string `yaml:"path"`
	} `yaml:"pipeline"`

	Model struct {
		ArtifactPath string `yaml:"artifact_path"`
		ArtifactKey  string `yaml:"artifact_key"`
	} `yaml:"model"`
}

func loadConfig(path string) (*appConfig, error) {
	cfg := &appConfig{}
	cfg.Server.Addr = ":8080"
	cfg.Store.Backend = "memory"
	cfg.Model.ArtifactPath = "pizzakit_model.json"

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// 环境变量覆盖（.env 已由 godotenv 加载）
	if v := os.Getenv("PIZZAKIT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PIZZAKIT_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("PIZZAKIT_PG_HOST"); v != "" {
		cfg.Store.Postgres.Host = v
	}
	if v := os.Getenv("PIZZAKIT_PG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Store.Postgres.Port = port
		}
	}
	if v := os.Getenv("PIZZAKIT_PG_USER"); v != "" {
		cfg.Store.Postgres.User = v
	}
	if v := os.Getenv("PIZZAKIT_PG_PASSWORD"); v != "" {
		cfg.Store.Postgres.Password = v
	}
	if v := os.Getenv("PIZZAKIT_PG_DATABASE"); v != "" {
		cfg.Store.Postgres.Database = v
	}
	if v := os.Getenv("PIZZAKIT_REDIS_ADDR"); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v := os.Getenv("PIZZAKIT_PIPELINE"); v != "" {
		cfg.Pipeline.Path = v
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("load .env", zap.Error(err))
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 菜单：文件缺省时使用内置菜单
	var catalog *menu.Menu
	if cfg.Menu.Path != "" {
		catalog, err = menu.LoadFromYAML(cfg.Menu.Path)
		if err != nil {
			logger.Fatal("load menu", zap.String("path", cfg.Menu.Path), zap.Error(err))
		}
	} else {
		catalog = menu.Default()
	}

	// 订单存储
	var orders core.OrderStore
	switch cfg.Store.Backend {
	case "postgres":
		pg, err := store.NewPostgresOrderStore(cfg.Store.Postgres)
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.Ping(ctx); err != nil {
			logger.Fatal("ping postgres", zap.Error(err))
		}
		if err := pg.CreateTables(ctx); err != nil {
			logger.Fatal("create tables", zap.Error(err))
		}
		orders = pg
	case "memory":
		orders = store.NewMemoryOrderStore()
	default:
		logger.Fatal("unknown store backend", zap.String("backend", cfg.Store.Backend))
	}

	// KV 存储：配置了 Redis 则用 Redis，否则内存
	var kv core.Store
	if cfg.Store.Redis.Addr != "" {
		kv, err = store.NewRedisStore(cfg.Store.Redis.Addr, cfg.Store.Redis.DB)
		if err != nil {
			logger.Fatal("connect redis", zap.Error(err))
		}
	} else {
		kv = store.NewMemoryStore()
	}
	defer kv.Close()
	logger.Info("stores ready",
		zap.String("orders", cfg.Store.Backend),
		zap.String("kv", kv.Name()))

	heuristic := &recommend.Heuristic{
		Orders:    orders,
		Catalog:   catalog,
		Similar:   &recall.SimilarCustomers{},
		Cache:     kv,
		WarmItems: menu.WarmItems(),
	}

	classifier := recommend.NewClassifier(orders, catalog, recommend.ClassifierConfig{
		ArtifactPath:  cfg.Model.ArtifactPath,
		ArtifactStore: kv,
		ArtifactKey:   cfg.Model.ArtifactKey,
	})
	classifier.Logger = logger
	// 模型训练是一次性的启动成本；数据不足是软失败，服务照常起，
	// 高级推荐会回退启发式。
	if err := classifier.LoadOrTrain(ctx); err != nil {
		if core.IsModelUnavailable(err) {
			logger.Warn("classifier unavailable, heuristic only", zap.Error(err))
		} else {
			logger.Fatal("init classifier", zap.Error(err))
		}
	}

	// 配置驱动的推荐链路：Node 编排落在 YAML，装配经 NodeFactory
	var engine *recommend.Engine
	if cfg.Pipeline.Path != "" {
		pcfg, err := pipeline.LoadFromYAML(cfg.Pipeline.Path)
		if err != nil {
			logger.Fatal("load pipeline config", zap.String("path", cfg.Pipeline.Path), zap.Error(err))
		}
		factory := config.DefaultFactory(config.Deps{
			Orders:   orders,
			Catalog:  catalog,
			Cache:    kv,
			Artifact: classifier.Artifact(),
		})
		if err := factory.Validate(pcfg); err != nil {
			logger.Fatal("validate pipeline config", zap.Error(err))
		}
		p, err := pcfg.BuildPipeline(factory)
		if err != nil {
			logger.Fatal("build pipeline", zap.Error(err))
		}
		engine = &recommend.Engine{Pipeline: p, Catalog: catalog}
		logger.Info("pipeline ready",
			zap.String("name", pcfg.Pipeline.Name),
			zap.Int("nodes", len(p.Nodes)))
	}

	srv := server.New(logger, orders, catalog, heuristic, classifier, engine)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
