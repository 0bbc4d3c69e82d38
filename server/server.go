package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rushteam/pizzakit/core"
	"github.com/rushteam/pizzakit/recommend"
)

// Catalog 是服务层需要的菜单能力：领域目录 + 基础款/加料组合定价。
// *menu.Menu 满足此接口。
type Catalog interface {
	core.Catalog
	Compose(itemName string, extras []string) (ingredients string, price float64, err error)
}

// Server 是 HTTP 服务：推荐两条路径（启发式 / 分类器）+ 订单 CRUD。
type Server struct {
	router  *chi.Mux
	logger  *zap.Logger
	orders  core.OrderStore
	catalog Catalog

	heuristic  *recommend.Heuristic
	classifier *recommend.Classifier
	engine     *recommend.Engine
}

// New 创建并装配路由。classifier 与 engine 可为 nil
// （纯启发式部署 / 未配置 pipeline）。
func New(
	logger *zap.Logger,
	orders core.OrderStore,
	catalog Catalog,
	heuristic *recommend.Heuristic,
	classifier *recommend.Classifier,
	engine *recommend.Engine,
) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		logger:     logger,
		orders:     orders,
		catalog:    catalog,
		heuristic:  heuristic,
		classifier: classifier,
		engine:     engine,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/recommend", s.handleRecommend)
		r.Get("/recommend/advanced", s.handleRecommendAdvanced)
		r.Get("/recommend/pipeline", s.handleRecommendPipeline)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", s.handleCreateOrder)
			r.Get("/", s.handleListOrders)
			r.Get("/{id}", s.handleGetOrder)
			r.Put("/{id}", s.handleUpdateOrder)
			r.Patch("/{id}", s.handleUpdateOrder)
			r.Delete("/{id}", s.handleDeleteOrder)
		})
	})
}

// Handler 返回 http.Handler，供 http.Server / 测试挂载。
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, detail string) {
	body := map[string]string{"error": message}
	if detail != "" {
		body["detail"] = detail
	}
	s.writeJSON(w, status, body)
}
