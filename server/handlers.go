package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rushteam/pizzakit/core"
)

// handleRecommend 处理 GET /api/recommend?customer_id=N。
// customer_id 可省略（匿名推荐）。除存储故障外总是 200。
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	customerID, ok := queryCustomerID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid customer_id", "")
		return
	}

	rec, err := s.heuristic.Recommend(r.Context(), customerID)
	if err != nil {
		s.logger.Error("heuristic recommend", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "recommendation failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleRecommendAdvanced 处理 GET /api/recommend/advanced?customer_id=N。
// 分类器软失败（未训练/数据不足）时回退启发式，响应仍为 200。
func (s *Server) handleRecommendAdvanced(w http.ResponseWriter, r *http.Request) {
	customerID, ok := queryCustomerID(r)
	if !ok || customerID == 0 {
		s.writeError(w, http.StatusBadRequest, "customer_id is required", "")
		return
	}

	if s.classifier != nil {
		octx := s.currentContext()
		rec, err := s.classifier.Predict(r.Context(), customerID, octx)
		if err == nil {
			s.writeJSON(w, http.StatusOK, rec)
			return
		}
		if !core.IsModelUnavailable(err) {
			s.logger.Error("classifier recommend", zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "advanced recommendation failed", err.Error())
			return
		}
		s.logger.Warn("model unavailable, falling back to heuristic", zap.Error(err))
	}

	rec, err := s.heuristic.Recommend(r.Context(), customerID)
	if err != nil {
		s.logger.Error("heuristic fallback", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "recommendation failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleRecommendPipeline 处理 GET /api/recommend/pipeline?customer_id=N。
// 走配置装配的 pipeline 链路；未配置 pipeline 或链路无候选时回退启发式。
func (s *Server) handleRecommendPipeline(w http.ResponseWriter, r *http.Request) {
	customerID, ok := queryCustomerID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid customer_id", "")
		return
	}

	if s.engine != nil {
		rec, err := s.engine.Recommend(r.Context(), customerID)
		if err == nil {
			s.writeJSON(w, http.StatusOK, rec)
			return
		}
		s.logger.Warn("pipeline produced no recommendation, falling back to heuristic",
			zap.Error(err))
	}

	rec, err := s.heuristic.Recommend(r.Context(), customerID)
	if err != nil {
		s.logger.Error("heuristic fallback", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "recommendation failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) currentContext() core.OrderContext {
	if s.heuristic != nil && s.heuristic.Context != nil {
		return s.heuristic.Context.Current()
	}
	p := &core.ContextProvider{}
	return p.Current()
}

type createOrderRequest struct {
	CustomerID    int64    `json:"customer_id"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	Pizza         string   `json:"pizza"`
	Extras        []string `json:"extras"`
}

type orderJSON struct {
	ID            int64    `json:"id"`
	CustomerID    int64    `json:"customer_id"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	PlacedAt      string   `json:"placed_at"`
	Pizza         string   `json:"pizza"`
	Ingredients   []string `json:"ingredients"`
	Price         float64  `json:"price"`
}

func toOrderJSON(o core.Order) orderJSON {
	return orderJSON{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		PlacedAt:      o.PlacedAt.Format(time.RFC3339),
		Pizza:         o.Item,
		Ingredients:   o.IngredientList(),
		Price:         o.Price,
	}
}

// handleCreateOrder 处理 POST /api/orders。
// 披萨必须在菜单内；配料与价格由菜单组合生成，未知加料被忽略。
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Pizza == "" {
		s.writeError(w, http.StatusBadRequest, "pizza is required", "")
		return
	}

	ingredients, price, err := s.catalog.Compose(req.Pizza, req.Extras)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "pizza not found", "")
		return
	}

	order := &core.Order{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PlacedAt:      time.Now(),
		Item:          req.Pizza,
		Ingredients:   ingredients,
		Price:         price,
	}
	id, err := s.orders.Write(r.Context(), order)
	if err != nil {
		s.logger.Error("write order", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to save order", err.Error())
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      id,
		"message": fmt.Sprintf("Order confirmed! Total: R$ %.2f", price),
	})
}

// handleListOrders 处理 GET /api/orders。
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.ReadAll(r.Context())
	if err != nil {
		s.logger.Error("read orders", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load orders", err.Error())
		return
	}

	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderJSON(o))
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleGetOrder 处理 GET /api/orders/{id}。
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid order id", "")
		return
	}

	orders, err := s.orders.ReadAll(r.Context())
	if err != nil {
		s.logger.Error("read orders", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load order", err.Error())
		return
	}
	for _, o := range orders {
		if o.ID == id {
			s.writeJSON(w, http.StatusOK, toOrderJSON(o))
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "order not found", "")
}

type updateOrderRequest struct {
	CustomerName  *string  `json:"customer_name"`
	CustomerPhone *string  `json:"customer_phone"`
	Pizza         *string  `json:"pizza"`
	Ingredients   *string  `json:"ingredients"`
	Price         *float64 `json:"price"`
}

// handleUpdateOrder 处理 PUT/PATCH /api/orders/{id}。
// 改披萨时必须仍在菜单内；全空补丁返回 400。
func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid order id", "")
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	patch := core.OrderPatch{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Item:          req.Pizza,
		Ingredients:   req.Ingredients,
		Price:         req.Price,
	}
	if patch.Empty() {
		s.writeError(w, http.StatusBadRequest, "no fields to update", "")
		return
	}
	if patch.Item != nil {
		if _, ok := s.catalog.Lookup(*patch.Item); !ok {
			s.writeError(w, http.StatusBadRequest, "pizza not found", "")
			return
		}
	}

	found, err := s.orders.Update(r.Context(), id, patch)
	if err != nil {
		s.logger.Error("update order", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to update order", err.Error())
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "order not found", "")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order updated.",
	})
}

// handleDeleteOrder 处理 DELETE /api/orders/{id}。
func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid order id", "")
		return
	}

	found, err := s.orders.Delete(r.Context(), id)
	if err != nil {
		s.logger.Error("delete order", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to delete order", err.Error())
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "order not found", "")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order deleted.",
	})
}

// queryCustomerID 解析 customer_id 查询参数，缺省时返回 0（匿名）。
func queryCustomerID(r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("customer_id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
