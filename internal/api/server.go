package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vkravets/newspulse/internal/keywords"
	"github.com/vkravets/newspulse/internal/trends"
	"github.com/vkravets/newspulse/pkg/logger"
)

// Server exposes the keyword management API: subscription lifecycle and
// trend read models
type Server struct {
	server   *http.Server
	keywords *keywords.Service
	trends   *trends.Service
}

// NewServer creates new management API server
func NewServer(port string, kw *keywords.Service, tr *trends.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		keywords: kw,
		trends:   tr,
	}

	mux.HandleFunc("POST /api/subscriptions", s.handleSubscribe)
	mux.HandleFunc("DELETE /api/subscriptions", s.handleUnsubscribe)
	mux.HandleFunc("GET /api/keywords/{keyword}/trend", s.handleTrend)
	mux.HandleFunc("GET /api/keywords/{keyword}/average", s.handleAverage)

	return s
}

// Start starts the API server
func (s *Server) Start() error {
	logger.Info("management api server starting",
		zap.String("addr", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("stopping management api server...")
	return s.server.Shutdown(ctx)
}

type subscriptionRequest struct {
	UserID  int64  `json:"user_id"`
	Keyword string `json:"keyword"`
}

type keywordResponse struct {
	ID           int64  `json:"id"`
	Keyword      string `json:"keyword"`
	RefreshHours int    `json:"refresh_hours"`
}

type trendPointResponse struct {
	Date    string  `json:"date"`
	Score   float64 `json:"score"`
	Samples int     `json:"samples"`
}

type averageResponse struct {
	Keyword string  `json:"keyword"`
	Mean    float64 `json:"mean"`
	Count   int     `json:"count"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubscription(w, r)
	if !ok {
		return
	}

	kw, err := s.keywords.Subscribe(r.Context(), req.UserID, req.Keyword)
	if err != nil {
		logger.Error("subscribe failed",
			zap.String("keyword", req.Keyword),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "subscription failed")
		return
	}

	writeJSON(w, http.StatusCreated, keywordResponse{
		ID:           kw.ID,
		Keyword:      kw.Keyword,
		RefreshHours: kw.RefreshHours,
	})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubscription(w, r)
	if !ok {
		return
	}

	if err := s.keywords.Unsubscribe(r.Context(), req.UserID, req.Keyword); err != nil {
		logger.Error("unsubscribe failed",
			zap.String("keyword", req.Keyword),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "unsubscribe failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	keyword := r.PathValue("keyword")

	since, ok := parseSince(w, r)
	if !ok {
		return
	}

	daily, err := s.trends.TrendFor(r.Context(), keyword, since)
	if err != nil {
		logger.Error("trend query failed",
			zap.String("keyword", keyword),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "trend query failed")
		return
	}

	resp := make([]trendPointResponse, len(daily))
	for i, dp := range daily {
		resp[i] = trendPointResponse{
			Date:    dp.Date.Format("2006-01-02"),
			Score:   dp.Score,
			Samples: dp.Samples,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAverage(w http.ResponseWriter, r *http.Request) {
	keyword := r.PathValue("keyword")

	since, ok := parseSince(w, r)
	if !ok {
		return
	}

	avg, err := s.trends.AveragesFor(r.Context(), keyword, since)
	if err != nil {
		logger.Error("average query failed",
			zap.String("keyword", keyword),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "average query failed")
		return
	}

	writeJSON(w, http.StatusOK, averageResponse{
		Keyword: keyword,
		Mean:    avg.Mean,
		Count:   avg.Count,
	})
}

func decodeSubscription(w http.ResponseWriter, r *http.Request) (subscriptionRequest, bool) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.UserID == 0 || req.Keyword == "" {
		writeError(w, http.StatusBadRequest, "user_id and keyword are required")
		return req, false
	}
	return req, true
}

func parseSince(w http.ResponseWriter, r *http.Request) (*time.Time, bool) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return nil, true
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
