package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/coconutick512/bot-for-crypt/internal/metrics"
	"github.com/coconutick512/bot-for-crypt/internal/report"
	"github.com/coconutick512/bot-for-crypt/internal/storage"
	syncer "github.com/coconutick512/bot-for-crypt/internal/sync"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port          int
	Host          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	EnableMetrics bool
	EnableHealth  bool
}

// HTTPServer is the thin HTTP surface over the sync subsystem. Routes map
// 1:1 to the exposed operations; no business logic lives here.
type HTTPServer struct {
	config         *ServerConfig
	storage        storage.Storage
	sync           *syncer.Manager
	aggregator     *report.Aggregator
	balances       *report.BalanceResolver
	metricsManager *metrics.Manager
	router         *mux.Router
	server         *http.Server
	logger         *logrus.Entry
	startTime      time.Time
}

// NewHTTPServer creates a new HTTP server
func NewHTTPServer(cfg *ServerConfig, store storage.Storage, sync *syncer.Manager,
	aggregator *report.Aggregator, balances *report.BalanceResolver, m *metrics.Manager) *HTTPServer {

	s := &HTTPServer{
		config:         cfg,
		storage:        store,
		sync:           sync,
		aggregator:     aggregator,
		balances:       balances,
		metricsManager: m,
		logger:         utils.ComponentLogger("server"),
		startTime:      time.Now(),
	}

	s.setupRouter()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupRouter sets up the HTTP routes
func (s *HTTPServer) setupRouter() {
	s.router = mux.NewRouter()
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.metricsMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()

	if s.config.EnableHealth {
		api.HandleFunc("/health", s.healthHandler).Methods("GET")
	}
	api.HandleFunc("/stats", s.statsHandler).Methods("GET")

	api.HandleFunc("/wallets", s.listWalletsHandler).Methods("GET")
	api.HandleFunc("/wallets/{id}/sync", s.syncWalletHandler).Methods("POST")
	api.HandleFunc("/balance/{walletId}/{token}", s.getBalanceHandler).Methods("GET")
	api.HandleFunc("/report", s.buildReportHandler).Methods("POST")

	if s.config.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}
}

// Start starts the HTTP server
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"address":         s.server.Addr,
		"metrics_enabled": s.config.EnableMetrics,
	}).Info("Starting HTTP server")

	errChan := make(chan error, 1)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithField("error", err.Error()).Error("HTTP server error")
			errChan <- err
		}
	}()

	// Give the server a moment to surface immediate binding errors
	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Stop stops the HTTP server gracefully
func (s *HTTPServer) Stop() error {
	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Handlers

func (s *HTTPServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthy := s.storage.Ping() == nil

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	if s.metricsManager != nil {
		s.metricsManager.GetPrometheusMetrics().UpdateComponentHealth("storage", healthy)
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":    state,
		"uptime":    time.Since(s.startTime).String(),
		"timestamp": time.Now().UTC(),
	})
}

func (s *HTTPServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.storage.GetLedgerStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *HTTPServer) listWalletsHandler(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.storage.GetWallets(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, wallets)
}

func (s *HTTPServer) syncWalletHandler(w http.ResponseWriter, r *http.Request) {
	walletID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, utils.NewAppError(utils.ErrCodeValidation, "wallet id must be an integer"))
		return
	}

	if err := s.sync.Synchronize(r.Context(), walletID); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "synchronized"})
}

func (s *HTTPServer) getBalanceHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	walletID, err := strconv.ParseInt(vars["walletId"], 10, 64)
	if err != nil {
		s.writeError(w, utils.NewAppError(utils.ErrCodeValidation, "wallet id must be an integer"))
		return
	}

	balance, err := s.balances.GetBalance(r.Context(), walletID, vars["token"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"balance": balance.String()})
}

// reportRequest is the report query body
type reportRequest struct {
	WalletID  int64  `json:"walletId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (s *HTTPServer) buildReportHandler(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, utils.NewAppError(utils.ErrCodeValidation, "invalid report request body", err.Error()))
		return
	}

	from, err := parseDate(req.StartDate)
	if err != nil {
		s.writeError(w, utils.NewAppError(utils.ErrCodeValidation, "invalid start date", req.StartDate))
		return
	}
	to, err := parseDate(req.EndDate)
	if err != nil {
		s.writeError(w, utils.NewAppError(utils.ErrCodeValidation, "invalid end date", req.EndDate))
		return
	}
	// An end date without a time component covers the whole day
	if to.Hour() == 0 && to.Minute() == 0 && to.Second() == 0 {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	result, err := s.aggregator.BuildReport(r.Context(), req.WalletID, from, to)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// parseDate accepts RFC 3339 timestamps and plain dates
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// writeJSON writes a JSON response
func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithField("error", err.Error()).Error("Failed to encode response")
	}
}

// writeError maps taxonomy error codes onto HTTP statuses
func (s *HTTPServer) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := utils.ErrCodeInternal
	message := err.Error()

	if appErr, ok := err.(*utils.AppError); ok {
		code = appErr.Code
		message = appErr.Message
		switch appErr.Code {
		case utils.ErrCodeWalletNotFound:
			status = http.StatusNotFound
		case utils.ErrCodeUnsupportedNetwork, utils.ErrCodeUnsupportedToken, utils.ErrCodeValidation:
			status = http.StatusBadRequest
		case utils.ErrCodeExternalSource:
			status = http.StatusBadGateway
		}
	}

	s.writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}
