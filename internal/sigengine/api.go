package sigengine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"signal-systemv1/internal/strategy"
)

// StartHTTP launches the diagnostics HTTP server: trend queries, recent
// signals, and live strategy config updates.
func (svc *Service) StartHTTP(ctx context.Context, addr string) {
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/trend", svc.handleTrend)
		mux.HandleFunc("/signals/recent", svc.handleRecentSignals)
		mux.HandleFunc("/config", svc.handleConfig)
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "ok")
		})
		log.Printf("[sigengine] HTTP server on %s (/trend, /signals/recent, /config)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("[sigengine] HTTP server error: %v", err)
		}
	}()
}

// handleTrend handles GET /trend?symbol=X&field=rsi&lookback_sec=30.
func (svc *Service) handleTrend(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	field := r.URL.Query().Get("field")
	if symbol == "" || field == "" {
		http.Error(w, "symbol and field required", http.StatusBadRequest)
		return
	}
	lookback := 30
	if v := r.URL.Query().Get("lookback_sec"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid lookback_sec", http.StatusBadRequest)
			return
		}
		lookback = n
	}

	stats, err := svc.history.Stats(symbol, field, time.Duration(lookback)*time.Second)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleRecentSignals handles GET /signals/recent?limit=N.
func (svc *Service) handleRecentSignals(w http.ResponseWriter, r *http.Request) {
	if svc.sqlReader == nil {
		http.Error(w, "signal store unavailable", http.StatusServiceUnavailable)
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	signals, err := svc.sqlReader.ReadRecent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(signals)
}

// handleConfig handles GET and PUT /config?symbol=X&strategy=scalping.
func (svc *Service) handleConfig(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	kind := strategy.Kind(r.URL.Query().Get("strategy"))
	if symbol == "" || kind == "" {
		http.Error(w, "symbol and strategy required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		cfg := svc.provider.GetConditions(symbol, kind)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cfg)

	case http.MethodPut:
		var cfg strategy.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		var err error
		if svc.configStore != nil {
			err = svc.configStore.Set(r.Context(), symbol, kind, cfg)
		} else {
			err = svc.provider.SetConditions(symbol, kind, cfg)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})

	default:
		http.Error(w, "GET or PUT only", http.StatusMethodNotAllowed)
	}
}
