package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/stockdash/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Stock lists
	mux.HandleFunc("/api/stocks/", s.routeStocks)
	mux.HandleFunc("/api/stocks", s.handleStocks)

	// Single symbol data
	mux.HandleFunc("/api/stock/", s.handleStock)
	mux.HandleFunc("/api/prices/", s.handlePrices)
	mux.HandleFunc("/api/earnings", s.handleEarnings)

	// Scheduled refresh
	mux.HandleFunc("/api/cron/refresh", s.handleCronRefresh)
}

// routeStocks dispatches /api/stocks/{universe} and /api/stocks/{universe}/sectors.
func (s *Server) routeStocks(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/stocks/"), "/")
	if path == "" {
		s.handleStocks(w, r)
		return
	}

	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		s.handleStockList(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "sectors":
		s.handleSectors(w, r, parts[0])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetBuildInfo())
}
