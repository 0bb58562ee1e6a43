package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/stockdash/internal/interfaces"
	"github.com/bobmcallan/stockdash/internal/models"
	"github.com/bobmcallan/stockdash/internal/services/stocks"
)

const (
	defaultPriceWindow    = 365 * 24 * time.Hour
	defaultEarningsWindow = 14 * 24 * time.Hour
)

// sectorsResponse is the body of /api/stocks/{universe}/sectors.
type sectorsResponse struct {
	Universe  string                 `json:"universe"`
	Source    string                 `json:"source"`
	Cached    bool                   `json:"cached"`
	Timestamp time.Time              `json:"timestamp"`
	Sectors   []models.SectorSummary `json:"sectors"`
}

// handleStocks serves GET /api/stocks[?universe=u&refresh=true].
func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	universe := strings.TrimSpace(r.URL.Query().Get("universe"))
	if universe == "" {
		universe = s.app.Stocks.Universes()[0]
	}
	s.handleStockList(w, r, universe)
}

// handleStockList serves one universe's StockList envelope.
func (s *Server) handleStockList(w http.ResponseWriter, r *http.Request, universe string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	svc, ok := s.app.Stocks.Get(universe)
	if !ok {
		WriteError(w, http.StatusNotFound, "Unknown universe: "+universe)
		return
	}

	force := false
	if QueryBool(r, "refresh") {
		if _, _, authorized := s.authorizeRefresh(r); authorized {
			force = true
		} else {
			s.logger.Debug().Str("universe", universe).Msg("Ignoring unauthorised refresh=true")
		}
	}

	WriteJSON(w, http.StatusOK, svc.Get(r.Context(), force))
}

// handleSectors serves GET /api/stocks/{universe}/sectors.
func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request, universe string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	svc, ok := s.app.Stocks.Get(universe)
	if !ok {
		WriteError(w, http.StatusNotFound, "Unknown universe: "+universe)
		return
	}

	list := svc.Get(r.Context(), false)
	WriteJSON(w, http.StatusOK, sectorsResponse{
		Universe:  list.Universe,
		Source:    list.Source,
		Cached:    list.Cached,
		Timestamp: list.Timestamp,
		Sectors:   stocks.Sectors(list.Data),
	})
}

// handleStock serves GET /api/stock/{symbol}.
func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol, ok := pathSymbol(r, "/api/stock/")
	if !ok {
		WriteError(w, http.StatusNotFound, "Stock not found")
		return
	}

	detail, err := s.app.QuoteService.GetStock(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, interfaces.ErrUnknownSymbol) {
			WriteError(w, http.StatusNotFound, "Stock not found: "+symbol)
			return
		}
		s.logger.Error().Str("symbol", symbol).Err(err).Msg("Stock lookup failed")
		WriteError(w, http.StatusBadGateway, "Stock data unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}

// handlePrices serves GET /api/prices/{symbol}?from=&to=.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol, ok := pathSymbol(r, "/api/prices/")
	if !ok {
		WriteError(w, http.StatusNotFound, "Stock not found")
		return
	}

	today := day(s.now())
	from, to, errMsg := parseDateRange(r, today.Add(-defaultPriceWindow), today)
	if errMsg != "" {
		WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	WriteJSON(w, http.StatusOK, s.app.PriceService.History(r.Context(), symbol, from, to))
}

// handleEarnings serves GET /api/earnings?from=&to=.
func (s *Server) handleEarnings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	today := day(s.now())
	from, to, errMsg := parseDateRange(r, today, today.Add(defaultEarningsWindow))
	if errMsg != "" {
		WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	WriteJSON(w, http.StatusOK, s.app.EarningsService.Calendar(r.Context(), from, to))
}
