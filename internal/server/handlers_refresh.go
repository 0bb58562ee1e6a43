package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/stockdash/internal/app"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// refreshResponse is the body of /api/cron/refresh.
type refreshResponse struct {
	Results   []app.RefreshResult `json:"results"`
	Timestamp time.Time           `json:"timestamp"`
}

// handleCronRefresh serves GET|POST /api/cron/refresh. Every pipeline is
// force-refreshed and rewritten to the cache.
func (s *Server) handleCronRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if status, msg, ok := s.authorizeRefresh(r); !ok {
		if status == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		WriteError(w, status, msg)
		return
	}

	s.logger.Info().Msg("Scheduled refresh started")
	results := s.app.RefreshAll(r.Context())
	s.logger.Info().Int("pipelines", len(results)).Msg("Scheduled refresh complete")

	WriteJSON(w, http.StatusOK, refreshResponse{Results: results, Timestamp: s.now().UTC()})
}

// authorizeRefresh checks the bearer token against refresh.secret and
// refresh.secret_hash. The token may be the secret itself or an HS256 JWT
// signed with it. With no secret configured refresh is open except in
// production.
func (s *Server) authorizeRefresh(r *http.Request) (int, string, bool) {
	cfg := s.app.Config.Refresh
	if !cfg.HasSecret() {
		if s.app.Config.IsProduction() {
			return http.StatusForbidden, "Refresh secret not configured", false
		}
		s.logger.Warn().Msg("Refresh endpoint has no secret configured, allowing request")
		return 0, "", true
	}

	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return http.StatusUnauthorized, "Missing bearer token", false
	}

	if cfg.Secret != "" && subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Secret)) == 1 {
		return 0, "", true
	}
	if cfg.SecretHash != "" && bcrypt.CompareHashAndPassword([]byte(cfg.SecretHash), []byte(token)) == nil {
		return 0, "", true
	}
	if cfg.Secret != "" {
		if err := validateJWT(token, []byte(cfg.Secret)); err == nil {
			return 0, "", true
		}
	}

	s.logger.Warn().Str("remote", r.RemoteAddr).Msg("Rejected refresh request with invalid token")
	return http.StatusUnauthorized, "Invalid bearer token", false
}

// validateJWT parses an HS256 token and checks its signature and expiry.
func validateJWT(tokenString string, secret []byte) error {
	_, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err
}
