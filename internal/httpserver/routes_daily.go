// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the daily game.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start a session on today's shared secret
//   - GET  /daily/leaderboard → best results for today (or ?date=YYYY-MM-DD)
//
// Guesses, resets and state use the regular /game routes with the daily handle.

package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hilo/apps/go-server/internal/daily"
	"github.com/robalobadob/hilo/apps/go-server/internal/game"
	"github.com/robalobadob/hilo/apps/go-server/internal/history"
	"github.com/robalobadob/hilo/apps/go-server/internal/store"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleDailyLeaderboard)
	})
}

// dailySource returns today's date key and the matching secret source.
func (s *Server) dailySource() (string, game.Source) {
	now := s.opts.Now()
	return daily.DateKey(now), daily.NewSource(now, s.opts.DailySalt)
}

// handleDailyNew starts a daily session. The bound is fixed by configuration.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	date, src := s.dailySource()
	g := game.New(game.WithMax(s.opts.DailyMax), game.WithSource(src))
	s.startSession(w, r, store.ModeDaily, date, g)
}

// leaderboardRes is the GET /daily/leaderboard body.
type leaderboardRes struct {
	Date string          `json:"date"`
	Rows []history.LBRow `json:"rows"`
}

// handleDailyLeaderboard lists the best results for a date (default today).
// Optional query params: date=YYYY-MM-DD, limit=N (default 20, max 100).
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.opts.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = min(n, 100)
	}

	res := leaderboardRes{Date: date, Rows: []history.LBRow{}}
	if s.history != nil {
		rows, err := s.history.Leaderboard(r.Context(), date, limit)
		if err != nil {
			log.Error().Err(err).Str("date", date).Msg("leaderboard")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		res.Rows = rows
	}
	writeJSON(w, http.StatusOK, res)
}
