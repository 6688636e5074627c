// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the hilo backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/metrics", "/stats".
//   - Game endpoints: POST /game/new, POST /game/guess, POST /game/reset, GET /game/state.
//   - Daily endpoints: mounted under /daily.
//
// Notes:
//   - A session is only reachable through its signed handle (Bearer header or
//     the hilo_game cookie); the secret never appears in any response.
//   - Out-of-range guesses are a 422 with the valid bounds; the session is untouched.
//   - Wins are written to the history ledger best effort; failures are logged.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hilo/apps/go-server/internal/game"
	"github.com/robalobadob/hilo/apps/go-server/internal/history"
	"github.com/robalobadob/hilo/apps/go-server/internal/metrics"
	"github.com/robalobadob/hilo/apps/go-server/internal/store"
	"github.com/robalobadob/hilo/apps/go-server/internal/token"
)

const cookieName = "hilo_game"

// Options tunes the server. Zero values fall back to sensible defaults.
type Options struct {
	ClientOrigin  string             // CORS origin; default http://localhost:5173
	DefaultMax    int                // bound for /game/new without max; default game.DefaultMax
	DailyMax      int                // bound for the daily game; default game.DefaultMax
	DailySalt     string             // HMAC salt for the daily secret
	SecureCookies bool               // Secure + SameSite=None on the handle cookie
	NewSource     func() game.Source // secret source for normal games; default game.DefaultSource
	Now           func() time.Time   // clock; default time.Now
}

// Server bundles router, live session store, history ledger and token signer.
type Server struct {
	r       *chi.Mux
	store   store.Store
	history *history.Store
	tokens  *token.Signer
	metrics *metrics.Metrics
	opts    Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, hist *history.Store, tokens *token.Signer, m *metrics.Metrics, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.DefaultMax <= 0 {
		opts.DefaultMax = game.DefaultMax
	}
	if opts.DailyMax <= 0 {
		opts.DailyMax = game.DefaultMax
	}
	if opts.NewSource == nil {
		opts.NewSource = game.DefaultSource
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{r: chi.NewRouter(), store: st, history: hist, tokens: tokens, metrics: m, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))         // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"hilo-go","endpoints":["/health","POST /game/new","POST /game/guess","POST /game/reset","GET /game/state","/daily/*","/stats","/metrics"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Method(http.MethodGet, "/metrics", m.Handler())
	s.r.Get("/stats", s.handleStats)

	s.r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/guess", s.handleGuess)
		r.Post("/reset", s.handleReset)
		r.Get("/state", s.handleState)
	})

	s.mountDaily(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// RunSweeper drops sessions idle for longer than ttl, checking every
// ttl/4 (at least once a minute), until ctx is done.
func (s *Server) RunSweeper(ctx context.Context, ttl time.Duration) {
	every := ttl / 4
	if every <= 0 || every > time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.Sweep(ctx, s.opts.Now().Add(-ttl)); n > 0 {
				log.Info().Int("evicted", n).Msg("swept idle sessions")
			}
			s.metrics.ActiveSessions.Set(float64(s.store.Len()))
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("reqId", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new and POST /daily/new.
type newGameReq struct {
	Max *int `json:"max"` // optional; clamped to >= 1
}
type newGameRes struct {
	GameID    string    `json:"gameId"`
	Token     string    `json:"token"`
	Mode      string    `json:"mode"`
	Date      string    `json:"date,omitempty"`
	Max       int       `json:"max"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleNewGame creates a free-play session and hands back its handle.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	bound := s.opts.DefaultMax
	if req.Max != nil {
		bound = *req.Max
	}
	g := game.New(game.WithMax(bound), game.WithSource(s.opts.NewSource()))
	s.startSession(w, r, store.ModeNormal, "", g)
}

// startSession registers g, signs its handle and writes the response.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, mode store.Mode, date string, g *game.Session) {
	now := s.opts.Now()
	e := &store.Entry{
		ID:        uuid.NewString(),
		Mode:      mode,
		Date:      date,
		Session:   g,
		StartedAt: now,
		LastSeen:  now,
	}
	if err := s.store.Save(r.Context(), e); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.tokens.Sign(e.ID)
	if err != nil {
		log.Error().Err(err).Str("gameId", e.ID).Msg("sign handle")
		_ = s.store.Delete(r.Context(), e.ID)
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setHandleCookie(w, tok, exp)

	s.metrics.GamesStarted.WithLabelValues(string(mode)).Inc()
	s.metrics.ActiveSessions.Set(float64(s.store.Len()))
	log.Info().Str("gameId", e.ID).Str("mode", string(mode)).Int("max", g.Max()).Msg("game started")

	writeJSON(w, http.StatusOK, newGameRes{
		GameID:    e.ID,
		Token:     tok,
		Mode:      string(mode),
		Date:      date,
		Max:       g.Max(),
		ExpiresAt: exp,
	})
}

// guessReq payload for POST /game/guess. The response is game.Outcome.
type guessReq struct {
	Value *int `json:"value"`
}

// outOfRangeRes is the 422 body for a rejected guess.
type outOfRangeRes struct {
	Error string `json:"error"`
	Value int    `json:"value"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// handleGuess applies a guess and records the result on the first win.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	var (
		out    game.Outcome
		won    bool
		result history.Result
	)
	err := s.store.Update(r.Context(), id, func(e *store.Entry) error {
		wasWon := e.Session.Finished()
		var err error
		out, err = e.Session.Guess(*req.Value)
		if err != nil {
			return err
		}
		now := s.opts.Now()
		e.LastSeen = now
		if !wasWon && e.Session.Finished() {
			won = true
			result = history.Result{
				GameID:    e.HistoryID(),
				Mode:      string(e.Mode),
				Date:      e.Date,
				Max:       e.Session.Max(),
				Attempts:  out.Attempts,
				ElapsedMs: now.Sub(e.StartedAt).Milliseconds(),
			}
		}
		return nil
	})

	var oor *game.OutOfRangeError
	switch {
	case errors.As(err, &oor):
		s.metrics.Guesses.WithLabelValues("out_of_range").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, outOfRangeRes{
			Error: "out_of_range", Value: oor.Value, Min: 1, Max: oor.Max,
		})
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
		return
	case err != nil:
		log.Error().Err(err).Str("gameId", id).Msg("guess")
		writeError(w, http.StatusInternalServerError, "guess_failed")
		return
	}

	s.metrics.Guesses.WithLabelValues(string(out.Result)).Inc()
	if won {
		s.recordWin(r.Context(), result)
	}
	writeJSON(w, http.StatusOK, out)
}

// recordWin updates win metrics and writes the history row (best effort).
func (s *Server) recordWin(ctx context.Context, res history.Result) {
	s.metrics.GamesWon.WithLabelValues(res.Mode).Inc()
	s.metrics.AttemptsToWin.Observe(float64(res.Attempts))
	log.Info().Str("gameId", res.GameID).Int("attempts", res.Attempts).Msg("game won")
	if s.history == nil {
		return
	}
	if err := s.history.Insert(ctx, res); err != nil {
		log.Warn().Err(err).Str("gameId", res.GameID).Msg("record result")
	}
}

// resetReq payload for POST /game/reset.
type resetReq struct {
	Max *int `json:"max"` // optional; keeps the current bound when absent
}

// stateRes describes a session without revealing its secret.
type stateRes struct {
	GameID   string `json:"gameId"`
	Mode     string `json:"mode"`
	Date     string `json:"date,omitempty"`
	Max      int    `json:"max"`
	Attempts int    `json:"attempts"`
	State    string `json:"state"`
}

var (
	errDailyMaxFixed      = errors.New("daily bound is fixed")
	errDailyAlreadyPlayed = errors.New("daily game already played")
)

// handleReset starts a fresh game on an existing session.
// Daily sessions cannot change their bound, and once a guess has been made
// they can only be reset after the date rolls over.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req resetReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	var res stateRes
	err := s.store.Update(r.Context(), id, func(e *store.Entry) error {
		var opts []game.Option
		if e.Mode == store.ModeDaily {
			if req.Max != nil && *req.Max != e.Session.Max() {
				return errDailyMaxFixed
			}
			date, src := s.dailySource()
			if e.Date == date && e.Session.Attempts() > 0 {
				return errDailyAlreadyPlayed
			}
			e.Date = date
			opts = append(opts, game.WithSource(src))
		} else if req.Max != nil {
			opts = append(opts, game.WithMax(*req.Max))
		}
		e.Session.Reset(opts...)
		now := s.opts.Now()
		e.Round++
		e.StartedAt = now
		e.LastSeen = now
		res = describe(e)
		return nil
	})
	switch {
	case errors.Is(err, errDailyMaxFixed):
		writeError(w, http.StatusBadRequest, "daily_max_fixed")
		return
	case errors.Is(err, errDailyAlreadyPlayed):
		writeError(w, http.StatusConflict, "daily_already_played")
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "reset_failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleState reports max, attempts and lifecycle state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var res stateRes
	err := s.store.View(r.Context(), id, func(e *store.Entry) error {
		res = describe(e)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "state_failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func describe(e *store.Entry) stateRes {
	return stateRes{
		GameID:   e.ID,
		Mode:     string(e.Mode),
		Date:     e.Date,
		Max:      e.Session.Max(),
		Attempts: e.Session.Attempts(),
		State:    string(e.Session.State()),
	}
}

// statsRes is the GET /stats body.
type statsRes struct {
	history.Summary
	ActiveSessions int `json:"activeSessions"`
}

// handleStats aggregates the history ledger.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	res := statsRes{ActiveSessions: s.store.Len()}
	if s.history != nil {
		sum, err := s.history.Summary(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("summary")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		res.Summary = sum
	}
	writeJSON(w, http.StatusOK, res)
}

// ------------------------------ handles ------------------------------------

// sessionID resolves the caller's handle; it writes a 401 and returns false
// when the handle is missing or invalid.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := bearerOrCookie(r)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return "", false
	}
	id, err := s.tokens.Parse(raw)
	if err != nil {
		log.Debug().Err(err).Msg("reject handle")
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return "", false
	}
	return id, true
}

// setHandleCookie writes the handle cookie with appropriate security attributes.
func (s *Server) setHandleCookie(w http.ResponseWriter, tok string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.SecureCookies {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a handle from the Authorization header or cookie.
func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// ------------------------------- small util --------------------------------

// decodeOptional decodes a JSON body into v; an empty body is allowed.
func decodeOptional(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
