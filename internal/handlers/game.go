package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkarpenko/sweeper/internal/config"
	"github.com/mkarpenko/sweeper/internal/game"
	"github.com/mkarpenko/sweeper/internal/gen"
	"github.com/mkarpenko/sweeper/internal/middleware"
	"github.com/mkarpenko/sweeper/internal/repository"
)

type Game struct {
	logger   *slog.Logger
	repo     *repository.Queries
	rnd      *rand.Rand
	opts     gen.Options
	upgrader *websocket.Upgrader
}

func NewGame(
	logger *slog.Logger, db *pgxpool.Pool, rnd *rand.Rand, opts gen.Options,
) *Game {
	opts.Logger = logger
	return &Game{
		logger:   logger,
		repo:     repository.New(db),
		rnd:      rnd,
		opts:     opts,
		upgrader: config.NewUpgrader(),
	}
}

// New creates a session with no mines placed yet; the layout appears
// on the first open move so the clicked cell can anchor the search.
func (g Game) New(w http.ResponseWriter, r *http.Request) {
	params, err := parseQuery[NewGameParams](r.URL.Query())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	state, err := game.New(game.Params{
		Rows:      params.Rows,
		Cols:      params.Cols,
		MineCount: params.MineCount,
	})
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	var playerId *int64
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		playerId = &claims.PlayerId
	}

	session, err := g.repo.CreateSession(r.Context(), playerId, state)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to create game session", "error", err)
		return
	}

	sendJSONOrLog(w, g.logger, sessionDTO(session, state))
}

func (g Game) fetch(w http.ResponseWriter, r *http.Request) (*repository.GameSession, *game.State, bool) {
	sessionId, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, nil, false
	}
	session, err := g.repo.GetSession(r.Context(), sessionId)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return nil, nil, false
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to fetch session", "error", err)
		return nil, nil, false
	}
	state, err := game.Decode(session.State)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("db returned invalid session state", "error", err)
		return nil, nil, false
	}
	return session, state, true
}

func (g Game) save(
	w http.ResponseWriter, r *http.Request,
	session *repository.GameSession, state *game.State,
) bool {
	if state.Over() && session.EndedAt == nil {
		now := time.Now().UTC()
		session.EndedAt = &now
	}
	if err := g.repo.UpdateSession(
		r.Context(), session.SessionId, state, session.EndedAt,
	); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to update session", "error", err)
		return false
	}
	return true
}

func (g Game) Fetch(w http.ResponseWriter, r *http.Request) {
	session, state, ok := g.fetch(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, g.logger, sessionDTO(session, state))
}

func (g Game) Move(w http.ResponseWriter, r *http.Request) {
	params, err := parseQuery[MoveParams](r.URL.Query())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(err))
		return
	}

	session, state, ok := g.fetch(w, r)
	if !ok {
		return
	}

	pos := PosParams{Row: params.Row, Col: params.Col}.Position()
	if !state.ValidatePosition(pos) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch params.Move {
	case "open":
		if err := state.Open(pos, g.rnd, g.opts); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			g.logger.Error("unable to open cell", "error", err)
			return
		}
	case "flag":
		state.Flag(pos)
	case "chord":
		state.Chord(pos, g.rnd, g.opts)
	default:
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.logger, wrapError(
			fmt.Errorf("unknown move %q", params.Move)))
		return
	}

	if state.Over() {
		state.RevealMines()
	}
	if !g.save(w, r, session, state) {
		return
	}
	sendJSONOrLog(w, g.logger, sessionDTO(session, state))
}

// Hint serves one suggestion off the edge-candidate index.
func (g Game) Hint(w http.ResponseWriter, r *http.Request) {
	session, state, ok := g.fetch(w, r)
	if !ok {
		return
	}

	p, shouldFlag, found := state.Hint(g.rnd)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		sendJSONOrLog(w, g.logger, wrapError(fmt.Errorf("no hint available")))
		return
	}
	if !g.save(w, r, session, state) {
		return
	}
	sendJSONOrLog(w, g.logger, map[string]any{
		"row":         p.Row,
		"col":         p.Col,
		"should_flag": shouldFlag,
	})
}

func (g Game) Forfeit(w http.ResponseWriter, r *http.Request) {
	session, state, ok := g.fetch(w, r)
	if !ok {
		return
	}
	state.Forfeit()
	if !g.save(w, r, session, state) {
		return
	}
	sendJSONOrLog(w, g.logger, sessionDTO(session, state))
}

func (g Game) Highscores(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filters repository.HighscoreFilters
	if username := query.Get("username"); username != "" {
		filters.Username = &username
	}
	if params, err := parseQuery[NewGameParams](query); err == nil {
		filters.Rows = &params.Rows
		filters.Cols = &params.Cols
		filters.MineCount = &params.MineCount
	}
	scores, err := g.repo.Highscores(r.Context(), filters)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to fetch highscores", "error", err)
		return
	}
	sendJSONOrLog(w, g.logger, scores)
}
