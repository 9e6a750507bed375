package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkarpenko/sweeper/internal/config"
	"github.com/mkarpenko/sweeper/internal/middleware"
	"github.com/mkarpenko/sweeper/internal/repository"
)

var (
	ErrBadAuthBody     = fmt.Errorf("request body must contain url-encoded username and password")
	ErrPasswordTooLong = fmt.Errorf("password too long")
	ErrUsernameTaken   = fmt.Errorf("username taken")
	ErrBadCredentials  = fmt.Errorf("invalid username or password")
)

type Auth struct {
	logger *slog.Logger
	repo   *repository.Queries
	auth   *config.Auth
}

func NewAuth(logger *slog.Logger, db *pgxpool.Pool, auth *config.Auth) *Auth {
	return &Auth{
		logger: logger,
		repo:   repository.New(db),
		auth:   auth,
	}
}

type playerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *playerInfo `json:"player,omitempty"`
}

func (h Auth) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		h.auth.Clear(w)
		sendJSONOrLog(w, h.logger, status{LoggedIn: false})
		return
	}
	token, err := h.auth.Sign(claims)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to re-sign checked claims", "error", err)
		return
	}
	h.auth.Refresh(w, token)
	sendJSONOrLog(w, h.logger, status{
		LoggedIn: true,
		Player:   &playerInfo{claims.PlayerId, claims.Username},
	})
}

func credentials(r *http.Request) (username, password string, err error) {
	if err := r.ParseForm(); err != nil {
		return "", "", ErrBadAuthBody
	}
	username = r.FormValue("username")
	password = r.FormValue("password")
	if username == "" || password == "" {
		return "", "", ErrBadAuthBody
	}
	// bcrypt refuses anything longer.
	if len([]byte(password)) > 72 {
		return "", "", ErrPasswordTooLong
	}
	return username, password, nil
}

func (h Auth) Register(w http.ResponseWriter, r *http.Request) {
	username, password, err := credentials(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to hash password", "error", err)
		return
	}

	player, err := h.repo.CreatePlayer(r.Context(), username, hash)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		w.WriteHeader(http.StatusConflict)
		sendJSONOrLog(w, h.logger, wrapError(ErrUsernameTaken))
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to insert player", "error", err)
		return
	}

	h.signIn(w, player)
}

func (h Auth) Login(w http.ResponseWriter, r *http.Request) {
	username, password, err := credentials(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, h.logger, wrapError(err))
		return
	}

	player, err := h.repo.GetPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusUnauthorized)
		sendJSONOrLog(w, h.logger, wrapError(ErrBadCredentials))
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to fetch player", "error", err)
		return
	}

	if bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(password)) != nil {
		w.WriteHeader(http.StatusUnauthorized)
		sendJSONOrLog(w, h.logger, wrapError(ErrBadCredentials))
		return
	}

	h.signIn(w, player)
}

func (h Auth) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h Auth) signIn(w http.ResponseWriter, player *repository.Player) {
	token, err := h.auth.Sign(
		config.NewPlayerClaims(player.PlayerId, player.Username),
	)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to sign token", "error", err)
		return
	}
	h.auth.Refresh(w, token)
	sendJSONOrLog(w, h.logger, playerInfo{player.PlayerId, player.Username})
}
