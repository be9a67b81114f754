package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/geocoder89/tasktracker/internal/service"
	"github.com/gin-gonic/gin"
)

type Registrar interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Authenticate(ctx context.Context, username, password string) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, username string, staff bool) (string, error)
	AccessTTL() time.Duration
}

type AccountsHandler struct {
	accounts Registrar
	tokens   TokenIssuer
	log      *slog.Logger
}

func NewAccountsHandler(accounts Registrar, tokens TokenIssuer, log *slog.Logger) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, tokens: tokens, log: log}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *AccountsHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	created, err := h.accounts.Register(cctx, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, created.Registered())
}

func (h *AccountsHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.accounts.Authenticate(cctx, req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		RespondUnauthorized(ctx, "Invalid username or password.")
		return
	}
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	token, err := h.tokens.GenerateAccessToken(u.ID, u.Username, u.IsStaff)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "issue access token", "user_id", u.ID, "err", err)
		RespondInternal(ctx, "Could not issue token.")
		return
	}

	ctx.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokens.AccessTTL().Seconds()),
	})
}
