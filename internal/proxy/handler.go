package proxy

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const welcome = "Welcome to the proxy client for the task API"

type Upstream interface {
	Get(ctx context.Context, path, authorization string) ([]byte, error)
}

type Handler struct {
	upstream Upstream
	log      *slog.Logger
}

func NewHandler(upstream Upstream, log *slog.Logger) *Handler {
	return &Handler{upstream: upstream, log: log}
}

func (h *Handler) Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": welcome})
}

func (h *Handler) Tasks(ctx *gin.Context) {
	h.forward(ctx, "/tasks/")
}

func (h *Handler) Labels(ctx *gin.Context) {
	h.forward(ctx, "/labels/")
}

func (h *Handler) forward(ctx *gin.Context, path string) {
	body, err := h.upstream.Get(ctx.Request.Context(), path, ctx.GetHeader("Authorization"))
	if err != nil {
		status, detail := Translate(err)

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		h.log.Log(ctx.Request.Context(), level, "upstream call failed", "path", path, "status", status, "err", err)

		ctx.JSON(status, gin.H{"detail": detail})
		return
	}

	ctx.Data(http.StatusOK, "application/json", body)
}
