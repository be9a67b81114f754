package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/tasktracker/internal/access"
	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/gin-gonic/gin"
)

type LabelService interface {
	List(ctx context.Context, actor access.Actor) ([]label.Label, error)
	Get(ctx context.Context, actor access.Actor, id string) (label.Label, error)
	Create(ctx context.Context, actor access.Actor, req label.CreateRequest) (label.Label, error)
	Update(ctx context.Context, actor access.Actor, id string, req label.UpdateRequest) (label.Label, error)
	Delete(ctx context.Context, actor access.Actor, id string) error
}

type LabelsHandler struct {
	labels LabelService
	log    *slog.Logger
}

func NewLabelsHandler(labels LabelService, log *slog.Logger) *LabelsHandler {
	return &LabelsHandler{labels: labels, log: log}
}

func (h *LabelsHandler) List(ctx *gin.Context) {
	actor, _, ok := actorAndID(ctx)
	if !ok {
		return
	}

	labels, err := h.labels.List(ctx.Request.Context(), actor)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, label.Views(labels))
}

func (h *LabelsHandler) Get(ctx *gin.Context) {
	actor, id, ok := actorAndID(ctx)
	if !ok {
		return
	}

	l, err := h.labels.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, l.View())
}

func (h *LabelsHandler) Create(ctx *gin.Context) {
	actor, _, ok := actorAndID(ctx)
	if !ok {
		return
	}

	var req label.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.labels.Create(ctx.Request.Context(), actor, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, created.View())
}

func (h *LabelsHandler) Replace(ctx *gin.Context) {
	h.update(ctx, true)
}

func (h *LabelsHandler) Patch(ctx *gin.Context) {
	h.update(ctx, false)
}

func (h *LabelsHandler) update(ctx *gin.Context, full bool) {
	actor, id, ok := actorAndID(ctx)
	if !ok {
		return
	}

	var req label.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	if full && !requireFields(ctx, req.MissingForReplace()) {
		return
	}

	updated, err := h.labels.Update(ctx.Request.Context(), actor, id, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, updated.View())
}

func (h *LabelsHandler) Delete(ctx *gin.Context) {
	actor, id, ok := actorAndID(ctx)
	if !ok {
		return
	}

	if err := h.labels.Delete(ctx.Request.Context(), actor, id); err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
