package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/tasktracker/internal/access"
	"github.com/geocoder89/tasktracker/internal/domain/task"
	"github.com/geocoder89/tasktracker/internal/http/middlewares"
	"github.com/geocoder89/tasktracker/internal/utils"
	"github.com/gin-gonic/gin"
)

type TaskService interface {
	List(ctx context.Context, actor access.Actor) ([]task.Task, error)
	Get(ctx context.Context, actor access.Actor, id string) (task.Task, error)
	Create(ctx context.Context, actor access.Actor, req task.CreateRequest) (task.Task, error)
	Update(ctx context.Context, actor access.Actor, id string, req task.UpdateRequest) (task.Task, error)
	Delete(ctx context.Context, actor access.Actor, id string) error
}

type TasksHandler struct {
	tasks TaskService
	log   *slog.Logger
}

func NewTasksHandler(tasks TaskService, log *slog.Logger) *TasksHandler {
	return &TasksHandler{tasks: tasks, log: log}
}

// actorAndID resolves the caller and the :id path param. Malformed ids are
// reported like unknown ones.
func actorAndID(ctx *gin.Context) (access.Actor, string, bool) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Authentication credentials were not provided.")
		return access.Actor{}, "", false
	}

	id := ctx.Param("id")
	if id == "" {
		return actor, "", true
	}

	canonical, ok := utils.CanonicalUUID(id)
	if !ok {
		RespondNotFound(ctx)
		return access.Actor{}, "", false
	}

	return actor, canonical, true
}

func (h *TasksHandler) List(ctx *gin.Context) {
	actor, _, ok := actorAndID(ctx)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(ctx.Request.Context(), actor)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, task.Views(tasks))
}

func (h *TasksHandler) Get(ctx *gin.Context) {
	actor, id, ok := actorAndID(ctx)
	if !ok {
		return
	}

	t, err := h.tasks.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, t.View())
}

func (h *TasksHandler) Create(ctx *gin.Context) {
	actor, _, ok := actorAndID(ctx)
	if !ok {
		return
	}

	var req task.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.tasks.Create(ctx.Request.Context(), actor, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, created.View())
}

// Replace handles PUT: title must be present, everything else is optional.
func (h *TasksHandler) Replace(ctx *gin.Context) {
	h.update(ctx, true)
}

func (h *TasksHandler) Patch(ctx *gin.Context) {
	h.update(ctx, false)
}

func (h *TasksHandler) update(ctx *gin.Context, full bool) {
	actor, id, ok := actorAndID(ctx)
	if !ok {
		return
	}

	var req task.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	if full && !requireFields(ctx, req.MissingForReplace()) {
		return
	}

	updated, err := h.tasks.Update(ctx.Request.Context(), actor, id, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, updated.View())
}

func (h *TasksHandler) Delete(ctx *gin.Context) {
	actor, id, ok := actorAndID(ctx)
	if !ok {
		return
	}

	if err := h.tasks.Delete(ctx.Request.Context(), actor, id); err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
