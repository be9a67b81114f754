package task

import (
	"errors"
	"time"

	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/google/uuid"
)

const MaxTitleLength = 200

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Any status may move to any other; only membership is checked.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Task struct {
	ID            string
	Title         string
	Description   *string
	Status        Status
	OwnerID       string
	OwnerUsername string
	Labels        []label.Label
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type View struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      *string      `json:"description"`
	CompletionStatus Status       `json:"completion_status"`
	Owner            user.Summary `json:"owner"`
	Labels           []label.View `json:"labels"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

var ErrNotFound = errors.New("task not found")

type CreateRequest struct {
	Title            string   `json:"title" binding:"required,max=200"`
	Description      *string  `json:"description"`
	CompletionStatus Status   `json:"completion_status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	OwnerID          *string  `json:"owner_id" binding:"omitempty,uuid"`
	LabelIDs         LabelIDs `json:"label_ids"`
}

// UpdateRequest serves both PUT and PATCH; nil fields are left untouched.
// A null description clears it.
type UpdateRequest struct {
	Title            *string        `json:"title" binding:"omitempty,min=1,max=200"`
	Description      OptionalString `json:"description"`
	CompletionStatus *Status        `json:"completion_status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	OwnerID          *string        `json:"owner_id" binding:"omitempty,uuid"`
	LabelIDs         LabelIDs       `json:"label_ids"`
}

func (r UpdateRequest) MissingForReplace() []string {
	if r.Title == nil {
		return []string{"title"}
	}
	return nil
}

func New(req CreateRequest, ownerID string, labels []label.Label) Task {
	now := time.Now().UTC()

	status := req.CompletionStatus
	if status == "" {
		status = StatusTodo
	}

	return Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		OwnerID:     ownerID,
		Labels:      labels,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply patches the scalar fields present in req. Labels and owner are handled by the caller.
func (t *Task) Apply(req UpdateRequest) {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description.Set {
		t.Description = req.Description.Value
	}
	if req.CompletionStatus != nil {
		t.Status = *req.CompletionStatus
	}
}

func (t Task) View() View {
	return View{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		CompletionStatus: t.Status,
		Owner:            user.Summary{ID: t.OwnerID, Username: t.OwnerUsername},
		Labels:           label.Views(t.Labels),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func Views(tasks []Task) []View {
	out := make([]View, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.View())
	}
	return out
}
