// Package repo defines the persistence contract shared by the postgres and
// in-memory stores. Every listing and detail lookup takes an access.Scope so
// ownership filtering happens in the query, not after it.
package repo

import (
	"context"

	"github.com/geocoder89/tasktracker/internal/access"
	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/geocoder89/tasktracker/internal/domain/task"
	"github.com/geocoder89/tasktracker/internal/domain/user"
)

type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
}

type LabelStore interface {
	ListLabels(ctx context.Context, scope access.Scope) ([]label.Label, error)
	GetLabel(ctx context.Context, scope access.Scope, id string) (label.Label, error)
	// FindOwnedLabels returns the labels among ids that belong to ownerID.
	FindOwnedLabels(ctx context.Context, ownerID string, ids []string) ([]label.Label, error)
	// LabelNameExists ignores the row with excludeID, if any.
	LabelNameExists(ctx context.Context, ownerID, name, excludeID string) (bool, error)
	CreateLabel(ctx context.Context, l label.Label) (label.Label, error)
	UpdateLabel(ctx context.Context, l label.Label) (label.Label, error)
	DeleteLabel(ctx context.Context, id string) error
}

type TaskStore interface {
	ListTasks(ctx context.Context, scope access.Scope) ([]task.Task, error)
	GetTask(ctx context.Context, scope access.Scope, id string) (task.Task, error)
	// CreateTask persists the task row and its label associations.
	CreateTask(ctx context.Context, t task.Task) (task.Task, error)
	// UpdateTask writes scalar fields and owner, and refreshes updated_at.
	UpdateTask(ctx context.Context, t task.Task) error
	// ReplaceTaskLabels swaps the whole label set of a task.
	ReplaceTaskLabels(ctx context.Context, taskID string, labelIDs []string) error
	DeleteTask(ctx context.Context, id string) error
}

type Store interface {
	UserStore
	LabelStore
	TaskStore

	// WithinTx runs fn against a store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Store) error) error
}
