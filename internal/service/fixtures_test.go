package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/geocoder89/tasktracker/internal/access"
	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/geocoder89/tasktracker/internal/repo/memory"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *memory.Store
	tasks  *TaskService
	labels *LabelService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	log := discardLogger()

	return &fixture{
		store:  store,
		tasks:  NewTaskService(store, log),
		labels: NewLabelService(store, log),
	}
}

func (f *fixture) user(t *testing.T, username string, staff bool) access.Actor {
	t.Helper()

	u, err := f.store.CreateUser(context.Background(), user.New(username, "", "hash", staff))
	require.NoError(t, err)

	return access.Actor{UserID: u.ID, Username: u.Username, Staff: u.IsStaff}
}

func (f *fixture) label(t *testing.T, owner access.Actor, name string) label.Label {
	t.Helper()

	l, err := f.labels.Create(context.Background(), owner, label.CreateRequest{Name: name})
	require.NoError(t, err)
	return l
}

func ptr[T any](v T) *T {
	return &v
}

func requireValidation(t *testing.T, err error, field, msg string) {
	t.Helper()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, field, verr.Field)
	if msg != "" {
		require.Equal(t, msg, verr.Message)
	}
}

func requirePermission(t *testing.T, err error, msg string) {
	t.Helper()

	var perr *PermissionError
	require.ErrorAs(t, err, &perr)
	if msg != "" {
		require.Equal(t, msg, perr.Message)
	}
}
