package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/tasktracker/internal/access"
	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/geocoder89/tasktracker/internal/domain/task"
	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/geocoder89/tasktracker/internal/repo"
	"github.com/geocoder89/tasktracker/internal/utils"
)

type TaskService struct {
	store repo.Store
	log   *slog.Logger
}

func NewTaskService(store repo.Store, log *slog.Logger) *TaskService {
	return &TaskService{store: store, log: log}
}

func (s *TaskService) List(ctx context.Context, actor access.Actor) ([]task.Task, error) {
	return s.store.ListTasks(ctx, access.VisibleTo(actor))
}

func (s *TaskService) Get(ctx context.Context, actor access.Actor, id string) (task.Task, error) {
	t, err := s.store.GetTask(ctx, access.VisibleTo(actor), id)
	if errors.Is(err, task.ErrNotFound) {
		return task.Task{}, ErrNotFound
	}
	return t, err
}

// Create validates the label set against the effective owner and stores the
// task and its labels in one transaction.
func (s *TaskService) Create(ctx context.Context, actor access.Actor, req task.CreateRequest) (task.Task, error) {
	title, err := requireText("title", req.Title, task.MaxTitleLength)
	if err != nil {
		return task.Task{}, err
	}
	req.Title = title
	req.OwnerID = canonicalOwnerID(req.OwnerID)

	ids, err := createLabelIDs(req.LabelIDs)
	if err != nil {
		return task.Task{}, err
	}

	ownerID := access.OwnerForCreate(actor, req.OwnerID)

	var created task.Task
	err = s.store.WithinTx(ctx, func(tx repo.Store) error {
		if ownerID != actor.UserID {
			if err := requireUser(ctx, tx, ownerID); err != nil {
				return err
			}
		}

		labels, err := NewLabelValidator(tx).Validate(ctx, ids, ownerID)
		if err != nil {
			return err
		}

		created, err = tx.CreateTask(ctx, task.New(req, ownerID, labels))
		return translateTaskWrite(err, ownerID)
	})
	if err != nil {
		return task.Task{}, err
	}

	s.log.InfoContext(ctx, "task created", "task_id", created.ID, "owner_id", created.OwnerID, "labels", len(created.Labels))
	return created, nil
}

// Update applies a full or partial update. Only fields present in req change;
// a present label_ids replaces the whole label set with labels the caller owns.
func (s *TaskService) Update(ctx context.Context, actor access.Actor, id string, req task.UpdateRequest) (task.Task, error) {
	if req.Title != nil {
		title, err := requireText("title", *req.Title, task.MaxTitleLength)
		if err != nil {
			return task.Task{}, err
		}
		req.Title = &title
	}
	req.OwnerID = canonicalOwnerID(req.OwnerID)

	ids, replaceLabels, err := updateLabelIDs(req.LabelIDs)
	if err != nil {
		return task.Task{}, err
	}

	var updated task.Task
	err = s.store.WithinTx(ctx, func(tx repo.Store) error {
		current, err := tx.GetTask(ctx, access.VisibleTo(actor), id)
		if errors.Is(err, task.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if !access.CanWrite(actor, current.OwnerID) {
			return denied(msgPermissionDenied)
		}
		// Only the owner gets this far, so staff never reach the reassign override here.
		if req.OwnerID != nil && !access.CanReassign(actor, current.OwnerID) {
			return denied(msgTaskOwnerChange)
		}

		if req.OwnerID != nil && *req.OwnerID != current.OwnerID {
			if err := requireUser(ctx, tx, *req.OwnerID); err != nil {
				return err
			}
			current.OwnerID = *req.OwnerID
		}

		current.Apply(req)

		var labels []label.Label
		if replaceLabels {
			labels, err = NewLabelValidator(tx).Validate(ctx, ids, actor.UserID)
			if err != nil {
				return err
			}
		}

		if err := translateTaskWrite(tx.UpdateTask(ctx, current), current.OwnerID); err != nil {
			return err
		}

		if replaceLabels {
			if err := translateTaskWrite(tx.ReplaceTaskLabels(ctx, id, label.IDs(labels)), current.OwnerID); err != nil {
				return err
			}
		}

		updated, err = tx.GetTask(ctx, access.Scope{}, id)
		return err
	})
	if err != nil {
		return task.Task{}, err
	}

	s.log.InfoContext(ctx, "task updated", "task_id", updated.ID, "labels_replaced", replaceLabels)
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, actor access.Actor, id string) error {
	current, err := s.store.GetTask(ctx, access.VisibleTo(actor), id)
	if errors.Is(err, task.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if !access.CanWrite(actor, current.OwnerID) {
		return denied(msgPermissionDenied)
	}

	err = s.store.DeleteTask(ctx, id)
	if errors.Is(err, task.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "task deleted", "task_id", id)
	return nil
}

func canonicalOwnerID(id *string) *string {
	if id == nil {
		return nil
	}
	if c, ok := utils.CanonicalUUID(*id); ok {
		return &c
	}
	return id
}

func requireUser(ctx context.Context, users repo.UserStore, id string) error {
	_, err := users.GetUserByID(ctx, id)
	if errors.Is(err, user.ErrNotFound) {
		return unknownOwner(id)
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	return nil
}

// translateTaskWrite maps foreign key failures that slipped past validation
// (a concurrent delete) to the same errors validation would have produced.
func translateTaskWrite(err error, ownerID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, label.ErrNotFound):
		return invalid("label_ids", msgLabelsNotOwned)
	case errors.Is(err, user.ErrNotFound):
		return unknownOwner(ownerID)
	case errors.Is(err, task.ErrNotFound):
		return ErrNotFound
	}
	return err
}
