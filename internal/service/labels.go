package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/tasktracker/internal/access"
	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/geocoder89/tasktracker/internal/repo"
)

type LabelService struct {
	store repo.Store
	log   *slog.Logger
}

func NewLabelService(store repo.Store, log *slog.Logger) *LabelService {
	return &LabelService{store: store, log: log}
}

func (s *LabelService) List(ctx context.Context, actor access.Actor) ([]label.Label, error) {
	return s.store.ListLabels(ctx, access.VisibleTo(actor))
}

func (s *LabelService) Get(ctx context.Context, actor access.Actor, id string) (label.Label, error) {
	l, err := s.store.GetLabel(ctx, access.VisibleTo(actor), id)
	if errors.Is(err, label.ErrNotFound) {
		return label.Label{}, ErrNotFound
	}
	return l, err
}

func (s *LabelService) Create(ctx context.Context, actor access.Actor, req label.CreateRequest) (label.Label, error) {
	name, err := requireText("name", req.Name, label.MaxNameLength)
	if err != nil {
		return label.Label{}, err
	}

	ownerID := access.OwnerForCreate(actor, canonicalOwnerID(req.OwnerID))
	if ownerID != actor.UserID {
		if err := requireUser(ctx, s.store, ownerID); err != nil {
			return label.Label{}, err
		}
	}

	if err := s.ensureNameFree(ctx, ownerID, name, ""); err != nil {
		return label.Label{}, err
	}

	created, err := s.store.CreateLabel(ctx, label.New(name, ownerID))
	if err != nil {
		return label.Label{}, translateLabelWrite(err, ownerID)
	}

	s.log.InfoContext(ctx, "label created", "label_id", created.ID, "owner_id", created.OwnerID)
	return created, nil
}

func (s *LabelService) Update(ctx context.Context, actor access.Actor, id string, req label.UpdateRequest) (label.Label, error) {
	current, err := s.store.GetLabel(ctx, access.VisibleTo(actor), id)
	if errors.Is(err, label.ErrNotFound) {
		return label.Label{}, ErrNotFound
	}
	if err != nil {
		return label.Label{}, err
	}

	if !access.CanWrite(actor, current.OwnerID) {
		return label.Label{}, denied(msgPermissionDenied)
	}
	// Only the owner gets this far, so staff never reach the reassign override here.
	ownerID := canonicalOwnerID(req.OwnerID)
	if ownerID != nil && !access.CanReassign(actor, current.OwnerID) {
		return label.Label{}, denied(msgLabelOwnerChange)
	}

	next := current
	if req.Name != nil {
		next.Name, err = requireText("name", *req.Name, label.MaxNameLength)
		if err != nil {
			return label.Label{}, err
		}
	}
	if ownerID != nil && *ownerID != current.OwnerID {
		if err := requireUser(ctx, s.store, *ownerID); err != nil {
			return label.Label{}, err
		}
		next.OwnerID = *ownerID
	}

	// A rename is checked against the caller's labels; a clash at the new owner
	// after a transfer is caught by the unique constraint.
	if next.Name != current.Name {
		if err := s.ensureNameFree(ctx, actor.UserID, next.Name, id); err != nil {
			return label.Label{}, err
		}
	}

	updated, err := s.store.UpdateLabel(ctx, next)
	if err != nil {
		return label.Label{}, translateLabelWrite(err, next.OwnerID)
	}

	s.log.InfoContext(ctx, "label updated", "label_id", updated.ID)
	return updated, nil
}

// Delete removes the label; it disappears from every task that carried it.
func (s *LabelService) Delete(ctx context.Context, actor access.Actor, id string) error {
	current, err := s.store.GetLabel(ctx, access.VisibleTo(actor), id)
	if errors.Is(err, label.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if !access.CanWrite(actor, current.OwnerID) {
		return denied(msgPermissionDenied)
	}

	if err := s.store.DeleteLabel(ctx, id); err != nil {
		return translateLabelWrite(err, current.OwnerID)
	}

	s.log.InfoContext(ctx, "label deleted", "label_id", id)
	return nil
}

func (s *LabelService) ensureNameFree(ctx context.Context, ownerID, name, excludeID string) error {
	taken, err := s.store.LabelNameExists(ctx, ownerID, name, excludeID)
	if err != nil {
		return fmt.Errorf("check label name: %w", err)
	}
	if taken {
		return invalid("name", msgLabelNameTaken)
	}
	return nil
}

// translateLabelWrite turns a lost uniqueness race into the same error the pre-check reports.
func translateLabelWrite(err error, ownerID string) error {
	switch {
	case errors.Is(err, label.ErrNameTaken):
		return invalid("name", msgLabelNameTaken)
	case errors.Is(err, label.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, user.ErrNotFound):
		return unknownOwner(ownerID)
	}
	return err
}
