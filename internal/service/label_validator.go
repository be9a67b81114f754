package service

import (
	"context"
	"fmt"

	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/geocoder89/tasktracker/internal/domain/task"
	"github.com/geocoder89/tasktracker/internal/repo"
	"github.com/geocoder89/tasktracker/internal/utils"
)

// LabelValidator resolves requested label ids to labels owned by one user.
type LabelValidator struct {
	labels repo.LabelStore
}

func NewLabelValidator(labels repo.LabelStore) *LabelValidator {
	return &LabelValidator{labels: labels}
}

// Validate fails unless every id names a distinct label owned by ownerID.
// Duplicates count as a mismatch, including ids that differ only in case.
func (v *LabelValidator) Validate(ctx context.Context, ids []string, ownerID string) ([]label.Label, error) {
	if len(ids) == 0 {
		return []label.Label{}, nil
	}

	canonical := make([]string, 0, len(ids))
	for _, id := range ids {
		c, ok := utils.CanonicalUUID(id)
		if !ok {
			return nil, invalid("label_ids", msgLabelsNotOwned)
		}
		canonical = append(canonical, c)
	}
	ids = canonical

	matched, err := v.labels.FindOwnedLabels(ctx, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("find owned labels: %w", err)
	}

	if len(matched) != len(ids) {
		return nil, invalid("label_ids", msgLabelsNotOwned)
	}

	return matched, nil
}

// createLabelIDs reads label_ids on create, where anything but a list means no labels.
func createLabelIDs(in task.LabelIDs) ([]string, error) {
	if !in.Present || !in.IsList {
		return nil, nil
	}
	if in.BadItems {
		return nil, invalid("label_ids", msgLabelIDsItemType)
	}
	return in.IDs, nil
}

// updateLabelIDs reads label_ids on update. replace is false when the key was absent.
func updateLabelIDs(in task.LabelIDs) (ids []string, replace bool, err error) {
	if !in.Present {
		return nil, false, nil
	}
	if !in.IsList {
		return nil, false, invalid("label_ids", msgLabelIDsNotList)
	}
	if in.BadItems {
		return nil, false, invalid("label_ids", msgLabelIDsItemType)
	}
	return in.IDs, true, nil
}
