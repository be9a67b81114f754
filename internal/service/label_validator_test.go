package service

import (
	"context"
	"testing"

	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/geocoder89/tasktracker/internal/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelValidator_Validate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice", false)
	bob := f.user(t, "bob", false)

	work := f.label(t, alice, "Work")
	home := f.label(t, alice, "Home")
	foreign := f.label(t, bob, "Work")

	v := NewLabelValidator(f.store)

	t.Run("empty list matches nothing and passes", func(t *testing.T) {
		got, err := v.Validate(ctx, nil, alice.UserID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("owned labels resolve", func(t *testing.T) {
		got, err := v.Validate(ctx, []string{work.ID, home.ID}, alice.UserID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{work.ID, home.ID}, label.IDs(got))
	})

	tests := []struct {
		name string
		ids  []string
	}{
		{"foreign label", []string{work.ID, foreign.ID}},
		{"unknown id", []string{uuid.NewString()}},
		{"duplicate id", []string{work.ID, work.ID}},
		{"not a uuid", []string{"42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(ctx, tt.ids, alice.UserID)
			requireValidation(t, err, "label_ids", msgLabelsNotOwned)
		})
	}
}

func TestLabelIDsShape(t *testing.T) {
	t.Run("create coerces non-list to empty", func(t *testing.T) {
		ids, err := createLabelIDs(task.LabelIDs{Present: true})
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("update rejects non-list", func(t *testing.T) {
		_, _, err := updateLabelIDs(task.LabelIDs{Present: true})
		requireValidation(t, err, "label_ids", msgLabelIDsNotList)
	})

	t.Run("non-string items fail both ways", func(t *testing.T) {
		bad := task.LabelIDs{Present: true, IsList: true, BadItems: true}

		_, err := createLabelIDs(bad)
		requireValidation(t, err, "label_ids", msgLabelIDsItemType)

		_, _, err = updateLabelIDs(bad)
		requireValidation(t, err, "label_ids", msgLabelIDsItemType)
	})

	t.Run("absent on update means keep", func(t *testing.T) {
		_, replace, err := updateLabelIDs(task.LabelIDs{})
		require.NoError(t, err)
		assert.False(t, replace)
	})

	t.Run("empty list on update means clear", func(t *testing.T) {
		ids, replace, err := updateLabelIDs(task.Of())
		require.NoError(t, err)
		assert.True(t, replace)
		assert.Empty(t, ids)
	})
}
