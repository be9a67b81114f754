package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/tasktracker/internal/access"
	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const labelSelect = `
	SELECT l.id, l.name, l.owner_id, u.username, l.created_at
	FROM labels l
	JOIN users u ON u.id = l.owner_id
`

func scanLabel(row pgx.Row, l *label.Label) error {
	return row.Scan(&l.ID, &l.Name, &l.OwnerID, &l.OwnerUsername, &l.CreatedAt)
}

func (s *Store) ListLabels(ctx context.Context, scope access.Scope) (labels []label.Label, err error) {
	query := labelSelect
	args := []any{}

	if !scope.All() {
		query += ` WHERE l.owner_id = $1`
		args = append(args, scope.OwnerID)
	}
	query += ` ORDER BY l.created_at ASC, l.id ASC`

	err = s.observe("labels.list", func() error {
		labels, err = s.queryLabels(ctx, query, args...)
		return err
	})

	return
}

func (s *Store) GetLabel(ctx context.Context, scope access.Scope, id string) (label.Label, error) {
	query := labelSelect + ` WHERE l.id = $1`
	args := []any{id}

	if !scope.All() {
		query += ` AND l.owner_id = $2`
		args = append(args, scope.OwnerID)
	}

	var l label.Label
	err := s.observe("labels.get", func() error {
		return scanLabel(s.q.QueryRow(ctx, query, args...), &l)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return label.Label{}, label.ErrNotFound
		}
		return label.Label{}, err
	}

	return l, nil
}

func (s *Store) FindOwnedLabels(ctx context.Context, ownerID string, ids []string) (labels []label.Label, err error) {
	if len(ids) == 0 {
		return []label.Label{}, nil
	}

	err = s.observe("labels.find_owned", func() error {
		labels, err = s.queryLabels(ctx,
			labelSelect+` WHERE l.id = ANY($1) AND l.owner_id = $2 ORDER BY l.name ASC, l.id ASC`,
			ids, ownerID,
		)
		return err
	})

	return
}

func (s *Store) LabelNameExists(ctx context.Context, ownerID, name, excludeID string) (bool, error) {
	var exists bool

	err := s.observe("labels.name_exists", func() error {
		if excludeID == "" {
			return s.q.QueryRow(ctx, `SELECT EXISTS(
				SELECT 1 FROM labels WHERE owner_id = $1 AND name = $2
			)`, ownerID, name).Scan(&exists)
		}

		return s.q.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM labels WHERE owner_id = $1 AND name = $2 AND id <> $3
		)`, ownerID, name, excludeID).Scan(&exists)
	})

	return exists, err
}

func (s *Store) CreateLabel(ctx context.Context, l label.Label) (label.Label, error) {
	err := s.observe("labels.create", func() error {
		return s.q.QueryRow(ctx, `
			WITH inserted AS (
				INSERT INTO labels (id, name, owner_id, created_at)
				VALUES ($1,$2,$3,$4)
				RETURNING id, name, owner_id, created_at
			)
			SELECT i.id, i.name, i.owner_id, u.username, i.created_at
			FROM inserted i
			JOIN users u ON u.id = i.owner_id
		`, l.ID, l.Name, l.OwnerID, l.CreatedAt).Scan(&l.ID, &l.Name, &l.OwnerID, &l.OwnerUsername, &l.CreatedAt)
	})

	if err != nil {
		switch {
		case violates(err, constraintLabelNameUnique):
			return label.Label{}, label.ErrNameTaken
		case missingReference(err, constraintLabelOwnerFK):
			return label.Label{}, user.ErrNotFound
		}
		return label.Label{}, err
	}

	return l, nil
}

func (s *Store) UpdateLabel(ctx context.Context, l label.Label) (label.Label, error) {
	err := s.observe("labels.update", func() error {
		return s.q.QueryRow(ctx, `
			WITH updated AS (
				UPDATE labels
				SET name = $2,
					owner_id = $3
				WHERE id = $1
				RETURNING id, name, owner_id, created_at
			)
			SELECT up.id, up.name, up.owner_id, u.username, up.created_at
			FROM updated up
			JOIN users u ON u.id = up.owner_id
		`, l.ID, l.Name, l.OwnerID).Scan(&l.ID, &l.Name, &l.OwnerID, &l.OwnerUsername, &l.CreatedAt)
	})

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return label.Label{}, label.ErrNotFound
		case violates(err, constraintLabelNameUnique):
			return label.Label{}, label.ErrNameTaken
		case missingReference(err, constraintLabelOwnerFK):
			return label.Label{}, user.ErrNotFound
		}
		return label.Label{}, err
	}

	return l, nil
}

func (s *Store) DeleteLabel(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := s.observe("labels.delete", func() error {
		var err error
		tag, err = s.q.Exec(ctx, `DELETE FROM labels WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return label.ErrNotFound
	}

	return nil
}

func (s *Store) queryLabels(ctx context.Context, query string, args ...any) ([]label.Label, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]label.Label, 0)

	for rows.Next() {
		var l label.Label
		if err := scanLabel(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
