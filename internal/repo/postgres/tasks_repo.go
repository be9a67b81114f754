package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/tasktracker/internal/access"
	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/geocoder89/tasktracker/internal/domain/task"
	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const taskSelect = `
	SELECT t.id, t.title, t.description, t.completion_status, t.owner_id, u.username, t.created_at, t.updated_at
	FROM tasks t
	JOIN users u ON u.id = t.owner_id
`

func scanTask(row pgx.Row, t *task.Task) error {
	return row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.OwnerID, &t.OwnerUsername, &t.CreatedAt, &t.UpdatedAt)
}

func (s *Store) ListTasks(ctx context.Context, scope access.Scope) ([]task.Task, error) {
	query := taskSelect
	args := []any{}

	if !scope.All() {
		query += ` WHERE t.owner_id = $1`
		args = append(args, scope.OwnerID)
	}
	query += ` ORDER BY t.created_at ASC, t.id ASC`

	var tasks []task.Task

	err := s.observe("tasks.list", func() error {
		rows, err := s.q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		tasks = make([]task.Task, 0)
		for rows.Next() {
			var t task.Task
			if err := scanTask(rows, &t); err != nil {
				return err
			}
			tasks = append(tasks, t)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	if err := s.attachLabels(ctx, tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, scope access.Scope, id string) (task.Task, error) {
	query := taskSelect + ` WHERE t.id = $1`
	args := []any{id}

	if !scope.All() {
		query += ` AND t.owner_id = $2`
		args = append(args, scope.OwnerID)
	}

	var t task.Task
	err := s.observe("tasks.get", func() error {
		return scanTask(s.q.QueryRow(ctx, query, args...), &t)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	out := []task.Task{t}
	if err := s.attachLabels(ctx, out); err != nil {
		return task.Task{}, err
	}

	return out[0], nil
}

func (s *Store) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	err := s.observe("tasks.create", func() error {
		_, err := s.q.Exec(ctx, `
			INSERT INTO tasks (id, title, description, completion_status, owner_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, t.ID, t.Title, t.Description, t.Status, t.OwnerID, t.CreatedAt, t.UpdatedAt)
		return err
	})

	if err != nil {
		if missingReference(err, constraintTaskOwnerFK) {
			return task.Task{}, user.ErrNotFound
		}
		return task.Task{}, err
	}

	if err := s.insertTaskLabels(ctx, t.ID, label.IDs(t.Labels)); err != nil {
		return task.Task{}, err
	}

	return s.GetTask(ctx, access.Scope{}, t.ID)
}

func (s *Store) UpdateTask(ctx context.Context, t task.Task) error {
	var tag pgconn.CommandTag

	err := s.observe("tasks.update", func() error {
		var err error
		tag, err = s.q.Exec(ctx, `
			UPDATE tasks
			SET title = $2,
				description = $3,
				completion_status = $4,
				owner_id = $5,
				updated_at = NOW()
			WHERE id = $1
		`, t.ID, t.Title, t.Description, t.Status, t.OwnerID)
		return err
	})

	if err != nil {
		if missingReference(err, constraintTaskOwnerFK) {
			return user.ErrNotFound
		}
		return err
	}

	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}

func (s *Store) ReplaceTaskLabels(ctx context.Context, taskID string, labelIDs []string) error {
	err := s.observe("tasks.clear_labels", func() error {
		_, err := s.q.Exec(ctx, `DELETE FROM task_labels WHERE task_id = $1`, taskID)
		return err
	})

	if err != nil {
		return err
	}

	if err := s.insertTaskLabels(ctx, taskID, labelIDs); err != nil {
		return err
	}

	return s.observe("tasks.touch", func() error {
		_, err := s.q.Exec(ctx, `UPDATE tasks SET updated_at = NOW() WHERE id = $1`, taskID)
		return err
	})
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := s.observe("tasks.delete", func() error {
		var err error
		tag, err = s.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}

func (s *Store) insertTaskLabels(ctx context.Context, taskID string, labelIDs []string) error {
	if len(labelIDs) == 0 {
		return nil
	}

	err := s.observe("tasks.insert_labels", func() error {
		_, err := s.q.Exec(ctx, `
			INSERT INTO task_labels (task_id, label_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
		`, taskID, labelIDs)
		return err
	})

	if missingReference(err, constraintTaskLabelLabelFK) {
		return label.ErrNotFound
	}
	return err
}

// attachLabels loads the label sets of all given tasks in one round trip.
func (s *Store) attachLabels(ctx context.Context, tasks []task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	index := make(map[string]int, len(tasks))
	ids := make([]string, 0, len(tasks))

	for i := range tasks {
		tasks[i].Labels = []label.Label{}
		index[tasks[i].ID] = i
		ids = append(ids, tasks[i].ID)
	}

	return s.observe("tasks.labels", func() error {
		rows, err := s.q.Query(ctx, `
			SELECT tl.task_id, l.id, l.name, l.owner_id, u.username, l.created_at
			FROM task_labels tl
			JOIN labels l ON l.id = tl.label_id
			JOIN users u ON u.id = l.owner_id
			WHERE tl.task_id = ANY($1)
			ORDER BY l.name ASC, l.id ASC
		`, ids)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var taskID string
			var l label.Label

			if err := rows.Scan(&taskID, &l.ID, &l.Name, &l.OwnerID, &l.OwnerUsername, &l.CreatedAt); err != nil {
				return err
			}

			if i, ok := index[taskID]; ok {
				tasks[i].Labels = append(tasks[i].Labels, l)
			}
		}

		return rows.Err()
	})
}
