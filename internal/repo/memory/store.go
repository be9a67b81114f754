// Package memory is an in-process implementation of repo.Store. It enforces the
// same uniqueness and cascade rules as the postgres schema and is used by tests
// and by STORE_DRIVER=memory.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/tasktracker/internal/access"
	"github.com/geocoder89/tasktracker/internal/domain/label"
	"github.com/geocoder89/tasktracker/internal/domain/task"
	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/geocoder89/tasktracker/internal/repo"
)

type labelRow struct {
	label.Label
	seq int64
}

type taskRow struct {
	task.Task
	labelIDs []string
	seq      int64
}

type state struct {
	seq    int64
	users  map[string]user.User
	labels map[string]labelRow
	tasks  map[string]taskRow
}

func (s *state) clone() *state {
	out := &state{
		seq:    s.seq,
		users:  make(map[string]user.User, len(s.users)),
		labels: make(map[string]labelRow, len(s.labels)),
		tasks:  make(map[string]taskRow, len(s.tasks)),
	}

	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.labels {
		out.labels[k] = v
	}
	for k, v := range s.tasks {
		v.labelIDs = slices.Clone(v.labelIDs)
		out.tasks[k] = v
	}

	return out
}

type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

var _ repo.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		mu: &sync.Mutex{},
		st: &state{
			users:  make(map[string]user.User),
			labels: make(map[string]labelRow),
			tasks:  make(map[string]taskRow),
		},
	}
}

// lock is a no-op inside WithinTx, which already holds the mutex.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx runs fn against a private copy of the data and publishes it only on success.
func (s *Store) WithinTx(ctx context.Context, fn func(repo.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()

	if err := fn(&Store{mu: s.mu, st: work, inTx: true}); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	*s.st = *work
	return nil
}

func (s *Store) nextSeq() int64 {
	s.st.seq++
	return s.st.seq
}

// users

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	defer s.lock()()

	for _, existing := range s.st.users {
		if existing.Username == u.Username {
			return user.User{}, user.ErrUsernameTaken
		}
	}

	s.st.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (user.User, error) {
	defer s.lock()()

	u, ok := s.st.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	defer s.lock()()

	for _, u := range s.st.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

// DeleteUser removes a user and cascades to the user's labels and tasks,
// mirroring the ON DELETE CASCADE foreign keys of the postgres schema.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	defer s.lock()()

	if _, ok := s.st.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.st.users, id)

	for taskID, t := range s.st.tasks {
		if t.OwnerID == id {
			delete(s.st.tasks, taskID)
		}
	}
	for labelID, l := range s.st.labels {
		if l.OwnerID == id {
			s.deleteLabelLocked(labelID)
		}
	}

	return nil
}

// labels

func (s *Store) resolveLabel(row labelRow) label.Label {
	l := row.Label
	l.OwnerUsername = s.st.users[l.OwnerID].Username
	return l
}

func (s *Store) ListLabels(_ context.Context, scope access.Scope) ([]label.Label, error) {
	defer s.lock()()

	rows := make([]labelRow, 0, len(s.st.labels))
	for _, row := range s.st.labels {
		if scope.Includes(row.OwnerID) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]label.Label, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.resolveLabel(row))
	}
	return out, nil
}

func (s *Store) GetLabel(_ context.Context, scope access.Scope, id string) (label.Label, error) {
	defer s.lock()()

	row, ok := s.st.labels[id]
	if !ok || !scope.Includes(row.OwnerID) {
		return label.Label{}, label.ErrNotFound
	}
	return s.resolveLabel(row), nil
}

func (s *Store) FindOwnedLabels(_ context.Context, ownerID string, ids []string) ([]label.Label, error) {
	defer s.lock()()

	seen := make(map[string]struct{}, len(ids))
	out := make([]label.Label, 0, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		row, ok := s.st.labels[id]
		if ok && row.OwnerID == ownerID {
			out = append(out, s.resolveLabel(row))
		}
	}

	sortLabels(out)
	return out, nil
}

func (s *Store) LabelNameExists(_ context.Context, ownerID, name, excludeID string) (bool, error) {
	defer s.lock()()
	return s.nameTakenLocked(ownerID, name, excludeID), nil
}

func (s *Store) nameTakenLocked(ownerID, name, excludeID string) bool {
	for id, row := range s.st.labels {
		if id != excludeID && row.OwnerID == ownerID && row.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) CreateLabel(_ context.Context, l label.Label) (label.Label, error) {
	defer s.lock()()

	if _, ok := s.st.users[l.OwnerID]; !ok {
		return label.Label{}, user.ErrNotFound
	}
	if s.nameTakenLocked(l.OwnerID, l.Name, "") {
		return label.Label{}, label.ErrNameTaken
	}

	row := labelRow{Label: l, seq: s.nextSeq()}
	s.st.labels[l.ID] = row
	return s.resolveLabel(row), nil
}

func (s *Store) UpdateLabel(_ context.Context, l label.Label) (label.Label, error) {
	defer s.lock()()

	row, ok := s.st.labels[l.ID]
	if !ok {
		return label.Label{}, label.ErrNotFound
	}
	if _, ok := s.st.users[l.OwnerID]; !ok {
		return label.Label{}, user.ErrNotFound
	}
	if s.nameTakenLocked(l.OwnerID, l.Name, l.ID) {
		return label.Label{}, label.ErrNameTaken
	}

	row.Name = l.Name
	row.OwnerID = l.OwnerID
	s.st.labels[l.ID] = row
	return s.resolveLabel(row), nil
}

func (s *Store) DeleteLabel(_ context.Context, id string) error {
	defer s.lock()()

	if _, ok := s.st.labels[id]; !ok {
		return label.ErrNotFound
	}
	s.deleteLabelLocked(id)
	return nil
}

func (s *Store) deleteLabelLocked(id string) {
	delete(s.st.labels, id)

	for taskID, t := range s.st.tasks {
		if idx := slices.Index(t.labelIDs, id); idx >= 0 {
			t.labelIDs = slices.Delete(t.labelIDs, idx, idx+1)
			s.st.tasks[taskID] = t
		}
	}
}

// tasks

func (s *Store) resolveTask(row taskRow) task.Task {
	t := row.Task
	t.OwnerUsername = s.st.users[t.OwnerID].Username

	t.Labels = make([]label.Label, 0, len(row.labelIDs))
	for _, id := range row.labelIDs {
		if l, ok := s.st.labels[id]; ok {
			t.Labels = append(t.Labels, s.resolveLabel(l))
		}
	}
	sortLabels(t.Labels)

	return t
}

func (s *Store) ListTasks(_ context.Context, scope access.Scope) ([]task.Task, error) {
	defer s.lock()()

	rows := make([]taskRow, 0, len(s.st.tasks))
	for _, row := range s.st.tasks {
		if scope.Includes(row.OwnerID) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.resolveTask(row))
	}
	return out, nil
}

func (s *Store) GetTask(_ context.Context, scope access.Scope, id string) (task.Task, error) {
	defer s.lock()()

	row, ok := s.st.tasks[id]
	if !ok || !scope.Includes(row.OwnerID) {
		return task.Task{}, task.ErrNotFound
	}
	return s.resolveTask(row), nil
}

func (s *Store) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	defer s.lock()()

	if _, ok := s.st.users[t.OwnerID]; !ok {
		return task.Task{}, user.ErrNotFound
	}

	ids, err := s.checkLabelsLocked(label.IDs(t.Labels))
	if err != nil {
		return task.Task{}, err
	}

	t.Labels = nil
	row := taskRow{Task: t, labelIDs: ids, seq: s.nextSeq()}
	s.st.tasks[t.ID] = row
	return s.resolveTask(row), nil
}

func (s *Store) UpdateTask(_ context.Context, t task.Task) error {
	defer s.lock()()

	row, ok := s.st.tasks[t.ID]
	if !ok {
		return task.ErrNotFound
	}
	if _, ok := s.st.users[t.OwnerID]; !ok {
		return user.ErrNotFound
	}

	row.Title = t.Title
	row.Description = t.Description
	row.Status = t.Status
	row.OwnerID = t.OwnerID
	row.UpdatedAt = time.Now().UTC()
	s.st.tasks[t.ID] = row
	return nil
}

func (s *Store) ReplaceTaskLabels(_ context.Context, taskID string, labelIDs []string) error {
	defer s.lock()()

	row, ok := s.st.tasks[taskID]
	if !ok {
		return task.ErrNotFound
	}

	ids, err := s.checkLabelsLocked(labelIDs)
	if err != nil {
		return err
	}

	row.labelIDs = ids
	row.UpdatedAt = time.Now().UTC()
	s.st.tasks[taskID] = row
	return nil
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	defer s.lock()()

	if _, ok := s.st.tasks[id]; !ok {
		return task.ErrNotFound
	}
	delete(s.st.tasks, id)
	return nil
}

// checkLabelsLocked plays the role of the task_labels foreign key and primary key.
func (s *Store) checkLabelsLocked(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.st.labels[id]; !ok {
			return nil, label.ErrNotFound
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func sortLabels(labels []label.Label) {
	sort.Slice(labels, func(i, j int) bool {
		if c := strings.Compare(labels[i].Name, labels[j].Name); c != 0 {
			return c < 0
		}
		return labels[i].ID < labels[j].ID
	})
}
