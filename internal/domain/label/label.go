package label

import (
	"errors"
	"time"

	"github.com/geocoder89/tasktracker/internal/domain/user"
	"github.com/google/uuid"
)

const MaxNameLength = 100

type Label struct {
	ID            string
	Name          string
	OwnerID       string
	OwnerUsername string
	CreatedAt     time.Time
}

// View is the JSON representation of a label.
type View struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Owner user.Summary `json:"owner"`
}

var (
	ErrNotFound  = errors.New("label not found")
	ErrNameTaken = errors.New("label name already used by owner")
)

type CreateRequest struct {
	Name    string  `json:"name" binding:"required,max=100"`
	OwnerID *string `json:"owner_id" binding:"omitempty,uuid"`
}

// UpdateRequest serves both PUT and PATCH; nil fields are left untouched.
type UpdateRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=100"`
	OwnerID *string `json:"owner_id" binding:"omitempty,uuid"`
}

// MissingForReplace lists the fields a full (PUT) update must carry.
func (r UpdateRequest) MissingForReplace() []string {
	if r.Name == nil {
		return []string{"name"}
	}
	return nil
}

func New(name, ownerID string) Label {
	return Label{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
}

func (l Label) View() View {
	return View{
		ID:    l.ID,
		Name:  l.Name,
		Owner: user.Summary{ID: l.OwnerID, Username: l.OwnerUsername},
	}
}

func Views(labels []Label) []View {
	out := make([]View, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.View())
	}
	return out
}

func IDs(labels []Label) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.ID)
	}
	return out
}
