// Package access holds the ownership rules shared by every resource: which
// rows a caller may see and which rows a caller may change.
package access

// Actor is the authenticated caller.
type Actor struct {
	UserID   string
	Username string
	Staff    bool
}

// Scope narrows a listing to one owner. The zero Scope is unrestricted.
type Scope struct {
	OwnerID string
}

func (s Scope) All() bool {
	return s.OwnerID == ""
}

func (s Scope) Includes(ownerID string) bool {
	return s.All() || s.OwnerID == ownerID
}

// VisibleTo returns everything for staff and only the caller's own rows otherwise.
func VisibleTo(a Actor) Scope {
	if a.Staff {
		return Scope{}
	}
	return Scope{OwnerID: a.UserID}
}

// CanWrite reports whether a may modify or delete a row owned by ownerID.
// Staff get no write override.
func CanWrite(a Actor, ownerID string) bool {
	return a.UserID != "" && a.UserID == ownerID
}

// CanReassign reports whether a may set a new owner on a row owned by ownerID.
func CanReassign(a Actor, ownerID string) bool {
	return a.Staff || CanWrite(a, ownerID)
}

// OwnerForCreate resolves who owns a new row. Only staff may create on behalf of someone else.
func OwnerForCreate(a Actor, requested *string) string {
	if a.Staff && requested != nil && *requested != "" {
		return *requested
	}
	return a.UserID
}
