package user

import "github.com/google/uuid"

// Actor is the authenticated caller of an engine operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func NewActor(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsStaff covers cafe owners and administrators.
func (a Actor) IsStaff() bool {
	return a.Role == RoleOwner || a.Role == RoleAdmin
}

// CanActFor reports whether the actor may operate on a record owned by ownerID.
func (a Actor) CanActFor(ownerID uuid.UUID) bool {
	if a.ID == uuid.Nil {
		return false
	}
	return a.IsAdmin() || a.ID == ownerID
}

// Ref is the identifier recorded in audit entries.
func (a Actor) Ref() string {
	return a.ID.String()
}
