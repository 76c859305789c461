package auth

// Roles recognized by the service. Admins see every class; teachers only
// their own.
const (
	RoleTeacher = "TEACHER"
	RoleAdmin   = "ADMIN"
)

// Actor is the authenticated identity threaded through every service call.
type Actor struct {
	ID   string
	Role string
}

// Elevated reports whether the actor's role bypasses ownership checks.
func (a Actor) Elevated() bool { return a.Role == RoleAdmin }

// HasAccess reports whether an actor may act on a resource owned by ownerID:
// either the role is elevated or the actor is the owner.
func HasAccess(role, actorID, ownerID string) bool {
	return role == RoleAdmin || actorID == ownerID
}

// CanAccess is the Actor-shaped form of HasAccess.
func (a Actor) CanAccess(ownerID string) bool {
	return HasAccess(a.Role, a.ID, ownerID)
}
