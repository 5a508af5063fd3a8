// Package lifecycle derives what an actor may do with an incident and
// which status transitions each action performs. The predicates are pure:
// they are evaluated against the (actor, incident) pair on every request
// and carry no state of their own.
package lifecycle

import "github.com/fixit-suporte/fixit-gateway/internal/domain"

// Permissions is the full decision set for one actor on one incident.
// Detail responses embed it so a UI renders exactly the actions the actor
// may take.
type Permissions struct {
	CanAssign  bool `json:"can_assign"`
	CanSolve   bool `json:"can_solve"`
	CanComment bool `json:"can_comment"`
	IsOwner    bool `json:"is_owner"`
}

// For evaluates every predicate at once.
func For(actor *domain.User, incident *domain.Incident) Permissions {
	return Permissions{
		CanAssign:  CanAssign(actor, incident),
		CanSolve:   CanSolve(actor, incident),
		CanComment: CanComment(actor, incident),
		IsOwner:    IsOwner(actor, incident),
	}
}

// CanAssign reports whether the actor may assign the incident: admins
// always may (including reassignment), technicians only while no
// technician holds it.
func CanAssign(actor *domain.User, incident *domain.Incident) bool {
	if actor == nil || incident == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == domain.RoleTechnician && !incident.Assigned()
}

// CanSolve reports whether the actor may mark the incident resolved: the
// assigned technician or an admin. Resolved is not terminal, so this
// stays true after resolution.
func CanSolve(actor *domain.User, incident *domain.Incident) bool {
	if actor == nil || incident == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return incident.Assigned() && incident.Technician.ID == actor.ID
}

// CanComment reports whether the actor may add to the comment thread: the
// assigned technician, an admin, or the creator once a technician has
// been assigned.
func CanComment(actor *domain.User, incident *domain.Incident) bool {
	if actor == nil || incident == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if incident.Assigned() && incident.Technician.ID == actor.ID {
		return true
	}
	return IsOwner(actor, incident) && incident.Assigned()
}

// IsOwner reports whether the actor created the incident. Deletion is
// owner-only, from any state.
func IsOwner(actor *domain.User, incident *domain.Incident) bool {
	if actor == nil || incident == nil || incident.Creator == nil {
		return false
	}
	return incident.Creator.ID == actor.ID
}
