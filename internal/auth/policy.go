package auth

import "github.com/civicflow/civicflow/internal/domain"

// Principal is the authenticated caller, extracted once from the
// bearer token at the request boundary and threaded as a value.
type Principal struct {
	ID    string
	Email string
	Role  domain.Role
}

// Scope describes which tickets a principal may read. Exactly one of
// the fields is meaningful: All for admins, InvolvedID for officers
// (creator or assignee), CreatedByID for citizens.
type Scope struct {
	All         bool
	CreatedByID string
	InvolvedID  string
}

// ScopeFor maps a principal to its ticket visibility scope.
func ScopeFor(p Principal) Scope {
	switch p.Role {
	case domain.RoleAdmin:
		return Scope{All: true}
	case domain.RoleOfficer:
		return Scope{InvolvedID: p.ID}
	default:
		return Scope{CreatedByID: p.ID}
	}
}

// Allows reports whether a ticket falls inside the scope. This is the
// predicate form of the visibility filter, used by the in-memory store
// and by mutation checks.
func (s Scope) Allows(t *domain.Ticket) bool {
	if s.All {
		return true
	}
	if s.InvolvedID != "" {
		if t.CreatedByID == s.InvolvedID {
			return true
		}
		return t.AssignedToID != nil && *t.AssignedToID == s.InvolvedID
	}
	return t.CreatedByID == s.CreatedByID
}

// CanAssign reports whether the principal may assign tickets.
func CanAssign(p Principal) bool {
	return p.Role == domain.RoleAdmin
}

// ValidAssignee reports whether a user may be assigned tickets.
// Assignment to anyone but an officer is rejected, regardless of who
// asks.
func ValidAssignee(u *domain.User) bool {
	return u.Role == domain.RoleOfficer
}

// CanAdminister reports whether the principal may manage accounts.
func CanAdminister(p Principal) bool {
	return p.Role == domain.RoleAdmin
}
