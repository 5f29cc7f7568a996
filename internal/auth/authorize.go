package auth

// Operation is the kind of access being requested on a note.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Authorize is the single access decision point: a pure function of the
// validated claims, the operation kind and (for per-note operations) the
// owner of the target note. Keeping the whole policy here makes it auditable
// and testable in isolation.
//
// Rules, in precedence order:
//  1. Create and update require editor or admin.
//  2. Delete requires admin.
//  3. Read and update by a non-admin require ownership; admin bypasses it.
//
// A missing or unresolvable identity is ErrInvalidIdentity, distinct from
// ErrForbidden.
func Authorize(claims *Claims, op Operation, ownerID string) error {
	if claims == nil || claims.Subject == "" {
		return ErrInvalidIdentity
	}
	role, ok := ParseRole(string(claims.Role))
	if !ok {
		return ErrInvalidIdentity
	}

	switch op {
	case OpCreate:
		if role == RoleAdmin || role == RoleEditor {
			return nil
		}
		return ErrForbidden
	case OpDelete:
		if role == RoleAdmin {
			return nil
		}
		return ErrForbidden
	case OpUpdate:
		if role == RoleReader {
			return ErrForbidden
		}
		if role == RoleAdmin || ownerID == claims.Subject {
			return nil
		}
		return ErrForbidden
	case OpRead:
		if role == RoleAdmin || ownerID == claims.Subject {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}
