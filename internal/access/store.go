package access

import (
	"context"
	"time"
)

// RoleStore manages the role table.
type RoleStore interface {
	// Create inserts a role. Name uniqueness is case-insensitive; a clash
	// yields ErrConflict.
	Create(ctx context.Context, role *Role) error
	Find(ctx context.Context, id string) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	// List returns builtins first, then custom roles in creation order.
	List(ctx context.Context) ([]*Role, error)
	// SetPermissions replaces a custom role's permission set.
	SetPermissions(ctx context.Context, id string, perms []string) (*Role, error)
	Delete(ctx context.Context, id string) error
	// Ensure seeds roles that are not present yet; existing rows are left
	// untouched.
	Ensure(ctx context.Context, roles []*Role) error
}

// AssignmentStore manages the assignment table. Implementations serialize
// writes per record; Create must atomically reject a duplicate
// (module_id, user_id) pair with ErrConflict.
type AssignmentStore interface {
	Create(ctx context.Context, a *Assignment) error
	Find(ctx context.Context, id string) (*Assignment, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Assignment, error)
	// TouchAccess sets last_access with a single read-modify-write so that
	// concurrent logins cannot lose updates.
	TouchAccess(ctx context.Context, id string, at time.Time) error
	ListByUser(ctx context.Context, userID string) ([]*Assignment, error)
	ListByModule(ctx context.Context, moduleID string) ([]*Assignment, error)
	List(ctx context.Context) ([]*Assignment, error)
}

// HistoryStore appends immutable access entries.
type HistoryStore interface {
	Append(ctx context.Context, entry *AccessEntry) error
	// History returns entries for an assignment, most recent first.
	History(ctx context.Context, assignmentID string) ([]*AccessEntry, error)
}

// Store bundles the persistence surface required by the access service.
type Store interface {
	Roles() RoleStore
	Assignments() AssignmentStore
	History() HistoryStore
}
