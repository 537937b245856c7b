package access

import "time"

// AccessLevel is the coarse authorization tier attached to a role. It is a
// classification supplied at role creation, never derived from the permission
// set.
type AccessLevel string

const (
	LevelFull     AccessLevel = "full"
	LevelStandard AccessLevel = "standard"
	LevelLimited  AccessLevel = "limited"
)

// Valid reports whether l is an enumerated access level.
func (l AccessLevel) Valid() bool {
	switch l {
	case LevelFull, LevelStandard, LevelLimited:
		return true
	}
	return false
}

func (l AccessLevel) rank() int {
	switch l {
	case LevelFull:
		return 3
	case LevelStandard:
		return 2
	case LevelLimited:
		return 1
	}
	return 0
}

// Satisfies reports whether a holder of level l may use a resource requiring
// level required: full covers everything, standard covers standard and
// limited, limited covers only limited.
func (l AccessLevel) Satisfies(required AccessLevel) bool {
	return l.rank() >= required.rank()
}

// Role groups permissions under a named access level. Builtins are seeded at
// start and cannot be deleted or have their permission set replaced.
type Role struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Permissions []string    `json:"permissions"`
	AccessLevel AccessLevel `json:"access_level"`
	BuiltIn     bool        `json:"built_in"`
	CreatedAt   time.Time   `json:"created_at"`
}

// HasPermission reports whether the role grants the permission id.
func (r *Role) HasPermission(id string) bool {
	for _, p := range r.Permissions {
		if p == id {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of a module assignment. Assignments are never
// deleted through the manager, only moved between states.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is an enumerated assignment status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Assignment binds one team member to one module. The credential attached to
// an assignment lives in the vault and is never serialized here.
type Assignment struct {
	ID         string     `json:"id"`
	ModuleID   string     `json:"module_id"`
	UserID     string     `json:"user_id"`
	AssignedAt time.Time  `json:"assigned_at"`
	Status     Status     `json:"status"`
	LastAccess *time.Time `json:"last_access,omitempty"`
}

// Action identifies an access-relevant event recorded against an assignment.
type Action string

const (
	ActionLogin         Action = "login"
	ActionPasswordReset Action = "password_reset"
)

// Valid reports whether a is a recordable action.
func (a Action) Valid() bool {
	switch a {
	case ActionLogin, ActionPasswordReset:
		return true
	}
	return false
}

// AccessEntry is one append-only record in an assignment's access history.
type AccessEntry struct {
	ID            string    `json:"id"`
	AssignmentID  string    `json:"assignment_id"`
	Timestamp     time.Time `json:"timestamp"`
	Action        Action    `json:"action"`
	SourceAddress string    `json:"source_address"`
}
