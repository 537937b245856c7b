package access

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the in-process implementation used when no database is
// configured. Each collection has its own lock, so writes to different
// collections never contend.
type MemoryStore struct {
	roles       *memRoles
	assignments *memAssignments
	history     *memHistory
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		roles:       &memRoles{byID: make(map[string]*Role)},
		assignments: &memAssignments{byID: make(map[string]*Assignment), pairs: make(map[string]string)},
		history:     &memHistory{entries: make(map[string][]*AccessEntry)},
	}
}

func (m *MemoryStore) Roles() RoleStore             { return m.roles }
func (m *MemoryStore) Assignments() AssignmentStore { return m.assignments }
func (m *MemoryStore) History() HistoryStore        { return m.history }

type memRoles struct {
	mu    sync.RWMutex
	byID  map[string]*Role
	order []string
}

func (s *memRoles) Create(ctx context.Context, role *Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if strings.EqualFold(existing.Name, role.Name) {
			return ErrConflict
		}
	}
	stored := cloneRole(role)
	s.byID[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return nil
}

func (s *memRoles) Find(ctx context.Context, id string) (*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRole(role), nil
}

func (s *memRoles) FindByName(ctx context.Context, name string) (*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, role := range s.byID {
		if strings.EqualFold(role.Name, name) {
			return cloneRole(role), nil
		}
	}
	return nil, ErrNotFound
}

func (s *memRoles) List(ctx context.Context) ([]*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Role, 0, len(s.order))
	for _, id := range s.order {
		if s.byID[id].BuiltIn {
			out = append(out, cloneRole(s.byID[id]))
		}
	}
	for _, id := range s.order {
		if !s.byID[id].BuiltIn {
			out = append(out, cloneRole(s.byID[id]))
		}
	}
	return out, nil
}

func (s *memRoles) SetPermissions(ctx context.Context, id string, perms []string) (*Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	role.Permissions = append([]string(nil), perms...)
	return cloneRole(role), nil
}

func (s *memRoles) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memRoles) Ensure(ctx context.Context, roles []*Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, role := range roles {
		if _, ok := s.byID[role.ID]; ok {
			continue
		}
		stored := cloneRole(role)
		s.byID[stored.ID] = stored
		s.order = append(s.order, stored.ID)
	}
	return nil
}

type memAssignments struct {
	mu   sync.RWMutex
	byID map[string]*Assignment
	// pairs maps module_id + user_id to the owning assignment id so a
	// racing duplicate Assign loses inside this lock.
	pairs map[string]string
	order []string
}

func pairKey(moduleID, userID string) string {
	return moduleID + "\x00" + userID
}

func (s *memAssignments) Create(ctx context.Context, a *Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(a.ModuleID, a.UserID)
	if _, ok := s.pairs[key]; ok {
		return ErrConflict
	}
	stored := cloneAssignment(a)
	s.byID[stored.ID] = stored
	s.pairs[key] = stored.ID
	s.order = append(s.order, stored.ID)
	return nil
}

func (s *memAssignments) Find(ctx context.Context, id string) (*Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAssignment(a), nil
}

func (s *memAssignments) UpdateStatus(ctx context.Context, id string, status Status) (*Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Status = status
	return cloneAssignment(a), nil
}

func (s *memAssignments) TouchAccess(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	// Monotonic: a stale login racing a fresher one never rolls the stamp
	// back.
	if a.LastAccess == nil || at.After(*a.LastAccess) {
		stamp := at
		a.LastAccess = &stamp
	}
	return nil
}

func (s *memAssignments) ListByUser(ctx context.Context, userID string) ([]*Assignment, error) {
	return s.list(func(a *Assignment) bool { return a.UserID == userID })
}

func (s *memAssignments) ListByModule(ctx context.Context, moduleID string) ([]*Assignment, error) {
	return s.list(func(a *Assignment) bool { return a.ModuleID == moduleID })
}

func (s *memAssignments) List(ctx context.Context) ([]*Assignment, error) {
	return s.list(func(*Assignment) bool { return true })
}

// list walks assignments in insertion order, which matches AssignedAt
// ascending because creation stamps are monotonic.
func (s *memAssignments) list(keep func(*Assignment) bool) ([]*Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Assignment
	for _, id := range s.order {
		if a := s.byID[id]; keep(a) {
			out = append(out, cloneAssignment(a))
		}
	}
	return out, nil
}

type memHistory struct {
	mu      sync.RWMutex
	entries map[string][]*AccessEntry
}

func (s *memHistory) Append(ctx context.Context, entry *AccessEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *entry
	s.entries[entry.AssignmentID] = append(s.entries[entry.AssignmentID], &copied)
	return nil
}

func (s *memHistory) History(ctx context.Context, assignmentID string) ([]*AccessEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.entries[assignmentID]
	out := make([]*AccessEntry, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		copied := *stored[i]
		out = append(out, &copied)
	}
	return out, nil
}

func cloneRole(r *Role) *Role {
	copied := *r
	copied.Permissions = append([]string(nil), r.Permissions...)
	return &copied
}

func cloneAssignment(a *Assignment) *Assignment {
	copied := *a
	if a.LastAccess != nil {
		stamp := *a.LastAccess
		copied.LastAccess = &stamp
	}
	return &copied
}
