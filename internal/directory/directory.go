// Package directory is the company team-member roster. The access core
// consults it by id lookup only; member CRUD is exposed for the dashboard.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"modaccess.io/internal/ids"
)

var (
	ErrNotFound     = errors.New("directory: member not found")
	ErrConflict     = errors.New("directory: email already registered")
	ErrInvalidInput = errors.New("directory: invalid input")
)

// MemberStatus is the roster state of a team member.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
	MemberPending  MemberStatus = "pending"
)

// Valid reports whether s is an enumerated member status.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberActive, MemberInactive, MemberPending:
		return true
	}
	return false
}

// Member is one person on the company team.
type Member struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	RoleID     string       `json:"role_id"`
	Department string       `json:"department"`
	Status     MemberStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// MemberUpdate carries optional field changes for an edit operation.
type MemberUpdate struct {
	Name       *string
	Email      *string
	RoleID     *string
	Department *string
	Status     *MemberStatus
}

// Service owns the member table. Safe for concurrent use; reads run under a
// shared lock.
type Service struct {
	mu      sync.RWMutex
	members map[string]*Member
	order   []string
	now     func() time.Time
}

// NewService returns an empty roster.
func NewService() *Service {
	return &Service{
		members: make(map[string]*Member),
		now:     time.Now,
	}
}

// Add registers a member. Email shape, name, department and role id are
// validated; an empty status defaults to active.
func (s *Service) Add(ctx context.Context, name, email, roleID, department string, status MemberStatus) (*Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, fmt.Errorf("%w: role_id is required", ErrInvalidInput)
	}
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, fmt.Errorf("%w: department is required", ErrInvalidInput)
	}
	if status == "" {
		status = MemberActive
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unsupported status %s", ErrInvalidInput, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.Email == email {
			return nil, ErrConflict
		}
	}
	now := s.now().UTC()
	member := &Member{
		ID:         ids.New(),
		Name:       name,
		Email:      email,
		RoleID:     roleID,
		Department: department,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.members[member.ID] = member
	s.order = append(s.order, member.ID)
	copied := *member
	return &copied, nil
}

// Find returns a member by id.
func (s *Service) Find(ctx context.Context, id string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *m
	return &copied, nil
}

// Update applies the non-nil fields of upd to an existing member.
func (s *Service) Update(ctx context.Context, id string, upd MemberUpdate) (*Member, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		upd.Name = &trimmed
	}
	if upd.Email != nil {
		trimmed := strings.TrimSpace(strings.ToLower(*upd.Email))
		if !validEmail(trimmed) {
			return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
		}
		upd.Email = &trimmed
	}
	if upd.RoleID != nil {
		trimmed := strings.TrimSpace(*upd.RoleID)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: role_id is required", ErrInvalidInput)
		}
		upd.RoleID = &trimmed
	}
	if upd.Department != nil {
		trimmed := strings.TrimSpace(*upd.Department)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: department is required", ErrInvalidInput)
		}
		upd.Department = &trimmed
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, fmt.Errorf("%w: unsupported status %s", ErrInvalidInput, *upd.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil && *upd.Email != m.Email {
		for _, other := range s.members {
			if other.ID != id && other.Email == *upd.Email {
				return nil, ErrConflict
			}
		}
		m.Email = *upd.Email
	}
	if upd.Name != nil {
		m.Name = *upd.Name
	}
	if upd.RoleID != nil {
		m.RoleID = *upd.RoleID
	}
	if upd.Department != nil {
		m.Department = *upd.Department
	}
	if upd.Status != nil {
		m.Status = *upd.Status
	}
	m.UpdatedAt = s.now().UTC()
	copied := *m
	return &copied, nil
}

// Delete removes a member from the roster.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return ErrNotFound
	}
	delete(s.members, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Filter narrows a List call. Zero values match everything.
type Filter struct {
	RoleID     string
	Department string
	Search     string
}

// List returns members in insertion order, optionally filtered by role,
// department, or a case-insensitive search over name, email and department.
func (s *Service) List(ctx context.Context, f Filter) ([]*Member, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Member
	for _, id := range s.order {
		m := s.members[id]
		if f.RoleID != "" && m.RoleID != f.RoleID {
			continue
		}
		if f.Department != "" && !strings.EqualFold(m.Department, f.Department) {
			continue
		}
		if search != "" && !matchesSearch(m, search) {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

// Departments returns the distinct departments present on the roster, sorted.
func (s *Service) Departments(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, m := range s.members {
		if _, ok := seen[m.Department]; ok {
			continue
		}
		seen[m.Department] = struct{}{}
		out = append(out, m.Department)
	}
	sort.Strings(out)
	return out
}

func matchesSearch(m *Member, search string) bool {
	return strings.Contains(strings.ToLower(m.Name), search) ||
		strings.Contains(strings.ToLower(m.Email), search) ||
		strings.Contains(strings.ToLower(m.Department), search)
}

// validEmail applies the roster's minimal shape check: one "@" with a dotted
// domain after it.
func validEmail(email string) bool {
	if email == "" {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if strings.Contains(domain, "@") {
		return false
	}
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
