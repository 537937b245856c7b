package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"modaccess.io/internal/catalog"
	"modaccess.io/internal/directory"
	"modaccess.io/internal/ids"
	"modaccess.io/internal/vault"
)

// ModuleCatalog is the read-only module feed the core consults before
// creating an assignment.
type ModuleCatalog interface {
	Get(ctx context.Context, id string) (catalog.Module, error)
}

// MemberDirectory resolves team members owned by the company roster.
type MemberDirectory interface {
	Find(ctx context.Context, id string) (*directory.Member, error)
	List(ctx context.Context, f directory.Filter) ([]*directory.Member, error)
}

// CredentialVault issues and rotates per-assignment credentials.
type CredentialVault interface {
	Issue(ctx context.Context, assignmentID, username, password string) (vault.Credential, error)
	Rotate(ctx context.Context, assignmentID string) (vault.Credential, error)
	Get(ctx context.Context, assignmentID string) (vault.Credential, error)
}

// Service provides the role, assignment and access-history operations.
type Service struct {
	store   Store
	vault   CredentialVault
	members MemberDirectory
	modules ModuleCatalog
	now     func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService wires the access core. All collaborators are required.
func NewService(store Store, cv CredentialVault, members MemberDirectory, modules ModuleCatalog, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("access: store is required")
	}
	if cv == nil {
		return nil, errors.New("access: credential vault is required")
	}
	if members == nil {
		return nil, errors.New("access: member directory is required")
	}
	if modules == nil {
		return nil, errors.New("access: module catalog is required")
	}
	s := &Service{
		store:   store,
		vault:   cv,
		members: members,
		modules: modules,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnsureBuiltins seeds the builtin roles. Existing rows are left untouched.
func (s *Service) EnsureBuiltins(ctx context.Context) error {
	return s.store.Roles().Ensure(ctx, BuiltinRoles())
}

// CreateRole registers a custom role. Name uniqueness is case-insensitive
// across builtins and customs. The access level is stored as given, never
// recomputed from the permission set.
func (s *Service) CreateRole(ctx context.Context, name, description string, permissionIDs []string, level AccessLevel) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrInvalidInput)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: role description is required", ErrInvalidInput)
	}
	perms, err := normalizePermissions(permissionIDs)
	if err != nil {
		return nil, err
	}
	if !level.Valid() {
		return nil, fmt.Errorf("%w: unsupported access level %q", ErrInvalidInput, level)
	}

	role := &Role{
		ID:          ids.New(),
		Name:        name,
		Description: description,
		Permissions: perms,
		AccessLevel: level,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Roles().Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Role returns a role by id.
func (s *Service) Role(ctx context.Context, id string) (*Role, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: role id is required", ErrInvalidInput)
	}
	return s.store.Roles().Find(ctx, id)
}

// RoleByName returns a role by its case-insensitive name.
func (s *Service) RoleByName(ctx context.Context, name string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrInvalidInput)
	}
	return s.store.Roles().FindByName(ctx, name)
}

// Roles lists builtins first, then custom roles in creation order.
func (s *Service) Roles(ctx context.Context) ([]*Role, error) {
	return s.store.Roles().List(ctx)
}

// SetRolePermissions replaces a custom role's permission set. Builtin roles
// are immutable through this interface.
func (s *Service) SetRolePermissions(ctx context.Context, id string, permissionIDs []string) (*Role, error) {
	perms, err := normalizePermissions(permissionIDs)
	if err != nil {
		return nil, err
	}
	role, err := s.store.Roles().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.BuiltIn {
		return nil, fmt.Errorf("%w: builtin role %s is immutable", ErrForbidden, role.Name)
	}
	return s.store.Roles().SetPermissions(ctx, id, perms)
}

// DeleteRole removes a custom role. Builtins cannot be deleted; a role still
// held by a team member cannot be deleted either.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	role, err := s.store.Roles().Find(ctx, id)
	if err != nil {
		return err
	}
	if role.BuiltIn {
		return fmt.Errorf("%w: builtin role %s cannot be deleted", ErrForbidden, role.Name)
	}
	holders, err := s.members.List(ctx, directory.Filter{RoleID: id})
	if err != nil {
		return err
	}
	if len(holders) > 0 {
		return fmt.Errorf("%w: role %s is still assigned to %d member(s)", ErrConflict, role.Name, len(holders))
	}
	return s.store.Roles().Delete(ctx, id)
}

// Assign binds a module to a team member. The member's role access level must
// satisfy the level of the module's required role; a duplicate
// (module, user) pair is rejected with ErrConflict.
func (s *Service) Assign(ctx context.Context, moduleID, userID, username, password string) (*Assignment, error) {
	moduleID = strings.TrimSpace(moduleID)
	userID = strings.TrimSpace(userID)
	if moduleID == "" || userID == "" {
		return nil, fmt.Errorf("%w: module_id and user_id are required", ErrInvalidInput)
	}
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	module, err := s.modules.Get(ctx, moduleID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: module %s", ErrNotFound, moduleID)
		}
		return nil, err
	}
	member, err := s.members.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, fmt.Errorf("%w: member %s", ErrNotFound, userID)
		}
		return nil, err
	}

	if err := s.authorizeAssignment(ctx, member, module); err != nil {
		return nil, err
	}

	assignment := &Assignment{
		ID:         ids.New(),
		ModuleID:   moduleID,
		UserID:     userID,
		AssignedAt: s.now().UTC(),
		Status:     StatusActive,
	}
	if err := s.store.Assignments().Create(ctx, assignment); err != nil {
		return nil, err
	}
	if _, err := s.vault.Issue(ctx, assignment.ID, username, password); err != nil {
		return nil, err
	}
	return assignment, nil
}

// authorizeAssignment checks the member's role against the module's required
// role. An empty or "all" required role is unrestricted.
func (s *Service) authorizeAssignment(ctx context.Context, member *directory.Member, module catalog.Module) error {
	required := strings.TrimSpace(module.RequiredRole)
	if required == "" || strings.EqualFold(required, "all") {
		return nil
	}
	requiredRole, err := s.resolveRole(ctx, required)
	if err != nil {
		return fmt.Errorf("%w: required role %s is not configured", ErrNotFound, required)
	}
	memberRole, err := s.resolveRole(ctx, member.RoleID)
	if err != nil {
		return fmt.Errorf("%w: member role %s is not configured", ErrNotFound, member.RoleID)
	}
	if !memberRole.AccessLevel.Satisfies(requiredRole.AccessLevel) {
		return fmt.Errorf("%w: role %s does not meet module requirement %s",
			ErrForbidden, memberRole.Name, requiredRole.Name)
	}
	return nil
}

// resolveRole accepts either a role id or a role name. Builtins carry the
// same value for both.
func (s *Service) resolveRole(ctx context.Context, ref string) (*Role, error) {
	role, err := s.store.Roles().Find(ctx, ref)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.store.Roles().FindByName(ctx, ref)
}

// Assignment returns one assignment by id.
func (s *Service) Assignment(ctx context.Context, id string) (*Assignment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: assignment id is required", ErrInvalidInput)
	}
	return s.store.Assignments().Find(ctx, id)
}

// UpdateStatus moves an assignment to the given state. All transitions
// between enumerated states are allowed and the call is idempotent; it emits
// no access-history entries.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Assignment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unsupported status %q", ErrInvalidInput, status)
	}
	return s.store.Assignments().UpdateStatus(ctx, id, status)
}

// ResetCredentials rotates the assignment's password, keeping the username,
// and records a password_reset entry. The new credential is not returned;
// use RevealCredentials with an authorized actor.
func (s *Service) ResetCredentials(ctx context.Context, id, sourceAddr string) (*Assignment, error) {
	assignment, err := s.store.Assignments().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.vault.Rotate(ctx, assignment.ID); err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return nil, fmt.Errorf("%w: assignment %s has no credential", ErrNotFound, id)
		}
		return nil, err
	}
	entry := &AccessEntry{
		ID:            ids.New(),
		AssignmentID:  assignment.ID,
		Timestamp:     s.now().UTC(),
		Action:        ActionPasswordReset,
		SourceAddress: sourceAddr,
	}
	if err := s.store.History().Append(ctx, entry); err != nil {
		return nil, err
	}
	return assignment, nil
}

// RevealCredentials returns the current credential. The actor must resolve to
// a member whose role grants manage_team or assign_modules; anything else is
// ErrForbidden, without revealing whether a credential exists.
func (s *Service) RevealCredentials(ctx context.Context, id, actorID string) (vault.Credential, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return vault.Credential{}, fmt.Errorf("%w: actor_id is required", ErrInvalidInput)
	}
	assignment, err := s.store.Assignments().Find(ctx, id)
	if err != nil {
		return vault.Credential{}, err
	}

	actor, err := s.members.Find(ctx, actorID)
	if err != nil {
		return vault.Credential{}, ErrForbidden
	}
	role, err := s.resolveRole(ctx, actor.RoleID)
	if err != nil {
		return vault.Credential{}, ErrForbidden
	}
	if !role.HasPermission(PermManageTeam) && !role.HasPermission(PermAssignModules) {
		return vault.Credential{}, ErrForbidden
	}

	cred, err := s.vault.Get(ctx, assignment.ID)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return vault.Credential{}, fmt.Errorf("%w: assignment %s has no credential", ErrNotFound, id)
		}
		return vault.Credential{}, err
	}
	return cred, nil
}

// RecordAccess appends an access entry. A login additionally stamps the
// assignment's last_access with one atomic read-modify-write.
func (s *Service) RecordAccess(ctx context.Context, id string, action Action, sourceAddr string) (*AccessEntry, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: unsupported action %q", ErrInvalidInput, action)
	}
	sourceAddr = strings.TrimSpace(sourceAddr)
	if sourceAddr == "" {
		return nil, fmt.Errorf("%w: source address is required", ErrInvalidInput)
	}
	assignment, err := s.store.Assignments().Find(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := &AccessEntry{
		ID:            ids.New(),
		AssignmentID:  assignment.ID,
		Timestamp:     s.now().UTC(),
		Action:        action,
		SourceAddress: sourceAddr,
	}
	if err := s.store.History().Append(ctx, entry); err != nil {
		return nil, err
	}
	if action == ActionLogin {
		if err := s.store.Assignments().TouchAccess(ctx, assignment.ID, entry.Timestamp); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// History returns the assignment's access entries, most recent first.
func (s *Service) History(ctx context.Context, id string) ([]*AccessEntry, error) {
	if _, err := s.store.Assignments().Find(ctx, id); err != nil {
		return nil, err
	}
	return s.store.History().History(ctx, id)
}

// ListByUser returns a member's assignments ordered by assignment time.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Assignment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.store.Assignments().ListByUser(ctx, userID)
}

// ListByModule returns a module's assignments ordered by assignment time.
func (s *Service) ListByModule(ctx context.Context, moduleID string) ([]*Assignment, error) {
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return nil, fmt.Errorf("%w: module_id is required", ErrInvalidInput)
	}
	return s.store.Assignments().ListByModule(ctx, moduleID)
}

// ListAssignments returns every assignment ordered by assignment time.
func (s *Service) ListAssignments(ctx context.Context) ([]*Assignment, error) {
	return s.store.Assignments().List(ctx)
}

// RolePermissions resolves the union of permissions granted by the given role
// names. Unknown roles are skipped.
func (s *Service) RolePermissions(ctx context.Context, roleNames []string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	for _, name := range roleNames {
		role, err := s.resolveRole(ctx, name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		for _, p := range role.Permissions {
			set[p] = struct{}{}
		}
	}
	return set, nil
}

func normalizePermissions(permissionIDs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(permissionIDs))
	perms := make([]string, 0, len(permissionIDs))
	for _, id := range permissionIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		if !PermissionExists(id) {
			return nil, fmt.Errorf("%w: unknown permission %q", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
		perms = append(perms, id)
	}
	if len(perms) == 0 {
		return nil, fmt.Errorf("%w: at least one permission is required", ErrInvalidInput)
	}
	return perms, nil
}
