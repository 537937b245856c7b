package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"modaccess.io/internal/access"
)

type roleStore struct {
	db *sql.DB
}

func (s *roleStore) Create(ctx context.Context, role *access.Role) error {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into roles (id, name, description, permissions, access_level, built_in, created_at)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, role.ID, role.Name, role.Description, perms, string(role.AccessLevel), role.BuiltIn, role.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return access.ErrConflict
		}
		return err
	}
	return nil
}

func (s *roleStore) Find(ctx context.Context, id string) (*access.Role, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, name, description, permissions, access_level, built_in, created_at
		from roles where id = $1
	`, id)
	return scanRole(row)
}

func (s *roleStore) FindByName(ctx context.Context, name string) (*access.Role, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, name, description, permissions, access_level, built_in, created_at
		from roles where lower(name) = lower($1)
	`, name)
	return scanRole(row)
}

func (s *roleStore) List(ctx context.Context) ([]*access.Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, description, permissions, access_level, built_in, created_at
		from roles order by built_in desc, created_at asc, id asc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*access.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}

func (s *roleStore) SetPermissions(ctx context.Context, id string, perms []string) (*access.Role, error) {
	encoded, err := json.Marshal(perms)
	if err != nil {
		return nil, fmt.Errorf("marshal permissions: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `update roles set permissions = $2 where id = $1`, id, encoded)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, access.ErrNotFound
	}
	return s.Find(ctx, id)
}

func (s *roleStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from roles where id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return access.ErrNotFound
	}
	return nil
}

func (s *roleStore) Ensure(ctx context.Context, roles []*access.Role) error {
	for _, role := range roles {
		perms, err := json.Marshal(role.Permissions)
		if err != nil {
			return fmt.Errorf("marshal permissions: %w", err)
		}
		_, err = s.db.ExecContext(ctx, `
			insert into roles (id, name, description, permissions, access_level, built_in, created_at)
			values ($1, $2, $3, $4, $5, $6, $7)
			on conflict (id) do nothing
		`, role.ID, role.Name, role.Description, perms, string(role.AccessLevel), role.BuiltIn, role.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*access.Role, error) {
	var (
		role  access.Role
		perms []byte
		level string
	)
	err := row.Scan(&role.ID, &role.Name, &role.Description, &perms, &level, &role.BuiltIn, &role.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(perms, &role.Permissions); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	role.AccessLevel = access.AccessLevel(level)
	return &role, nil
}

type assignmentStore struct {
	db *sql.DB
}

func (s *assignmentStore) Create(ctx context.Context, a *access.Assignment) error {
	_, err := s.db.ExecContext(ctx, `
		insert into assignments (id, module_id, user_id, assigned_at, status, last_access)
		values ($1, $2, $3, $4, $5, null)
	`, a.ID, a.ModuleID, a.UserID, a.AssignedAt, string(a.Status))
	if err != nil {
		if isUniqueViolation(err) {
			return access.ErrConflict
		}
		return err
	}
	return nil
}

func (s *assignmentStore) Find(ctx context.Context, id string) (*access.Assignment, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, module_id, user_id, assigned_at, status, last_access
		from assignments where id = $1
	`, id)
	return scanAssignment(row)
}

func (s *assignmentStore) UpdateStatus(ctx context.Context, id string, status access.Status) (*access.Assignment, error) {
	row := s.db.QueryRowContext(ctx, `
		update assignments set status = $2 where id = $1
		returning id, module_id, user_id, assigned_at, status, last_access
	`, id, string(status))
	return scanAssignment(row)
}

func (s *assignmentStore) TouchAccess(ctx context.Context, id string, at time.Time) error {
	// Single-statement read-modify-write; greatest() keeps the stamp
	// monotonic under concurrent logins.
	res, err := s.db.ExecContext(ctx, `
		update assignments
		set last_access = greatest(coalesce(last_access, $2), $2)
		where id = $1
	`, id, at)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return access.ErrNotFound
	}
	return nil
}

func (s *assignmentStore) ListByUser(ctx context.Context, userID string) ([]*access.Assignment, error) {
	return s.query(ctx, `
		select id, module_id, user_id, assigned_at, status, last_access
		from assignments where user_id = $1 order by assigned_at asc, id asc
	`, userID)
}

func (s *assignmentStore) ListByModule(ctx context.Context, moduleID string) ([]*access.Assignment, error) {
	return s.query(ctx, `
		select id, module_id, user_id, assigned_at, status, last_access
		from assignments where module_id = $1 order by assigned_at asc, id asc
	`, moduleID)
}

func (s *assignmentStore) List(ctx context.Context) ([]*access.Assignment, error) {
	return s.query(ctx, `
		select id, module_id, user_id, assigned_at, status, last_access
		from assignments order by assigned_at asc, id asc
	`)
}

func (s *assignmentStore) query(ctx context.Context, q string, args ...any) ([]*access.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*access.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func scanAssignment(row rowScanner) (*access.Assignment, error) {
	var (
		a          access.Assignment
		status     string
		lastAccess sql.NullTime
	)
	err := row.Scan(&a.ID, &a.ModuleID, &a.UserID, &a.AssignedAt, &status, &lastAccess)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = access.Status(status)
	if lastAccess.Valid {
		stamp := lastAccess.Time
		a.LastAccess = &stamp
	}
	return &a, nil
}

type historyStore struct {
	db *sql.DB
}

func (s *historyStore) Append(ctx context.Context, entry *access.AccessEntry) error {
	_, err := s.db.ExecContext(ctx, `
		insert into access_entries (id, assignment_id, ts, action, source_address)
		values ($1, $2, $3, $4, $5)
	`, entry.ID, entry.AssignmentID, entry.Timestamp, string(entry.Action), entry.SourceAddress)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return access.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *historyStore) History(ctx context.Context, assignmentID string) ([]*access.AccessEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, assignment_id, ts, action, source_address
		from access_entries where assignment_id = $1
		order by ts desc, id desc
	`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*access.AccessEntry
	for rows.Next() {
		var (
			entry  access.AccessEntry
			action string
		)
		if err := rows.Scan(&entry.ID, &entry.AssignmentID, &entry.Timestamp, &action, &entry.SourceAddress); err != nil {
			return nil, err
		}
		entry.Action = access.Action(action)
		result = append(result, &entry)
	}
	return result, rows.Err()
}
