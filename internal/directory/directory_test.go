package directory

import (
	"context"
	"errors"
	"testing"
)

func TestAddDefaultsToActive(t *testing.T) {
	s := NewService()
	m, err := s.Add(context.Background(), "Alice", "Alice@Example.com", "admin", "Engineering", "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Status != MemberActive {
		t.Fatalf("expected active, got %s", m.Status)
	}
	if m.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", m.Email)
	}
	if m.ID == "" || m.CreatedAt.IsZero() {
		t.Fatalf("unexpected member %#v", m)
	}
}

func TestAddValidation(t *testing.T) {
	s := NewService()
	ctx := context.Background()

	cases := []struct {
		name, email, roleID, dept string
		status                    MemberStatus
	}{
		{"", "a@b.co", "admin", "Eng", ""},
		{"Alice", "not-an-email", "admin", "Eng", ""},
		{"Alice", "a@b", "admin", "Eng", ""},
		{"Alice", "@b.co", "admin", "Eng", ""},
		{"Alice", "a@b.", "admin", "Eng", ""},
		{"Alice", "a@b.co", "", "Eng", ""},
		{"Alice", "a@b.co", "admin", "", ""},
		{"Alice", "a@b.co", "admin", "Eng", MemberStatus("ghost")},
	}
	for i, tc := range cases {
		if _, err := s.Add(ctx, tc.name, tc.email, tc.roleID, tc.dept, tc.status); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestAddDuplicateEmail(t *testing.T) {
	s := NewService()
	ctx := context.Background()
	if _, err := s.Add(ctx, "Alice", "alice@example.com", "admin", "Eng", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(ctx, "Other", "ALICE@example.com", "viewer", "Sales", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	s := NewService()
	ctx := context.Background()
	m, err := s.Add(ctx, "Alice", "alice@example.com", "viewer", "Eng", "")
	if err != nil {
		t.Fatal(err)
	}

	role := "developer"
	status := MemberInactive
	got, err := s.Update(ctx, m.ID, MemberUpdate{RoleID: &role, Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if got.RoleID != "developer" || got.Status != MemberInactive {
		t.Fatalf("unexpected member %#v", got)
	}
	if got.Name != "Alice" {
		t.Fatalf("untouched field changed: %q", got.Name)
	}

	bad := "ghost"
	badStatus := MemberStatus(bad)
	if _, err := s.Update(ctx, m.ID, MemberUpdate{Status: &badStatus}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.Update(ctx, "nope", MemberUpdate{RoleID: &role}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateEmailConflict(t *testing.T) {
	s := NewService()
	ctx := context.Background()
	if _, err := s.Add(ctx, "Alice", "alice@example.com", "admin", "Eng", ""); err != nil {
		t.Fatal(err)
	}
	bob, err := s.Add(ctx, "Bob", "bob@example.com", "viewer", "Sales", "")
	if err != nil {
		t.Fatal(err)
	}
	taken := "alice@example.com"
	if _, err := s.Update(ctx, bob.ID, MemberUpdate{Email: &taken}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := NewService()
	ctx := context.Background()
	m, err := s.Add(ctx, "Alice", "alice@example.com", "admin", "Eng", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Find(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	s := NewService()
	ctx := context.Background()
	seed := []struct{ name, email, role, dept string }{
		{"Alice Smith", "alice@example.com", "admin", "Engineering"},
		{"Bob Jones", "bob@example.com", "viewer", "Sales"},
		{"Carol White", "carol@example.com", "viewer", "Engineering"},
	}
	for _, m := range seed {
		if _, err := s.Add(ctx, m.name, m.email, m.role, m.dept, ""); err != nil {
			t.Fatal(err)
		}
	}

	byRole, err := s.List(ctx, Filter{RoleID: "viewer"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byRole) != 2 {
		t.Fatalf("expected 2 viewers, got %d", len(byRole))
	}
	byDept, err := s.List(ctx, Filter{Department: "engineering"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byDept) != 2 {
		t.Fatalf("expected 2 in Engineering, got %d", len(byDept))
	}
	bySearch, err := s.List(ctx, Filter{Search: "SMITH"})
	if err != nil {
		t.Fatal(err)
	}
	if len(bySearch) != 1 || bySearch[0].Name != "Alice Smith" {
		t.Fatalf("unexpected search result %#v", bySearch)
	}
	combined, err := s.List(ctx, Filter{RoleID: "viewer", Department: "Engineering"})
	if err != nil {
		t.Fatal(err)
	}
	if len(combined) != 1 || combined[0].Name != "Carol White" {
		t.Fatalf("unexpected combined result %#v", combined)
	}
}

func TestDepartments(t *testing.T) {
	s := NewService()
	ctx := context.Background()
	for _, m := range []struct{ name, email, dept string }{
		{"Alice", "alice@example.com", "Engineering"},
		{"Bob", "bob@example.com", "Sales"},
		{"Carol", "carol@example.com", "Engineering"},
	} {
		if _, err := s.Add(ctx, m.name, m.email, "viewer", m.dept, ""); err != nil {
			t.Fatal(err)
		}
	}
	got := s.Departments(ctx)
	want := []string{"Engineering", "Sales"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
