package vault

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestIssueAndGet(t *testing.T) {
	v := New()
	ctx := context.Background()

	cred, err := v.Issue(ctx, "a1", "alice.analytics", "hunter2aa")
	if err != nil {
		t.Fatal(err)
	}
	if cred.Username != "alice.analytics" || cred.Password != "hunter2aa" {
		t.Fatalf("unexpected credential %#v", cred)
	}
	got, err := v.Get(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if got != cred {
		t.Fatalf("get mismatch: %#v != %#v", got, cred)
	}
}

func TestIssueGeneratesPassword(t *testing.T) {
	v := New()
	cred, err := v.Issue(context.Background(), "a1", "alice", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cred.Password) != DefaultPasswordLength {
		t.Fatalf("expected %d chars, got %d", DefaultPasswordLength, len(cred.Password))
	}
}

func TestIssueTwiceConflicts(t *testing.T) {
	v := New()
	ctx := context.Background()
	if _, err := v.Issue(ctx, "a1", "alice", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Issue(ctx, "a1", "bob", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestIssueValidation(t *testing.T) {
	v := New()
	ctx := context.Background()
	if _, err := v.Issue(ctx, "", "alice", ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if _, err := v.Issue(ctx, "a1", "  ", ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestRotateKeepsUsername(t *testing.T) {
	v := New()
	ctx := context.Background()
	if _, err := v.Issue(ctx, "a1", "alice", "oldsecret"); err != nil {
		t.Fatal(err)
	}
	rotated, err := v.Rotate(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if rotated.Username != "alice" {
		t.Fatalf("rotate changed username to %q", rotated.Username)
	}
	if rotated.Password == "oldsecret" {
		t.Fatal("rotate kept the old password")
	}
	got, _ := v.Get(ctx, "a1")
	if got.Password != rotated.Password {
		t.Fatal("old password still retrievable")
	}
}

func TestRotateUnknownAssignment(t *testing.T) {
	v := New()
	if _, err := v.Rotate(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDrop(t *testing.T) {
	v := New()
	ctx := context.Background()
	if _, err := v.Issue(ctx, "a1", "alice", ""); err != nil {
		t.Fatal(err)
	}
	v.Drop(ctx, "a1")
	if _, err := v.Get(ctx, "a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after drop, got %v", err)
	}
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pw, err := GeneratePassword(DefaultPasswordLength)
		if err != nil {
			t.Fatal(err)
		}
		if len(pw) != DefaultPasswordLength {
			t.Fatalf("length %d", len(pw))
		}
		for _, r := range pw {
			if !strings.ContainsRune(passwordAlphabet, r) {
				t.Fatalf("character %q outside alphabet", r)
			}
		}
		seen[pw] = true
	}
	if len(seen) < 49 {
		t.Fatalf("generator produced %d distinct passwords out of 50", len(seen))
	}
}

func TestGeneratePasswordRaisesShortLengths(t *testing.T) {
	pw, err := GeneratePassword(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(pw) != MinPasswordLength {
		t.Fatalf("expected floor of %d, got %d", MinPasswordLength, len(pw))
	}
}
