// Package vault owns the access credentials attached to module assignments.
// A credential exists only while its assignment does and is never persisted
// independently of it.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrNotFound = errors.New("vault: credential not found")
	ErrConflict = errors.New("vault: credential already issued")
	ErrInvalid  = errors.New("vault: invalid input")
)

// Credential is the username/password pair a team member uses to access an
// assigned module. Distinct from their dashboard login.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Vault stores at most one credential per assignment. Safe for concurrent
// use.
type Vault struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// New returns an empty vault.
func New() *Vault {
	return &Vault{creds: make(map[string]Credential)}
}

// Issue attaches a credential to an assignment. The username is caller
// supplied; an empty password is replaced with a generated one. Issuing twice
// for the same assignment fails with ErrConflict.
func (v *Vault) Issue(ctx context.Context, assignmentID, username, password string) (Credential, error) {
	assignmentID = strings.TrimSpace(assignmentID)
	username = strings.TrimSpace(username)
	if assignmentID == "" {
		return Credential{}, fmt.Errorf("%w: assignment id is required", ErrInvalid)
	}
	if username == "" {
		return Credential{}, fmt.Errorf("%w: username is required", ErrInvalid)
	}
	if password == "" {
		generated, err := GeneratePassword(DefaultPasswordLength)
		if err != nil {
			return Credential{}, err
		}
		password = generated
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.creds[assignmentID]; ok {
		return Credential{}, ErrConflict
	}
	cred := Credential{Username: username, Password: password}
	v.creds[assignmentID] = cred
	return cred, nil
}

// Rotate replaces the password of an existing credential, keeping the
// username. The previous password is discarded and cannot be recovered.
func (v *Vault) Rotate(ctx context.Context, assignmentID string) (Credential, error) {
	password, err := GeneratePassword(DefaultPasswordLength)
	if err != nil {
		return Credential{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	cred, ok := v.creds[assignmentID]
	if !ok {
		return Credential{}, ErrNotFound
	}
	cred.Password = password
	v.creds[assignmentID] = cred
	return cred, nil
}

// Get returns the current credential for an assignment. Authorization is the
// caller's responsibility.
func (v *Vault) Get(ctx context.Context, assignmentID string) (Credential, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	cred, ok := v.creds[assignmentID]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return cred, nil
}

// Drop removes the credential for an assignment, if any.
func (v *Vault) Drop(ctx context.Context, assignmentID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.creds, assignmentID)
}
