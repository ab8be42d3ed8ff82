package service

import (
	"context"
	"errors"
	"testing"

	"github.com/foodgram/foodgram/internal/model"
)

func TestAPIKeyService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAPIKeyService(f.store, fakeIssuer, f.logger)

	caller := &model.AuthContext{UserID: f.alice.ID, Scopes: []string{model.ScopeRead, model.ScopeWrite}}

	key, plaintext, err := svc.Create(ctx, caller, []string{model.ScopeRead}, "ci")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if plaintext == "" || key.UserID != f.alice.ID || key.Name != "ci" {
		t.Fatalf("unexpected key %+v", key)
	}

	keys, err := svc.List(ctx, f.alice.ID)
	if err != nil || len(keys) != 1 {
		t.Fatalf("List = %d keys, %v", len(keys), err)
	}
	keys, err = svc.List(ctx, f.bob.ID)
	if err != nil || keys == nil || len(keys) != 0 {
		t.Fatalf("expected empty non-nil list for bob, got %v, %v", keys, err)
	}

	if _, _, err := svc.Rotate(ctx, f.bob.ID, key.ID); !errors.Is(err, ErrAPIKeyNotFound) {
		t.Fatalf("expected ErrAPIKeyNotFound rotating another user's key, got %v", err)
	}

	rotated, _, err := svc.Rotate(ctx, f.alice.ID, key.ID)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if rotated.ID == key.ID || rotated.Name != "ci" || len(rotated.Scopes) != 1 {
		t.Fatalf("unexpected replacement %+v", rotated)
	}
	old, err := f.store.GetAPIKeyByID(ctx, key.ID)
	if err != nil || !old.IsRevoked() {
		t.Fatalf("expected old key revoked, got %+v, %v", old, err)
	}

	if err := svc.Revoke(ctx, f.alice.ID, rotated.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := svc.Revoke(ctx, f.alice.ID, rotated.ID); !errors.Is(err, ErrAPIKeyNotFound) {
		t.Fatalf("expected ErrAPIKeyNotFound on second revoke, got %v", err)
	}
}

func TestAPIKeyService_CreateScopes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewAPIKeyService(f.store, fakeIssuer, f.logger)

	user := &model.AuthContext{UserID: f.alice.ID, Scopes: []string{model.ScopeRead, model.ScopeWrite}}
	admin := &model.AuthContext{UserID: f.bob.ID, Scopes: []string{model.ScopeAdmin}}

	tests := []struct {
		name    string
		caller  *model.AuthContext
		scopes  []string
		wantErr error
	}{
		{"anonymous", nil, nil, ErrUnauthenticated},
		{"invalid_scope", user, []string{"delete"}, ErrInvalidScope},
		{"escalation", user, []string{model.ScopeAdmin}, ErrForbidden},
		{"admin_grants_admin", admin, []string{model.ScopeAdmin}, nil},
		{"default_scopes", user, nil, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, _, err := svc.Create(ctx, test.caller, test.scopes, test.name); !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

type recordingInvalidator struct {
	keyIDs []string
	err    error
}

func (r *recordingInvalidator) InvalidateAPIKey(_ context.Context, keyID string) error {
	r.keyIDs = append(r.keyIDs, keyID)
	return r.err
}

func TestAPIKeyService_InvalidatesAuthCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	inv := &recordingInvalidator{}
	svc := NewAPIKeyService(f.store, fakeIssuer, f.logger).WithAuthInvalidator(inv)

	caller := &model.AuthContext{UserID: f.alice.ID, Scopes: []string{model.ScopeRead, model.ScopeWrite}}
	key, _, err := svc.Create(ctx, caller, nil, "deploy")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(inv.keyIDs) != 0 {
		t.Fatalf("expected no invalidation on create, got %v", inv.keyIDs)
	}

	rotated, _, err := svc.Rotate(ctx, f.alice.ID, key.ID)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	// A failing cache must not fail the revoke.
	inv.err = errors.New("redis down")
	if err := svc.Revoke(ctx, f.alice.ID, rotated.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	if len(inv.keyIDs) != 2 || inv.keyIDs[0] != key.ID || inv.keyIDs[1] != rotated.ID {
		t.Fatalf("expected invalidations [%s %s], got %v", key.ID, rotated.ID, inv.keyIDs)
	}
}
