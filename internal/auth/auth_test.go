package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/foodgram/foodgram/internal/model"
)

// cheapParams keep hashing fast in tests.
var cheapParams = HashParams{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashSecret_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashSecretWithParams("fg_live_abcdef_secret", cheapParams)
	if err != nil {
		t.Fatalf("HashSecretWithParams: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("hash should be PHC formatted, got %s", hash)
	}

	ok, err := VerifySecret("fg_live_abcdef_secret", hash)
	if err != nil || !ok {
		t.Errorf("VerifySecret(correct) = %v, %v", ok, err)
	}
	ok, err = VerifySecret("fg_live_abcdef_other", hash)
	if err != nil || ok {
		t.Errorf("VerifySecret(wrong) = %v, %v", ok, err)
	}

	other, _ := HashSecretWithParams("fg_live_abcdef_secret", cheapParams)
	if other == hash {
		t.Error("hashes of the same secret should differ by salt")
	}
}

func TestVerifySecret_InvalidHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
		want error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong algorithm", "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA", ErrInvalidHash},
		{"wrong version", "$argon2id$v=1$m=1024,t=1,p=1$c2FsdA$aGFzaA", ErrIncompatibleVersion},
		{"bad params", "$argon2id$v=19$m=x$c2FsdA$aGFzaA", ErrInvalidHash},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA", ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := VerifySecret("x", tt.hash); err != tt.want {
				t.Errorf("VerifySecret() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestQuickHash(t *testing.T) {
	t.Parallel()

	a := QuickHash("key")
	if a != QuickHash("key") {
		t.Error("QuickHash should be deterministic")
	}
	if len(a) != 32 {
		t.Errorf("QuickHash length = %d, want 32", len(a))
	}
	if a == QuickHash("other") {
		t.Error("different inputs should hash differently")
	}
}

func TestGenerateAPIKey_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env        string
		wantPrefix string
	}{
		{EnvLive, "fg_live_"},
		{EnvTest, "fg_test_"},
		{"staging", "fg_live_"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			key, err := generateAPIKey(tt.env, cheapParams)
			if err != nil {
				t.Fatalf("generateAPIKey: %v", err)
			}
			if !strings.HasPrefix(key.Plaintext, tt.wantPrefix) {
				t.Errorf("plaintext %q should start with %q", key.Plaintext, tt.wantPrefix)
			}
			if len(key.Prefix) != KeyPrefixLen {
				t.Errorf("prefix length = %d", len(key.Prefix))
			}

			parsed, err := ParseAPIKey(key.Plaintext)
			if err != nil {
				t.Fatalf("ParseAPIKey: %v", err)
			}
			if parsed.Prefix != key.Prefix || len(parsed.Secret) != KeySecretLen {
				t.Errorf("parsed = %+v", parsed)
			}

			ok, err := VerifySecret(key.Plaintext, key.Hash)
			if err != nil || !ok {
				t.Errorf("generated hash should verify: %v, %v", ok, err)
			}
		})
	}
}

func TestParseAPIKey_Invalid(t *testing.T) {
	t.Parallel()

	invalid := []string{
		"",
		"pk_live_abcdef_0123456789abcdef0123456789abcdef",
		"fg_prod_abcdef_0123456789abcdef0123456789abcdef",
		"fg_live_ABCDEF_0123456789abcdef0123456789abcdef",
		"fg_live_abcde_0123456789abcdef0123456789abcdef",
		"fg_live_abcdef_0123456789abcdef",
	}
	for _, key := range invalid {
		if _, err := ParseAPIKey(key); err != ErrInvalidKeyFormat {
			t.Errorf("ParseAPIKey(%q) error = %v", key, err)
		}
		if ValidateKeyFormat(key) {
			t.Errorf("ValidateKeyFormat(%q) = true", key)
		}
	}

	if !ValidateKeyFormat("fg_test_abcdef_0123456789abcdef0123456789abcdef") {
		t.Error("valid key rejected")
	}
}

func TestViewerFromContext(t *testing.T) {
	t.Parallel()

	if v := ViewerFromContext(context.Background()); !v.IsAnonymous() {
		t.Errorf("empty context should be anonymous, got %+v", v)
	}

	ctx := ContextWithAuth(context.Background(), &model.AuthContext{UserID: 12, Scopes: []string{model.ScopeAdmin}})
	v := ViewerFromContext(ctx)
	if v.UserID != 12 || !v.IsAdmin {
		t.Errorf("viewer = %+v", v)
	}
	if UserIDFromContext(ctx) != 12 {
		t.Errorf("UserIDFromContext = %d", UserIDFromContext(ctx))
	}
}
