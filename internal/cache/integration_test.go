//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/testutil"
)

func newTestCache(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	ctx := context.Background()
	url := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return ctx, c
}

func TestIntegrationTags_RoundTrip(t *testing.T) {
	ctx, c := newTestCache(t)

	if _, err := c.GetTags(ctx); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss on empty cache, got %v", err)
	}

	tags := []*model.Tag{{ID: 1, Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}}
	if err := c.SetTags(ctx, tags); err != nil {
		t.Fatalf("SetTags: %v", err)
	}

	got, err := c.GetTags(ctx)
	if err != nil || len(got) != 1 || got[0].Slug != "breakfast" {
		t.Fatalf("GetTags = %v, %v", got, err)
	}

	if err := c.InvalidateTags(ctx); err != nil {
		t.Fatalf("InvalidateTags: %v", err)
	}
	if _, err := c.GetTags(ctx); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected miss after invalidation, got %v", err)
	}
}

func TestIntegrationAuthContext_RoundTrip(t *testing.T) {
	ctx, c := newTestCache(t)

	in := &model.AuthContext{KeyID: "k1", KeyPrefix: "abc123", UserID: 42, Scopes: []string{model.ScopeRead}, RateLimitTier: model.TierPro}
	if err := c.SetAuthContext(ctx, "hash", in); err != nil {
		t.Fatalf("SetAuthContext: %v", err)
	}

	out, err := c.GetAuthContext(ctx, "hash")
	if err != nil || out == nil || out.UserID != 42 || out.RateLimitTier != model.TierPro {
		t.Fatalf("GetAuthContext = %+v, %v", out, err)
	}

	if err := c.InvalidateAPIKey(ctx, "k1"); err != nil {
		t.Fatalf("InvalidateAPIKey: %v", err)
	}
	if out, _ := c.GetAuthContext(ctx, "hash"); out != nil {
		t.Errorf("expected miss after invalidate, got %+v", out)
	}
	if err := c.InvalidateAPIKey(ctx, "never-cached"); err != nil {
		t.Errorf("InvalidateAPIKey on a cold key: %v", err)
	}
}

func TestIntegrationRateLimit_Exhausts(t *testing.T) {
	ctx, c := newTestCache(t)

	for i := range 3 {
		res, err := c.CheckAPIRateLimit(ctx, "burst-key", 60, 3)
		if err != nil || !res.Allowed {
			t.Fatalf("request %d should pass: %+v, %v", i, res, err)
		}
	}

	res, err := c.CheckAPIRateLimit(ctx, "burst-key", 60, 3)
	if err != nil {
		t.Fatalf("CheckAPIRateLimit: %v", err)
	}
	if res.Allowed || res.RetryAfter <= 0 {
		t.Errorf("fourth request should be limited, got %+v", res)
	}
}
