package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/buddemax/kontext/internal/models"
)

func TestSuggestionServiceFetch(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSuggestionService(env.knowledge, env.provider, nil, 30*time.Second, 100)
	ctx := context.Background()

	env.seedKnowledge(t, "k1", models.ModeWork, "Anna Schmidt leitet das Marketing", time.Hour)
	env.seedKnowledge(t, "k2", models.ModePrivate, "Anna Schmidt hat im Mai Geburtstag", time.Hour)

	result, err := svc.Fetch(ctx, "session-1", models.ModeWork, "Ich telefoniere gleich mit Anna Schmidt")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0] != "Anna Schmidt" {
		t.Fatalf("expected candidate Anna Schmidt, got %v", result.Candidates)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0].ID != "k1" {
		t.Fatalf("expected only the work entry suggested, got %+v", result.Suggestions)
	}

	if _, err := svc.Fetch(ctx, "session-1", "gaming", "Anna"); err == nil {
		t.Error("invalid mode must be rejected")
	}
}

func TestSuggestionServiceCaching(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSuggestionService(env.knowledge, env.provider, nil, 30*time.Second, 100)
	ctx := context.Background()

	env.seedKnowledge(t, "k1", models.ModeWork, "Anna Schmidt leitet das Marketing", time.Hour)

	first, err := svc.Fetch(ctx, "session-1", models.ModeWork, "mit Anna Schmidt")
	if err != nil {
		t.Fatal(err)
	}

	// New matching entry appears, but the cached partial keeps serving the
	// old result until the TTL expires.
	env.seedKnowledge(t, "k2", models.ModeWork, "Anna Schmidt fährt nach Berlin", time.Hour)

	second, err := svc.Fetch(ctx, "session-1", models.ModeWork, "mit Anna Schmidt")
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Suggestions) != len(first.Suggestions) {
		t.Error("repeated partial must be served from cache")
	}
}

func TestSuggestionServiceThrottling(t *testing.T) {
	env := newTestEnv(t)
	// 1 fetch/sec with burst 2; distinct partials bypass the cache.
	svc := NewSuggestionService(env.knowledge, env.provider, nil, 30*time.Second, 1)
	ctx := context.Background()

	env.seedKnowledge(t, "k1", models.ModeWork, "Anna Schmidt leitet das Marketing", time.Hour)

	partials := []string{"mit Anna", "mit Anna S", "mit Anna Sch", "mit Anna Schm"}
	throttled := false
	for _, partial := range partials {
		if _, err := svc.Fetch(ctx, "session-1", models.ModeWork, partial); err != nil {
			if errors.Is(err, ErrThrottled) {
				throttled = true
				break
			}
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if !throttled {
		t.Error("expected the token bucket to throttle rapid distinct partials")
	}

	// Another session has its own budget.
	if _, err := svc.Fetch(ctx, "session-2", models.ModeWork, "mit Anna Schmi"); err != nil {
		t.Errorf("other sessions must not share the bucket: %v", err)
	}
}
