package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/buddemax/kontext/internal/engine"
	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/store"
)

// ErrThrottled is returned when a session exceeds its suggestion rate
var ErrThrottled = fmt.Errorf("suggestion rate limit exceeded")

// SuggestionService serves live suggestions for partial utterances. Partial
// transcripts repeat heavily while the user speaks, so results are cached
// per mode+partial for a short TTL, and each session gets a token-bucket
// budget on actual fetches.
type SuggestionService struct {
	knowledge *store.KnowledgeStore
	provider  *EngineProvider
	metrics   *Metrics

	cache *cache.Cache

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perSec   rate.Limit
}

// NewSuggestionService creates a new suggestion service. cacheTTL bounds
// how long a partial's results are reused; perSecond bounds fetches per
// session.
func NewSuggestionService(knowledge *store.KnowledgeStore, provider *EngineProvider, metrics *Metrics, cacheTTL time.Duration, perSecond float64) *SuggestionService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	if perSecond <= 0 {
		perSecond = 5
	}
	return &SuggestionService{
		knowledge: knowledge,
		provider:  provider,
		metrics:   metrics,
		cache:     cache.New(cacheTTL, 2*cacheTTL),
		limiters:  make(map[string]*rate.Limiter),
		perSec:    rate.Limit(perSecond),
	}
}

// Fetch returns live suggestions for a partial utterance
func (s *SuggestionService) Fetch(ctx context.Context, sessionID, mode, partial string) (engine.SuggestionResult, error) {
	if !models.ValidMode(mode) {
		return engine.SuggestionResult{}, fmt.Errorf("invalid mode %q", mode)
	}

	key := mode + "|" + strings.ToLower(strings.TrimSpace(partial))
	if cached, ok := s.cache.Get(key); ok {
		if s.metrics != nil {
			s.metrics.SuggestionCacheHits.Inc()
		}
		return cached.(engine.SuggestionResult), nil
	}

	if !s.limiter(sessionID).Allow() {
		if s.metrics != nil {
			s.metrics.SuggestionThrottled.Inc()
		}
		return engine.SuggestionResult{}, ErrThrottled
	}

	entries, err := s.knowledge.ListByMode(ctx, mode)
	if err != nil {
		return engine.SuggestionResult{}, err
	}

	result := s.provider.Engine().FetchLiveSuggestions(entries, partial, engine.SuggestionOptions{Mode: mode})
	if s.metrics != nil {
		s.metrics.SuggestionFetches.Inc()
	}

	s.cache.SetDefault(key, result)
	return result, nil
}

// limiter returns the per-session token bucket, creating it on first use.
// Burst of 2 absorbs the debounce edge where two partials land close
// together.
func (s *SuggestionService) limiter(sessionID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	lim, ok := s.limiters[sessionID]
	if !ok {
		lim = rate.NewLimiter(s.perSec, 2)
		s.limiters[sessionID] = lim
	}
	return lim
}
