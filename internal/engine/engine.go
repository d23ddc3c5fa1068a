// Package engine implements the contextual knowledge retrieval and
// maintenance core: keyword-based relevance ranking over personal facts and
// document analyses, conversation-aware context assembly, intent
// classification, live suggestions for partial utterances, and the
// load-time maintenance pass (duplicate clustering, relative-date
// resolution).
//
// The engine holds no mutable collection state. Every retrieval function
// takes the knowledge/document/conversation collections as plain arguments
// and returns new values; the caller owns the store and decides what to
// persist. Concurrent retrievals over the same snapshot are safe.
package engine

import (
	"regexp"
	"time"

	"github.com/buddemax/kontext/internal/locale"
)

// SimilarityFunc is the pluggable string-similarity collaborator used by
// duplicate clustering. Implementations must return a value in [0,1].
type SimilarityFunc func(a, b string) float64

type compiledIntent struct {
	rule     locale.IntentRule
	patterns []*regexp.Regexp
	entity   *regexp.Regexp
}

// Engine is the compiled form of a locale table. It is immutable after
// construction; hot-reloading a locale means building a new Engine and
// swapping the pointer.
type Engine struct {
	locale     *locale.Table
	stopWords  map[string]struct{}
	peopleWord map[string]struct{}

	followUpRes  []*regexp.Regexp
	questionRes  []*regexp.Regexp
	candidateRes []*regexp.Regexp
	intents      []compiledIntent

	capitalizedPhrase *regexp.Regexp
	quotedText        *regexp.Regexp

	datePatterns []datePattern
	absoluteDate *regexp.Regexp
	annotation   *regexp.Regexp

	now        func() time.Time
	similarity SimilarityFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the current-time source. Used by tests and by
// callers that need deterministic scoring.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSimilarity overrides the string-similarity collaborator used by
// duplicate clustering.
func WithSimilarity(fn SimilarityFunc) Option {
	return func(e *Engine) { e.similarity = fn }
}

// New compiles a locale table into an Engine.
func New(table *locale.Table, opts ...Option) (*Engine, error) {
	e := &Engine{
		locale:     table,
		stopWords:  make(map[string]struct{}, len(table.StopWords)),
		peopleWord: make(map[string]struct{}, len(table.PeopleQuestionWords)),
		now:        time.Now,
		similarity: CombinedSimilarity,
	}

	for _, w := range table.StopWords {
		e.stopWords[normalizeToken(w)] = struct{}{}
	}
	for _, w := range table.PeopleQuestionWords {
		e.peopleWord[normalizeToken(w)] = struct{}{}
	}

	var err error
	if e.followUpRes, err = compileAll(table.FollowUpPatterns, "(?i)"); err != nil {
		return nil, err
	}
	if e.questionRes, err = compileAll(table.QuestionPatterns, "(?i)"); err != nil {
		return nil, err
	}
	if e.candidateRes, err = compileAll(table.EntityCandidatePatterns, ""); err != nil {
		return nil, err
	}

	for _, rule := range table.Intents {
		ci := compiledIntent{rule: rule}
		if ci.patterns, err = compileAll(rule.Patterns, ""); err != nil {
			return nil, err
		}
		if rule.EntityPattern != "" {
			if ci.entity, err = regexp.Compile(rule.EntityPattern); err != nil {
				return nil, err
			}
		}
		e.intents = append(e.intents, ci)
	}

	e.capitalizedPhrase = regexp.MustCompile(`[A-ZÄÖÜ][\wäöüß-]*(?:\s+[A-ZÄÖÜ][\wäöüß-]*)+`)
	e.quotedText = regexp.MustCompile(`["„»]([^"“«»]+)["“«»]`)

	if err = e.compileDatePatterns(); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Locale returns the table the engine was compiled from.
func (e *Engine) Locale() *locale.Table {
	return e.locale
}

func compileAll(sources []string, prefix string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile(prefix + src)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}
	return res, nil
}
