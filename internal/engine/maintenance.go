package engine

import (
	"strings"
	"time"

	"github.com/buddemax/kontext/internal/models"
)

// Maintenance defaults
const (
	DefaultSimilarityThreshold = 0.75
	DefaultMaxEnrichmentAge    = 7 * 24 * time.Hour

	// Entries land in their own length bucket plus both neighbors, so
	// near-length matches at bucket boundaries are still compared.
	lengthBucketWidth = 20
)

// MaintenanceOptions configures the load-time cleanup pass
type MaintenanceOptions struct {
	SimilarityThreshold float64       // default 0.75
	MaxEnrichmentAge    time.Duration // default 7 days; deadline entries are exempt
	Now                 time.Time     // defaults to the engine clock
}

// MaintenanceResult is the outcome of a cleanup pass. Nothing is deleted
// or mutated in place: Entries holds the surviving collection with
// enrichment applied, and the caller decides what to persist.
type MaintenanceResult struct {
	Duplicates []models.DuplicateGroup
	Enriched   []models.KnowledgeEntry
	Entries    []models.KnowledgeEntry
}

// CleanupKnowledgeEntries runs the two maintenance passes over a loaded
// collection: near-duplicate clustering and relative-date enrichment.
// Running it again on its own output is a no-op.
func (e *Engine) CleanupKnowledgeEntries(entries []models.KnowledgeEntry, opts MaintenanceOptions) MaintenanceResult {
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if opts.MaxEnrichmentAge <= 0 {
		opts.MaxEnrichmentAge = DefaultMaxEnrichmentAge
	}
	if opts.Now.IsZero() {
		opts.Now = e.now()
	}

	result := MaintenanceResult{}

	groups, removed := e.clusterDuplicates(entries, opts.SimilarityThreshold)
	result.Duplicates = groups

	for i, entry := range entries {
		if _, gone := removed[i]; gone {
			continue
		}
		if enriched, changed := e.enrichEntry(entry, opts); changed {
			result.Enriched = append(result.Enriched, enriched)
			entry = enriched
		}
		result.Entries = append(result.Entries, entry)
	}

	return result
}

// clusterDuplicates buckets entries by content length to avoid the full
// pairwise comparison, compares within-bucket pairs with the similarity
// collaborator, and unions matches into disjoint-set clusters. For each
// cluster the most recently created entry survives. Modes never mix.
func (e *Engine) clusterDuplicates(entries []models.KnowledgeEntry, threshold float64) ([]models.DuplicateGroup, map[int]struct{}) {
	n := len(entries)
	if n < 2 {
		return nil, nil
	}

	buckets := make(map[int][]int)
	for i, entry := range entries {
		bucket := len([]rune(entry.Content)) / lengthBucketWidth
		for _, b := range []int{bucket - 1, bucket, bucket + 1} {
			if b >= 0 {
				buckets[b] = append(buckets[b], i)
			}
		}
	}

	uf := newUnionFind(n)
	compared := make(map[[2]int]struct{})

	for _, members := range buckets {
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				i, j := members[x], members[y]
				if i > j {
					i, j = j, i
				}
				key := [2]int{i, j}
				if _, done := compared[key]; done {
					continue
				}
				compared[key] = struct{}{}

				if entries[i].Mode != entries[j].Mode {
					continue
				}
				if e.similarity(entries[i].Content, entries[j].Content) >= threshold {
					uf.union(i, j)
				}
			}
		}
	}

	clusters := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		clusters[root] = append(clusters[root], i)
	}

	var groups []models.DuplicateGroup
	removed := make(map[int]struct{})

	// Deterministic order over clusters: iterate entries, emit each
	// cluster when its first member is reached.
	emitted := make(map[int]struct{})
	for i := 0; i < n; i++ {
		root := uf.find(i)
		if _, done := emitted[root]; done {
			continue
		}
		emitted[root] = struct{}{}

		members := clusters[root]
		if len(members) < 2 {
			continue
		}

		keptIdx := members[0]
		for _, idx := range members[1:] {
			if !entries[idx].CreatedAt.Before(entries[keptIdx].CreatedAt) {
				keptIdx = idx
			}
		}

		group := models.DuplicateGroup{Kept: entries[keptIdx]}
		for _, idx := range members {
			if idx == keptIdx {
				continue
			}
			group.Removed = append(group.Removed, entries[idx])
			removed[idx] = struct{}{}
		}
		groups = append(groups, group)
	}

	return groups, removed
}

// enrichEntry resolves the first relative-date expression in an entry's
// content into an absolute date annotation. Entries that already carry an
// annotation or an absolute date, and entries older than the age cap
// (deadlines excepted), pass through unchanged.
func (e *Engine) enrichEntry(entry models.KnowledgeEntry, opts MaintenanceOptions) (models.KnowledgeEntry, bool) {
	if e.annotation.MatchString(entry.Content) {
		return entry, false
	}
	if e.absoluteDate.MatchString(entry.Content) {
		return entry, false
	}

	isDeadline := entry.Metadata.EntityType == models.EntityDeadline
	if !isDeadline && opts.Now.Sub(entry.CreatedAt) > opts.MaxEnrichmentAge {
		return entry, false
	}

	resolved, ok := e.ResolveRelativeDate(entry.Content, entry.CreatedAt)
	if !ok {
		return entry, false
	}

	entry.Content = strings.TrimRight(entry.Content, " ") + " " + e.formatDateAnnotation(resolved)
	entry.UpdatedAt = opts.Now
	return entry, true
}
