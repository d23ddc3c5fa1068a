package engine

import (
	"math"
	"testing"
)

func TestCombinedSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{
			name: "identical",
			a:    "Hans arbeitet bei Siemens",
			b:    "Hans arbeitet bei Siemens",
			min:  1.0, max: 1.0,
		},
		{
			name: "case and whitespace insensitive",
			a:    "  Hans arbeitet bei Siemens ",
			b:    "hans ARBEITET bei siemens",
			min:  1.0, max: 1.0,
		},
		{
			name: "filler word rephrasing stays above clustering threshold",
			a:    "Hans arbeitet bei Siemens",
			b:    "Hans arbeitet bei der Firma Siemens",
			min:  DefaultSimilarityThreshold, max: 1.0,
		},
		{
			name: "unrelated facts stay below threshold",
			a:    "Hans arbeitet bei Siemens",
			b:    "Das Meeting ist nächsten Montag",
			min:  0, max: DefaultSimilarityThreshold - 0.01,
		},
		{
			name: "empty side",
			a:    "Hans arbeitet bei Siemens",
			b:    "",
			min:  0, max: 0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			min:  1.0, max: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CombinedSimilarity(tt.a, tt.b)
			if got < tt.min-0.001 || got > tt.max+0.001 {
				t.Errorf("CombinedSimilarity(%q, %q) = %.3f, want [%.3f, %.3f]",
					tt.a, tt.b, got, tt.min, tt.max)
			}
			// Symmetry
			if rev := CombinedSimilarity(tt.b, tt.a); math.Abs(rev-got) > 0.0001 {
				t.Errorf("similarity must be symmetric: %.3f vs %.3f", got, rev)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"straße", "strasse", 2},
		{"montag", "montag", 0},
	}

	for _, tt := range tests {
		if got := levenshtein([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTokenOverlap(t *testing.T) {
	// Subset relation: the smaller set is fully contained.
	if got := tokenOverlap("hans arbeitet bei siemens", "hans arbeitet bei der firma siemens"); math.Abs(got-1.0) > 0.001 {
		t.Errorf("expected full overlap coefficient, got %.3f", got)
	}
	if got := tokenOverlap("hans mag kaffee", "anna trinkt tee"); got != 0 {
		t.Errorf("expected zero overlap, got %.3f", got)
	}
}
