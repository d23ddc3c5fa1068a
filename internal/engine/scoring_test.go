package engine

import (
	"math"
	"testing"
	"time"

	"github.com/buddemax/kontext/internal/models"
)

func TestRecencyScoreSteps(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		expected float64
	}{
		{"brand new", 0, 1.0},
		{"12 hours", 12 * time.Hour, 1.0},
		{"exactly 24 hours", 24 * time.Hour, 1.0},
		{"3 days", 3 * 24 * time.Hour, 0.8},
		{"exactly 7 days", 7 * 24 * time.Hour, 0.8},
		{"14 days", 14 * 24 * time.Hour, 0.5},
		{"exactly 30 days", 30 * 24 * time.Hour, 0.5},
		{"90 days", 90 * 24 * time.Hour, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recencyScore(tt.age); got != tt.expected {
				t.Errorf("expected %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}

func TestAccessScoreSaturates(t *testing.T) {
	tests := []struct {
		count    int64
		expected float64
	}{
		{0, 0},
		{10, 0.1},
		{50, 0.5},
		{100, 1.0},
		{500, 1.0},
	}

	for _, tt := range tests {
		if got := accessScore(tt.count, 100); math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("accessScore(%d): expected %.2f, got %.2f", tt.count, tt.expected, got)
		}
	}
}

func TestKeywordScore(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		keywords []string
		expected float64
		matched  int
	}{
		{
			name:     "no keywords",
			content:  "Hans arbeitet bei Siemens",
			keywords: nil,
			expected: 0,
			matched:  0,
		},
		{
			name:     "all match",
			content:  "Hans arbeitet bei Siemens",
			keywords: []string{"hans", "siemens"},
			expected: 1.0,
			matched:  2,
		},
		{
			name:     "half match",
			content:  "Hans arbeitet bei Siemens",
			keywords: []string{"hans", "bosch"},
			expected: 0.5,
			matched:  1,
		},
		{
			name:     "case insensitive substring",
			content:  "Projektleiter für PHOENIX",
			keywords: []string{"phoenix"},
			expected: 1.0,
			matched:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, matched := keywordScore(tt.content, tt.keywords)
			if math.Abs(score-tt.expected) > 0.001 {
				t.Errorf("expected score %.2f, got %.2f", tt.expected, score)
			}
			if len(matched) != tt.matched {
				t.Errorf("expected %d matched keywords, got %d", tt.matched, len(matched))
			}
		})
	}
}

func TestScoreEntryBoundsAndWeights(t *testing.T) {
	e := newTestEngine(t)

	entry := testEntry("k1", models.ModeWork, "Hans arbeitet bei Siemens", testNow.Add(-time.Hour))
	entry.Metadata.AccessCount = 50

	score, matched := e.ScoreEntry(entry, []string{"hans", "siemens"}, testNow)

	// keyword 1.0*0.5 + recency 1.0*0.3 + access 0.5*0.2
	expected := 0.5 + 0.3 + 0.1
	if math.Abs(score-expected) > 0.001 {
		t.Errorf("expected %.2f, got %.2f", expected, score)
	}
	if score < 0 || score > 1 {
		t.Errorf("score out of bounds: %.3f", score)
	}
	if len(matched) != 2 {
		t.Errorf("expected both keywords matched, got %v", matched)
	}
}

func TestEntryAgeUsesLatestChange(t *testing.T) {
	entry := testEntry("k1", models.ModeWork, "alt", testNow.Add(-40*24*time.Hour))
	entry.UpdatedAt = testNow.Add(-time.Hour)

	if got := entryAge(entry, testNow); got != time.Hour {
		t.Errorf("expected age 1h from UpdatedAt, got %v", got)
	}
}
