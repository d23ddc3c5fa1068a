// Package locale holds the language-specific tables the engine runs on:
// stop words, weekday names, relative-date vocabulary, follow-up patterns
// and intent patterns. The scoring and clustering algorithms themselves are
// language-neutral; swapping the table retargets the whole engine to
// another working language.
package locale

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// IntentRule is one entry of the ordered intent table. Patterns are regex
// sources tested in order; the first rule with a matching pattern wins.
type IntentRule struct {
	Name              string   `yaml:"name"`
	Patterns          []string `yaml:"patterns"`
	EntityPattern     string   `yaml:"entity_pattern,omitempty"` // first capture group is the extracted entity
	RequiresRetrieval bool     `yaml:"requires_retrieval"`
	EntityTypes       []string `yaml:"entity_types,omitempty"`
}

// RelativeDateVocab carries the words the relative-date resolver composes
// its patterns from.
type RelativeDateVocab struct {
	Today            string   `yaml:"today"`
	Tomorrow         string   `yaml:"tomorrow"`
	DayAfterTomorrow string   `yaml:"day_after_tomorrow"`
	NextPrefix       string   `yaml:"next_prefix"`       // "nächsten|nächste|nächstes"
	AfterNextPrefix  string   `yaml:"after_next_prefix"` // "übernächsten|übernächste"
	InPrefix         string   `yaml:"in_prefix"`         // "in"
	DayUnits         string   `yaml:"day_units"`         // "Tag|Tagen"
	WeekUnits        string   `yaml:"week_units"`        // "Woche|Wochen"
	MonthUnits       string   `yaml:"month_units"`       // "Monat|Monaten"
	EndOfWeek        string   `yaml:"end_of_week"`
	MidWeek          string   `yaml:"mid_week"`
	WeekdayNames     []string `yaml:"weekday_names"` // Sunday first, matching time.Weekday
}

// Table is a complete language table
type Table struct {
	Name      string   `yaml:"name"`
	StopWords []string `yaml:"stop_words"`

	// Words that mark a query as people-oriented ("wer", "ansprechpartner", ...)
	PeopleQuestionWords []string `yaml:"people_question_words"`

	// Leading-pattern regexes that mark a short query as an implicit follow-up
	FollowUpPatterns []string `yaml:"follow_up_patterns"`

	// Generic question indicators for the low-confidence classifier fallback
	QuestionPatterns []string `yaml:"question_patterns"`

	// Preposition-triggered entity candidate patterns for live suggestions
	// ("über X", "mit X", ...); first capture group is the candidate.
	EntityCandidatePatterns []string `yaml:"entity_candidate_patterns"`

	RelativeDates RelativeDateVocab `yaml:"relative_dates"`

	// Marker used when appending a resolved date, e.g. "(Termin: ...)"
	DateAnnotationLabel string `yaml:"date_annotation_label"`

	Intents []IntentRule `yaml:"intents"`
}

// WeekdayName returns the display name for a weekday, falling back to the
// English name if the table is incomplete.
func (t *Table) WeekdayName(d time.Weekday) string {
	if int(d) < len(t.RelativeDates.WeekdayNames) {
		return t.RelativeDates.WeekdayNames[d]
	}
	return d.String()
}

// LoadFile reads a YAML locale table. Fields left empty in the file keep
// the German defaults, so a partial override file is enough to adjust a
// single word list.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale file: %w", err)
	}

	table := German()
	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("failed to parse locale file: %w", err)
	}

	return table, nil
}
