package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// datePattern pairs a relative-date expression with its resolver. The
// resolver works from the entry's creation time, never from "now", so
// maintenance stays correct when it runs long after the entry was spoken.
type datePattern struct {
	re      *regexp.Regexp
	resolve func(base time.Time, match []string) (time.Time, bool)
}

// Word boundaries built from letter classes instead of \b: RE2's \b is
// ASCII-only and misfires next to umlauts ("übermorgen" would otherwise
// satisfy the inner "morgen" pattern).
const (
	boundL = `(?:^|[^\p{L}])`
	boundR = `(?:[^\p{L}]|$)`
)

func (e *Engine) compileDatePatterns() error {
	vocab := e.locale.RelativeDates

	weekdayAlt := make([]string, 0, len(vocab.WeekdayNames))
	for _, name := range vocab.WeekdayNames {
		weekdayAlt = append(weekdayAlt, regexp.QuoteMeta(name))
	}
	weekdays := strings.Join(weekdayAlt, "|")

	type spec struct {
		source  string
		resolve func(base time.Time, match []string) (time.Time, bool)
	}

	specs := []spec{
		{
			source: boundL + regexp.QuoteMeta(vocab.Today) + boundR,
			resolve: func(base time.Time, _ []string) (time.Time, bool) {
				return base, true
			},
		},
		{
			source: boundL + regexp.QuoteMeta(vocab.Tomorrow) + boundR,
			resolve: func(base time.Time, _ []string) (time.Time, bool) {
				return base.AddDate(0, 0, 1), true
			},
		},
		{
			source: boundL + regexp.QuoteMeta(vocab.DayAfterTomorrow) + boundR,
			resolve: func(base time.Time, _ []string) (time.Time, bool) {
				return base.AddDate(0, 0, 2), true
			},
		},
		{
			source: boundL + vocab.NextPrefix + `\s+(` + weekdays + `)` + boundR,
			resolve: func(base time.Time, match []string) (time.Time, bool) {
				return e.resolveWeekday(base, match[1], 0)
			},
		},
		{
			source: boundL + vocab.AfterNextPrefix + `\s+(` + weekdays + `)` + boundR,
			resolve: func(base time.Time, match []string) (time.Time, bool) {
				return e.resolveWeekday(base, match[1], 7)
			},
		},
		{
			source: boundL + regexp.QuoteMeta(vocab.InPrefix) + `\s+(\d+)\s+` + vocab.DayUnits + boundR,
			resolve: func(base time.Time, match []string) (time.Time, bool) {
				n, err := strconv.Atoi(match[1])
				if err != nil {
					return time.Time{}, false
				}
				return base.AddDate(0, 0, n), true
			},
		},
		{
			source: boundL + regexp.QuoteMeta(vocab.InPrefix) + `\s+(\d+)\s+` + vocab.WeekUnits + boundR,
			resolve: func(base time.Time, match []string) (time.Time, bool) {
				n, err := strconv.Atoi(match[1])
				if err != nil {
					return time.Time{}, false
				}
				return base.AddDate(0, 0, 7*n), true
			},
		},
		{
			source: boundL + regexp.QuoteMeta(vocab.InPrefix) + `\s+(\d+)\s+` + vocab.MonthUnits + boundR,
			resolve: func(base time.Time, match []string) (time.Time, bool) {
				n, err := strconv.Atoi(match[1])
				if err != nil {
					return time.Time{}, false
				}
				return base.AddDate(0, n, 0), true
			},
		},
		{
			source: boundL + vocab.EndOfWeek + boundR,
			resolve: func(base time.Time, _ []string) (time.Time, bool) {
				return upcomingWeekday(base, time.Friday), true
			},
		},
		{
			source: boundL + vocab.MidWeek + boundR,
			resolve: func(base time.Time, _ []string) (time.Time, bool) {
				return upcomingWeekday(base, time.Wednesday), true
			},
		},
	}

	e.datePatterns = e.datePatterns[:0]
	for _, s := range specs {
		re, err := regexp.Compile(`(?i)` + s.source)
		if err != nil {
			return err
		}
		e.datePatterns = append(e.datePatterns, datePattern{re: re, resolve: s.resolve})
	}

	e.absoluteDate = regexp.MustCompile(`\b\d{1,2}\.\d{1,2}(?:\.\d{2,4})?\b`)
	label := regexp.QuoteMeta("(" + e.locale.DateAnnotationLabel + ":")
	e.annotation = regexp.MustCompile(label)

	return nil
}

// resolveWeekday finds the next occurrence of the named weekday strictly
// after base, plus an extra offset for "übernächsten".
func (e *Engine) resolveWeekday(base time.Time, name string, extraDays int) (time.Time, bool) {
	target, ok := e.weekdayByName(name)
	if !ok {
		return time.Time{}, false
	}
	days := int(target-base.Weekday()+7) % 7
	if days == 0 {
		days = 7
	}
	return base.AddDate(0, 0, days+extraDays), true
}

// upcomingWeekday returns the next occurrence of target, counting base
// itself when it already is that weekday.
func upcomingWeekday(base time.Time, target time.Weekday) time.Time {
	days := int(target-base.Weekday()+7) % 7
	return base.AddDate(0, 0, days)
}

func (e *Engine) weekdayByName(name string) (time.Weekday, bool) {
	for i, n := range e.locale.RelativeDates.WeekdayNames {
		if strings.EqualFold(n, name) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// ResolveRelativeDate scans content for the first relative-date expression
// and resolves it against base. Returns the resolved date and whether
// anything matched.
func (e *Engine) ResolveRelativeDate(content string, base time.Time) (time.Time, bool) {
	for _, p := range e.datePatterns {
		match := p.re.FindStringSubmatch(content)
		if match == nil {
			continue
		}
		if resolved, ok := p.resolve(base, match); ok {
			return resolved, true
		}
	}
	return time.Time{}, false
}

// formatDateAnnotation renders the trailing annotation, e.g.
// "(Termin: Montag, 15.09.2025)".
func (e *Engine) formatDateAnnotation(date time.Time) string {
	return fmt.Sprintf("(%s: %s, %02d.%02d.%d)",
		e.locale.DateAnnotationLabel,
		e.locale.WeekdayName(date.Weekday()),
		date.Day(), int(date.Month()), date.Year())
}
