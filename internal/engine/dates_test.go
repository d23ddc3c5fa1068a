package engine

import (
	"testing"
	"time"
)

// base is Wednesday, 10.09.2025 for all date resolution tests.
func TestResolveRelativeDate(t *testing.T) {
	e := newTestEngine(t)
	base := testNow

	tests := []struct {
		content string
		want    time.Time
		ok      bool
	}{
		{"Abgabe ist heute fällig", base, true},
		{"Zahnarzt morgen um 10", base.AddDate(0, 0, 1), true},
		{"Review übermorgen einplanen", base.AddDate(0, 0, 2), true},
		{"Meeting nächsten Montag", time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC), true},
		{"Meeting nächsten Mittwoch", time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC), true},
		{"Abgabe übernächsten Montag", time.Date(2025, 9, 22, 12, 0, 0, 0, time.UTC), true},
		{"Rückmeldung in 3 Tagen", base.AddDate(0, 0, 3), true},
		{"Urlaub in 2 Wochen", base.AddDate(0, 0, 14), true},
		{"Vertrag läuft in 1 Monat aus", base.AddDate(0, 1, 0), true},
		{"Bericht bis Ende der Woche", time.Date(2025, 9, 12, 12, 0, 0, 0, time.UTC), true},
		{"Zwischenstand Mitte der Woche", base, true},
		{"Hans arbeitet bei Siemens", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := e.ResolveRelativeDate(tt.content, base)
		if ok != tt.ok {
			t.Errorf("ResolveRelativeDate(%q) ok = %v, want %v", tt.content, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("ResolveRelativeDate(%q) = %s, want %s",
				tt.content, got.Format("02.01.2006"), tt.want.Format("02.01.2006"))
		}
	}
}

func TestResolveRelativeDateWordBoundaries(t *testing.T) {
	e := newTestEngine(t)
	base := testNow

	// "übermorgen" must not satisfy the plain "morgen" expression.
	got, ok := e.ResolveRelativeDate("Abgabe übermorgen", base)
	if !ok || !got.Equal(base.AddDate(0, 0, 2)) {
		t.Errorf("übermorgen resolved to %s", got.Format("02.01.2006"))
	}

	// Compound words containing a date word are not date expressions.
	if _, ok := e.ResolveRelativeDate("Das Morgenmeeting war gut", base); ok {
		t.Error("date word inside a compound must not match")
	}
}

func TestResolveWeekdayStrictlyNext(t *testing.T) {
	e := newTestEngine(t)

	// Base is a Wednesday; "nächsten Mittwoch" must land a full week out,
	// not on the base day itself.
	got, ok := e.ResolveRelativeDate("Termin nächsten Mittwoch", testNow)
	if !ok {
		t.Fatal("expected a match")
	}
	if !got.Equal(testNow.AddDate(0, 0, 7)) {
		t.Errorf("expected 17.09.2025, got %s", got.Format("02.01.2006"))
	}
}

func TestFormatDateAnnotation(t *testing.T) {
	e := newTestEngine(t)

	date := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	want := "(Termin: Montag, 15.09.2025)"
	if got := e.formatDateAnnotation(date); got != want {
		t.Errorf("formatDateAnnotation = %q, want %q", got, want)
	}
}
