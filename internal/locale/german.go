package locale

import (
	"github.com/buddemax/kontext/internal/models"
)

// German returns the built-in German table. This is the default working
// language of the assistant.
func German() *Table {
	return &Table{
		Name: "de",

		StopWords: []string{
			"der", "die", "das", "den", "dem", "des",
			"ein", "eine", "einen", "einem", "einer",
			"und", "oder", "aber", "auch", "noch",
			"ich", "du", "er", "sie", "es", "wir", "ihr",
			"ist", "sind", "war", "hat", "haben", "wird",
			"mit", "von", "für", "auf", "bei", "nach", "aus", "über",
			"was", "wie", "nicht", "mir", "mich", "sich", "zu", "in", "an",
		},

		PeopleQuestionWords: []string{
			"wer", "wen", "wem", "wessen",
			"ansprechpartner", "verantwortlich", "zuständig", "kontakt",
			"personen", "leute", "mitarbeiter", "team", "kollege", "kollegen",
		},

		FollowUpPatterns: []string{
			`^(und|aber|also|sonst)\b`,
			`^(was|wie|warum|wieso|weshalb)\s+(denn|dann|noch|genau|jetzt)\b`,
			`^(und|was)\s+(ist|war)\s+(mit|damit|dazu)\b`,
			`^(noch|mehr)\s+(was|etwas|details|infos|dazu)\b`,
			`^(dazu|darüber|davon|damit|daran)\b`,
			`^(wie|was|warum)\s*(bitte)?\s*\?*$`,
		},

		QuestionPatterns: []string{
			`\?\s*$`,
			`^(was|wer|wie|wo|wann|warum|wieso|weshalb|welche|welcher|welches|wem|wen|wessen)\b`,
			`^(kannst|könntest|kennst|weißt|weisst|gibt|sag|zeig|erzähl)\b`,
		},

		EntityCandidatePatterns: []string{
			`(?:^|\s)über\s+((?:[A-ZÄÖÜ][\wäöüß-]*)(?:\s+[A-ZÄÖÜ][\wäöüß-]*)*)`,
			`(?:^|\s)mit\s+((?:[A-ZÄÖÜ][\wäöüß-]*)(?:\s+[A-ZÄÖÜ][\wäöüß-]*)*)`,
			`(?:^|\s)für\s+((?:[A-ZÄÖÜ][\wäöüß-]*)(?:\s+[A-ZÄÖÜ][\wäöüß-]*)*)`,
			`(?:^|\s)von\s+((?:[A-ZÄÖÜ][\wäöüß-]*)(?:\s+[A-ZÄÖÜ][\wäöüß-]*)*)`,
			`(?i)(?:^|\s)projekt\s+([\wäöüß-]+(?:\s+[A-ZÄÖÜ][\wäöüß-]*)*)`,
		},

		RelativeDates: RelativeDateVocab{
			Today:            "heute",
			Tomorrow:         "morgen",
			DayAfterTomorrow: "übermorgen",
			NextPrefix:       `nächste[nrs]?`,
			AfterNextPrefix:  `übernächste[nrs]?`,
			InPrefix:         "in",
			DayUnits:         `Tag(?:e|en)?`,
			WeekUnits:        `Woche(?:n)?`,
			MonthUnits:       `Monat(?:e|en)?`,
			EndOfWeek:        `Ende\s+der\s+Woche`,
			MidWeek:          `Mitte\s+der\s+Woche`,
			WeekdayNames: []string{
				"Sonntag", "Montag", "Dienstag", "Mittwoch",
				"Donnerstag", "Freitag", "Samstag",
			},
		},

		DateAnnotationLabel: "Termin",

		Intents: []IntentRule{
			{
				Name: models.IntentBirthdayQuery,
				Patterns: []string{
					`(?i)\bgeburtstag\b`,
				},
				EntityPattern:     `(?i)geburtstag\s+(?:von|hat)\s+(.+?)\s*\??\s*$`,
				RequiresRetrieval: true,
				EntityTypes:       []string{models.EntityPerson},
			},
			{
				Name: models.IntentScheduleQuery,
				Patterns: []string{
					`(?i)\b(termin|termine|kalender|meeting|besprechung)\b`,
					`(?i)\bwas\s+steht\b.*\ban\b`,
				},
				RequiresRetrieval: true,
				EntityTypes:       []string{models.EntityDeadline, models.EntityProject},
			},
			{
				Name: models.IntentPersonQuery,
				Patterns: []string{
					`(?i)^wer\s+ist\b`,
					`(?i)was\s+(weiß|weisst|weißt)\s+ich\s+über\b`,
					`(?i)\bansprechpartner\b`,
				},
				EntityPattern:     `(?i)^wer\s+ist\s+(.+?)\s*\??\s*$`,
				RequiresRetrieval: true,
				EntityTypes:       []string{models.EntityPerson},
			},
			{
				Name: models.IntentProjectQuery,
				Patterns: []string{
					`(?i)\bprojekt\b`,
					`(?i)\bstatus\s+von\b`,
				},
				EntityPattern:     `(?i)\bprojekt\s+([\wäöüß-]+)`,
				RequiresRetrieval: true,
				EntityTypes: []string{
					models.EntityProject, models.EntityDecision, models.EntityDeadline,
				},
			},
			{
				Name: models.IntentKnowledgeStore,
				Patterns: []string{
					`(?i)^merk(?:e|s)?\s*(?:dir)?\s*:?\s+`,
					`(?i)^(speichere?|notiere?)\b`,
				},
				EntityPattern:     `(?i)^(?:merk(?:e|s)?|speichere?|notiere?)\s*(?:dir)?\s*:?\s+(.+?)\s*$`,
				RequiresRetrieval: false,
			},
			{
				Name: models.IntentEmailCompose,
				Patterns: []string{
					`(?i)\be-?mail\b.*\b(schreiben|verfassen|formulieren|an)\b`,
					`(?i)^schreib(?:e)?\s+(?:eine\s+)?e-?mail\b`,
				},
				RequiresRetrieval: true,
				EntityTypes:       []string{models.EntityPerson, models.EntityProject},
			},
			{
				Name: models.IntentTodoCreate,
				Patterns: []string{
					`(?i)\b(todo|to-do|aufgabe)\b.*\b(erstellen|anlegen|hinzufügen)\b`,
					`(?i)^erinnere\s+mich\b`,
				},
				RequiresRetrieval: false,
			},
			{
				Name: models.IntentKnowledgeDelete,
				Patterns: []string{
					`(?i)^(vergiss|lösch(?:e)?|entferne?)\b`,
				},
				EntityPattern:     `(?i)^(?:vergiss|lösch(?:e)?|entferne?)\s+(.+?)\s*$`,
				RequiresRetrieval: false,
			},
		},
	}
}
