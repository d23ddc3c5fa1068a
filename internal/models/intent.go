package models

// Intent name constants, in classifier priority order
const (
	IntentBirthdayQuery   = "birthday_query"
	IntentScheduleQuery   = "schedule_query"
	IntentPersonQuery     = "person_query"
	IntentProjectQuery    = "project_query"
	IntentKnowledgeStore  = "knowledge_store"
	IntentEmailCompose    = "email_compose"
	IntentTodoCreate      = "todo_create"
	IntentKnowledgeDelete = "knowledge_delete"
	IntentGeneralQuestion = "general_question"
	IntentUnknown         = "unknown"
)

// Intent is the result of classifying an utterance. The classifier always
// returns an intent; unmatched input falls back to a low-confidence
// general_question or unknown rather than an error.
type Intent struct {
	Name            string  `json:"name"`
	Confidence      float64 `json:"confidence"`
	ExtractedEntity string  `json:"extracted_entity,omitempty"`
}
