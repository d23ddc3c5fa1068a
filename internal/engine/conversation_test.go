package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/buddemax/kontext/internal/models"
)

func testConversation(messages ...models.ConversationMessage) *models.Conversation {
	return &models.Conversation{
		ID:        "conv-1",
		Mode:      models.ModeWork,
		Messages:  messages,
		Active:    true,
		CreatedAt: testNow.Add(-time.Hour),
		UpdatedAt: testNow,
	}
}

func userMsg(content string) models.ConversationMessage {
	return models.ConversationMessage{Role: models.RoleUser, Content: content, Timestamp: testNow}
}

func assistantMsg(content string) models.ConversationMessage {
	return models.ConversationMessage{Role: models.RoleAssistant, Content: content, Timestamp: testNow}
}

func TestBuildConversationContextWindowing(t *testing.T) {
	e := newTestEngine(t)

	var messages []models.ConversationMessage
	for i := 1; i <= 15; i++ {
		messages = append(messages, userMsg(fmt.Sprintf("Nachricht Nummer %d", i)))
	}

	ctx := e.BuildConversationContext(testConversation(messages...), ConversationContextOptions{})

	if len(ctx.IncludedMessages) != DefaultMaxMessages {
		t.Fatalf("expected %d messages in window, got %d", DefaultMaxMessages, len(ctx.IncludedMessages))
	}
	if got := ctx.IncludedMessages[0].Content; got != "Nachricht Nummer 6" {
		t.Errorf("expected window to start at message 6, got %q", got)
	}
	if got := ctx.IncludedMessages[len(ctx.IncludedMessages)-1].Content; got != "Nachricht Nummer 15" {
		t.Errorf("expected window to end at the latest message, got %q", got)
	}
}

func TestBuildConversationContextCharBudget(t *testing.T) {
	e := newTestEngine(t)

	long := strings.Repeat("a", 300)
	conv := testConversation(userMsg(long), assistantMsg(long), userMsg("kurz"))

	// Budget of 50 tokens = 200 chars: only the trailing short message fits,
	// but the most recent message is always included even when it alone
	// exceeds the budget.
	ctx := e.BuildConversationContext(conv, ConversationContextOptions{TokenBudget: 50})
	if len(ctx.IncludedMessages) != 1 || ctx.IncludedMessages[0].Content != "kurz" {
		t.Fatalf("expected only the trailing message, got %d messages", len(ctx.IncludedMessages))
	}

	oversized := testConversation(userMsg(long))
	ctx = e.BuildConversationContext(oversized, ConversationContextOptions{TokenBudget: 10})
	if len(ctx.IncludedMessages) != 1 {
		t.Fatal("the most recent message must survive even an undersized budget")
	}
}

func TestBuildConversationContextRendering(t *testing.T) {
	e := newTestEngine(t)
	conv := testConversation(
		userMsg("Wie läuft Projekt Phoenix?"),
		assistantMsg("Phoenix liegt im Zeitplan."),
	)

	ctx := e.BuildConversationContext(conv, ConversationContextOptions{})

	expected := "USER: Wie läuft Projekt Phoenix?\nASSISTANT: Phoenix liegt im Zeitplan."
	if ctx.Context != expected {
		t.Errorf("rendered context mismatch:\ngot:  %q\nwant: %q", ctx.Context, expected)
	}
}

func TestBuildConversationContextNilAndEmpty(t *testing.T) {
	e := newTestEngine(t)

	if ctx := e.BuildConversationContext(nil, ConversationContextOptions{}); ctx.Context != "" || len(ctx.IncludedMessages) != 0 {
		t.Error("nil conversation must produce an empty context")
	}
	if ctx := e.BuildConversationContext(testConversation(), ConversationContextOptions{}); ctx.Context != "" {
		t.Error("empty conversation must produce an empty context")
	}
}

func TestExtractTopicsFromFullHistory(t *testing.T) {
	e := newTestEngine(t)

	var messages []models.ConversationMessage
	// Topic-bearing message falls outside the 10-message window.
	messages = append(messages, userMsg(`Was weißt du über Anna Schmidt und das Projekt Phoenix?`))
	for i := 0; i < 12; i++ {
		messages = append(messages, assistantMsg("ok"))
	}

	ctx := e.BuildConversationContext(testConversation(messages...), ConversationContextOptions{})

	joined := strings.ToLower(strings.Join(ctx.Topics, "|"))
	if !strings.Contains(joined, "anna schmidt") {
		t.Errorf("expected capitalized phrase topic, got %v", ctx.Topics)
	}
	if !strings.Contains(joined, "phoenix") {
		t.Errorf("expected project topic, got %v", ctx.Topics)
	}
}

func TestExtractTopicsDedupAndCap(t *testing.T) {
	e := newTestEngine(t)

	var messages []models.ConversationMessage
	for i := 0; i < 3; i++ {
		messages = append(messages, userMsg("Anna Schmidt arbeitet mit Anna Schmidt"))
	}
	ctx := e.BuildConversationContext(testConversation(messages...), ConversationContextOptions{})
	count := 0
	for _, topic := range ctx.Topics {
		if strings.EqualFold(topic, "Anna Schmidt") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected deduplicated topic, found %d occurrences", count)
	}

	messages = nil
	for i := 0; i < 20; i++ {
		messages = append(messages, userMsg(fmt.Sprintf("Projekt Alpha%d läuft", i)))
	}
	ctx = e.BuildConversationContext(testConversation(messages...), ConversationContextOptions{})
	if len(ctx.Topics) > maxTopics {
		t.Errorf("topic list exceeds cap: %d", len(ctx.Topics))
	}
}

func TestIsFollowUpQuery(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		query    string
		followUp bool
	}{
		{"Und was ist mit dem Budget?", true},
		{"Was denn noch?", true},
		{"Dazu hätte ich eine Frage", true},
		{"Warum?", true},
		{"Mehr dazu bitte", true},
		{"Wer ist Anna Schmidt?", false},
		{"Wie spät ist es in Tokio?", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		if got := e.IsFollowUpQuery(tt.query); got != tt.followUp {
			t.Errorf("IsFollowUpQuery(%q) = %v, want %v", tt.query, got, tt.followUp)
		}
	}
}

func TestBuildConversationInstruction(t *testing.T) {
	e := newTestEngine(t)

	if got := e.BuildConversationInstruction(nil, "Warum?", ConversationContextOptions{}); got != "" {
		t.Error("nil conversation must yield no instruction")
	}

	single := testConversation(userMsg("Hallo"))
	if got := e.BuildConversationInstruction(single, "Warum?", ConversationContextOptions{}); got != "" {
		t.Error("single-message conversation must yield no instruction")
	}

	conv := testConversation(
		userMsg("Wie läuft Projekt Phoenix?"),
		assistantMsg("Phoenix liegt im Zeitplan."),
	)

	followUp := e.BuildConversationInstruction(conv, "Und was ist mit dem Budget?", ConversationContextOptions{})
	if !strings.Contains(followUp, "Previous conversation:") {
		t.Error("instruction must embed the conversation window")
	}
	if !strings.Contains(followUp, "implicit follow-up") {
		t.Error("follow-up query must get the resolution instruction")
	}

	fresh := e.BuildConversationInstruction(conv, "Wer ist Anna Schmidt?", ConversationContextOptions{})
	if strings.Contains(fresh, "implicit follow-up") {
		t.Error("fresh query must not get the follow-up instruction")
	}
	if !strings.Contains(fresh, "if it is relevant") {
		t.Error("fresh query must get the soft instruction")
	}
}
