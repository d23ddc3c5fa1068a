package engine

import (
	"fmt"
	"strings"

	"github.com/buddemax/kontext/internal/models"
)

// Conversation context defaults
const (
	DefaultMaxMessages = 10
	DefaultTokenBudget = 4000
	charsPerToken      = 4
	maxTopics          = 10
)

// ConversationContextOptions configures conversation windowing
type ConversationContextOptions struct {
	MaxMessages int // default 10
	TokenBudget int // approximate, at 4 chars per token; default 4000
}

// ConversationContext is the windowed view of a conversation
type ConversationContext struct {
	Context          string
	IncludedMessages []models.ConversationMessage
	Topics           []string
}

// BuildConversationContext windows the most recent turns of a conversation
// under a character budget and extracts a lightweight topic summary. Topics
// are drawn from ALL messages, not just the windowed subset, so long-range
// topic memory survives trimming.
func (e *Engine) BuildConversationContext(conv *models.Conversation, opts ConversationContextOptions) ConversationContext {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = DefaultMaxMessages
	}
	if opts.TokenBudget <= 0 {
		opts.TokenBudget = DefaultTokenBudget
	}

	if conv == nil || len(conv.Messages) == 0 {
		return ConversationContext{}
	}
	result := ConversationContext{
		Topics: e.extractTopics(conv.Messages),
	}

	// Greedy from most recent, stop when the character budget would be
	// exceeded, then restore chronological order.
	charBudget := opts.TokenBudget * charsPerToken
	used := 0
	var included []models.ConversationMessage
	for i := len(conv.Messages) - 1; i >= 0 && len(included) < opts.MaxMessages; i-- {
		msg := conv.Messages[i]
		cost := len(msg.Content)
		if used+cost > charBudget && len(included) > 0 {
			break
		}
		included = append(included, msg)
		used += cost
	}
	for i, j := 0, len(included)-1; i < j; i, j = i+1, j-1 {
		included[i], included[j] = included[j], included[i]
	}
	result.IncludedMessages = included

	var sb strings.Builder
	for _, msg := range included {
		switch msg.Role {
		case models.RoleUser:
			sb.WriteString(fmt.Sprintf("USER: %s\n", msg.Content))
		case models.RoleAssistant:
			sb.WriteString(fmt.Sprintf("ASSISTANT: %s\n", msg.Content))
		}
	}
	result.Context = strings.TrimRight(sb.String(), "\n")

	return result
}

// extractTopics collects capitalized multi-word phrases, quoted substrings
// and indicator-phrase targets ("Projekt X", "über X") across the whole
// conversation, deduplicated and capped.
func (e *Engine) extractTopics(messages []models.ConversationMessage) []string {
	seen := make(map[string]struct{})
	var topics []string

	add := func(topic string) {
		topic = strings.TrimSpace(topic)
		if topic == "" || len(topics) >= maxTopics {
			return
		}
		key := strings.ToLower(topic)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		topics = append(topics, topic)
	}

	for _, msg := range messages {
		for _, phrase := range e.capitalizedPhrase.FindAllString(msg.Content, -1) {
			add(phrase)
		}
		for _, m := range e.quotedText.FindAllStringSubmatch(msg.Content, -1) {
			add(m[1])
		}
		for _, re := range e.candidateRes {
			for _, m := range re.FindAllStringSubmatch(msg.Content, -1) {
				add(m[1])
			}
		}
	}

	return topics
}

// IsFollowUpQuery classifies whether a query is an implicit follow-up: a
// short utterance that omits its subject and only makes sense through the
// preceding turns. Classification is a battery of leading-pattern regexes
// from the locale table.
func (e *Engine) IsFollowUpQuery(query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return false
	}
	for _, re := range e.followUpRes {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// BuildConversationInstruction renders the conversation-aware instruction
// block for the downstream generator. A conversation with at most one
// message yields an empty string: there are no prior turns to reference.
//
// The follow-up branch is deliberate: treating every short question as a
// follow-up over-applies stale context, treating none breaks multi-turn
// dialogue.
func (e *Engine) BuildConversationInstruction(conv *models.Conversation, query string, opts ConversationContextOptions) string {
	if conv == nil || len(conv.Messages) <= 1 {
		return ""
	}

	window := e.BuildConversationContext(conv, opts)

	var sb strings.Builder
	sb.WriteString("Previous conversation:\n")
	sb.WriteString(window.Context)
	sb.WriteString("\n\n")

	if len(window.Topics) > 0 {
		sb.WriteString("Topics discussed so far: ")
		sb.WriteString(strings.Join(window.Topics, ", "))
		sb.WriteString("\n\n")
	}

	if e.IsFollowUpQuery(query) {
		sb.WriteString("The current query is an implicit follow-up: it refers to the topic of the previous turns even though it does not name it. Resolve the missing subject from the conversation above before answering.")
	} else {
		sb.WriteString("Use the conversation above as context if it is relevant to the current query.")
	}

	return sb.String()
}
