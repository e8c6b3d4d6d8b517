package trivia

import (
	"context"
	"log/slog"

	"github.com/jasonholloway125/Trivia-Bot/ai/llm"
	"github.com/jasonholloway125/Trivia-Bot/store"
)

// ConversationManager owns the message history flowing between guilds and the
// LLM. Every exchange performs exactly one outbound request; failures are not
// retried.
type ConversationManager struct {
	llm     llm.Service
	metrics *Metrics
}

// NewConversationManager creates a ConversationManager.
func NewConversationManager(svc llm.Service, metrics *Metrics) *ConversationManager {
	return &ConversationManager{
		llm:     svc,
		metrics: metrics,
	}
}

// Exchange appends a user message to the guild's conversation, performs the
// LLM call with the full ordered history, appends the assistant reply, and
// refreshes the conversation's last-activity time. The conversation is seeded
// with the fixed system preamble on first use.
//
// Caller must hold the state lock for the duration of the call; the store-wide
// lock is never touched here, so other guilds proceed while this request is in
// flight.
func (cm *ConversationManager) Exchange(ctx context.Context, state *store.GuildState, userText string) (string, error) {
	if len(state.Conversation.Messages) == 0 {
		state.Conversation.Messages = append(state.Conversation.Messages, llm.SystemPrompt(systemPreamble))
	}
	state.Conversation.Messages = append(state.Conversation.Messages, llm.UserMessage(userText))

	reply, stats, err := cm.llm.Chat(ctx, state.Conversation.Messages)
	if err != nil {
		slog.Warn("conversation: LLM exchange failed", "error", err)
		cm.metrics.RecordUpstreamError()
		return "", newError(ErrorUpstream, "llm_chat_failed", err)
	}

	state.Conversation.Messages = append(state.Conversation.Messages, llm.AssistantMessage(reply))
	state.Touch()

	if stats != nil {
		cm.metrics.RecordTokens(stats.PromptTokens, stats.CompletionTokens)
	}

	return reply, nil
}
