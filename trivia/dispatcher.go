package trivia

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jasonholloway125/Trivia-Bot/store"
)

// Dispatcher routes command tokens to the conversation manager, the response
// filters, and the store. It holds no state of its own beyond its
// collaborators.
type Dispatcher struct {
	store         store.Store
	conversations *ConversationManager
	filters       *Filters
	metrics       *Metrics
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(st store.Store, conversations *ConversationManager, filters *Filters, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		store:         st,
		conversations: conversations,
		filters:       filters,
		metrics:       metrics,
	}
}

// Dispatch handles one inbound command and returns the reply text. An empty
// reply means the command is deliberately ignored. Dispatch never returns an
// error: every failure path degrades to a fixed user-visible message.
func (d *Dispatcher) Dispatch(ctx context.Context, guildID store.GuildID, input string) string {
	msg := strings.ToLower(strings.TrimSpace(input))

	switch {
	case msg == "":
		slog.Debug("dispatch: empty command", "guild_id", guildID)
		d.metrics.RecordCommand("empty", true)
		return MsgGreeting

	case msg == "help":
		d.metrics.RecordCommand("help", true)
		return MsgHelp

	case msg == "nq":
		return d.handleNextQuestion(ctx, guildID)

	case msg == "q", msg == "a":
		return d.handleShowQA(guildID, msg)

	case msg == "tc":
		return d.handleShowCategory(guildID)

	case msg == "c" || strings.HasPrefix(msg, "c "):
		return d.handleChangeCategory(ctx, guildID, strings.TrimPrefix(msg, "c"))

	default:
		slog.Debug("dispatch: unknown command", "guild_id", guildID, "command", msg)
		d.metrics.RecordCommand("unknown", true)
		return MsgUnknownCommand(msg)
	}
}

func (d *Dispatcher) handleNextQuestion(ctx context.Context, guildID store.GuildID) string {
	state, ok := d.lockExisting(guildID)
	if !ok {
		d.metrics.RecordCommand("nq", false)
		return MsgNoCategory
	}
	defer state.Unlock()

	if state.Category == "" {
		d.metrics.RecordCommand("nq", false)
		return MsgNoCategory
	}

	reply, err := d.conversations.Exchange(ctx, state, instructionNextQuestion)
	if err != nil {
		slog.Warn("dispatch: next question exchange failed", "guild_id", guildID, "error", err)
		d.metrics.RecordCommand("nq", false)
		return MsgQuestionFailed
	}

	if !d.filters.FilterQAResponse(state, reply) {
		slog.Debug("dispatch: next question failed to load", "guild_id", guildID)
		d.metrics.RecordCommand("nq", false)
		return MsgQuestionFailed
	}

	d.metrics.RecordCommand("nq", true)
	return state.QA.Question
}

func (d *Dispatcher) handleShowQA(guildID store.GuildID, cmd string) string {
	state, ok := d.lockExisting(guildID)
	if !ok {
		d.metrics.RecordCommand(cmd, false)
		return MsgNoQuestions
	}
	defer state.Unlock()

	if state.QA == nil {
		d.metrics.RecordCommand(cmd, false)
		return MsgNoQuestions
	}

	d.metrics.RecordCommand(cmd, true)
	if cmd == "q" {
		return state.QA.Question
	}
	return state.QA.Answer
}

func (d *Dispatcher) handleShowCategory(guildID store.GuildID) string {
	state, ok := d.lockExisting(guildID)
	if !ok {
		d.metrics.RecordCommand("tc", false)
		return MsgNoCategory
	}
	defer state.Unlock()

	if state.Category == "" {
		d.metrics.RecordCommand("tc", false)
		return MsgNoCategory
	}

	d.metrics.RecordCommand("tc", true)
	return MsgCurrentCategory(state.Category)
}

func (d *Dispatcher) handleChangeCategory(ctx context.Context, guildID store.GuildID, rest string) string {
	category := strings.ToUpper(strings.TrimSpace(rest))
	if category == "" {
		slog.Debug("dispatch: change category with empty name", "guild_id", guildID)
		return ""
	}

	state, ok := d.lockLive(guildID)
	if !ok {
		// Store refused to yield a stable entry; treat as a failed change.
		d.metrics.RecordCommand("c", false)
		return MsgCategoryRejected
	}
	defer state.Unlock()

	reply, err := d.conversations.Exchange(ctx, state, fmt.Sprintf(instructionChangeCategory, category))
	if err != nil {
		slog.Warn("dispatch: change category exchange failed", "guild_id", guildID, "error", err)
		d.metrics.RecordCommand("c", false)
		return MsgCategoryRejected
	}

	result := d.filters.FilterCategoryResponse(state, category, reply)
	d.metrics.RecordCommand("c", result != MsgCategoryRejected)
	return result
}

// lockLive returns the guild's state locked and still present in the store,
// creating it first if needed. Creation and locking are separate steps, so the
// sweeper can evict an entry between them; re-checking membership after
// acquiring the lock closes that window.
func (d *Dispatcher) lockLive(guildID store.GuildID) (*store.GuildState, bool) {
	for i := 0; i < 8; i++ {
		state := d.store.GetOrCreate(guildID)
		state.Lock()
		if current, ok := d.store.Get(guildID); ok && current == state {
			return state, true
		}
		state.Unlock()
	}
	return nil, false
}

// lockExisting is lockLive without the create: it reports false when the
// guild has no state.
func (d *Dispatcher) lockExisting(guildID store.GuildID) (*store.GuildState, bool) {
	for {
		state, ok := d.store.Get(guildID)
		if !ok {
			return nil, false
		}
		state.Lock()
		if current, ok := d.store.Get(guildID); ok && current == state {
			return state, true
		}
		state.Unlock()
	}
}
