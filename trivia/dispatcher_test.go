package trivia

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonholloway125/Trivia-Bot/ai/llm"
	"github.com/jasonholloway125/Trivia-Bot/store"
)

// fakeLLM replays canned replies in order. It records the histories it was
// called with so tests can assert on the outbound conversation.
type fakeLLM struct {
	replies   []string
	err       error
	calls     int
	histories [][]llm.Message
}

func (f *fakeLLM) Chat(_ context.Context, messages []llm.Message) (string, *llm.CallStats, error) {
	f.histories = append(f.histories, append([]llm.Message(nil), messages...))
	if f.err != nil {
		return "", nil, f.err
	}
	idx := f.calls
	f.calls++
	if idx >= len(f.replies) {
		return "", nil, errors.New("fakeLLM: no reply configured")
	}
	return f.replies[idx], &llm.CallStats{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, nil
}

func (f *fakeLLM) Warmup(context.Context) {}

func newTestDispatcher(t *testing.T, fake *fakeLLM) (*Dispatcher, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	metrics := NewMetrics(prometheus.NewRegistry(), st)
	conversations := NewConversationManager(fake, metrics)
	filters := NewFilters(metrics)
	return NewDispatcher(st, conversations, filters, metrics), st
}

func TestDispatch_StaticReplies(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeLLM{})
	ctx := context.Background()

	t.Run("empty command returns greeting", func(t *testing.T) {
		assert.Equal(t, MsgGreeting, d.Dispatch(ctx, 1, ""))
		assert.Equal(t, MsgGreeting, d.Dispatch(ctx, 1, "   "))
	})

	t.Run("help returns the command listing", func(t *testing.T) {
		assert.Equal(t, MsgHelp, d.Dispatch(ctx, 1, "help"))
		assert.Equal(t, MsgHelp, d.Dispatch(ctx, 1, " HELP "))
	})

	t.Run("unknown command names itself", func(t *testing.T) {
		reply := d.Dispatch(ctx, 1, "frobnicate")
		assert.Equal(t, MsgUnknownCommand("frobnicate"), reply)
	})
}

func TestDispatch_QuestionWithoutState(t *testing.T) {
	d, st := newTestDispatcher(t, &fakeLLM{})
	ctx := context.Background()

	assert.Equal(t, MsgNoQuestions, d.Dispatch(ctx, 1, "q"))
	assert.Equal(t, MsgNoQuestions, d.Dispatch(ctx, 1, "a"))
	assert.Equal(t, 0, st.Len(), "state must be unchanged")
}

func TestDispatch_NextQuestionWithoutCategory(t *testing.T) {
	d, st := newTestDispatcher(t, &fakeLLM{})
	ctx := context.Background()

	assert.Equal(t, MsgNoCategory, d.Dispatch(ctx, 1, "nq"))
	assert.Equal(t, 0, st.Len())
}

func TestDispatch_CategoryWithoutName(t *testing.T) {
	fake := &fakeLLM{}
	d, st := newTestDispatcher(t, fake)
	ctx := context.Background()

	assert.Empty(t, d.Dispatch(ctx, 1, "c"))
	assert.Empty(t, d.Dispatch(ctx, 1, "c    "))
	assert.Equal(t, 0, st.Len(), "no state change")
	assert.Zero(t, fake.calls, "no LLM request")
}

func TestDispatch_ChangeCategory(t *testing.T) {
	fake := &fakeLLM{replies: []string{"The category SCIENCE has been selected."}}
	d, st := newTestDispatcher(t, fake)
	ctx := context.Background()

	reply := d.Dispatch(ctx, 1, "c Science")
	assert.Equal(t, "### The category SCIENCE has been selected.", reply)

	state, ok := st.Get(1)
	require.True(t, ok)
	state.Lock()
	defer state.Unlock()
	assert.Equal(t, "SCIENCE", state.Category, "category name is normalized to upper case")

	// Conversation was seeded with the system preamble and carries the exchange.
	require.Len(t, state.Conversation.Messages, 3)
	assert.Equal(t, "system", state.Conversation.Messages[0].Role)
	assert.Equal(t, "Change category to SCIENCE.", state.Conversation.Messages[1].Content)
	assert.Equal(t, "assistant", state.Conversation.Messages[2].Role)
}

func TestDispatch_ChangeCategoryRejected(t *testing.T) {
	fake := &fakeLLM{replies: []string{MsgCategoryRejected}}
	d, st := newTestDispatcher(t, fake)
	ctx := context.Background()

	reply := d.Dispatch(ctx, 1, "c ObscureThing")
	assert.Equal(t, MsgCategoryRejected, reply)

	state, ok := st.Get(1)
	require.True(t, ok)
	state.Lock()
	defer state.Unlock()
	assert.Empty(t, state.Category)
}

func TestDispatch_RoundTrip(t *testing.T) {
	fake := &fakeLLM{replies: []string{
		"The category SCIENCE has been selected.",
		`{"question":"What is H2O?","answer":"Water"}`,
	}}
	d, _ := newTestDispatcher(t, fake)
	ctx := context.Background()

	d.Dispatch(ctx, 1, "c Science")

	question := d.Dispatch(ctx, 1, "nq")
	assert.Contains(t, question, "\"SCIENCE\" TRIVIA QUESTION:")
	assert.Contains(t, question, "What is H2O?")

	// q repeats the current question.
	assert.Equal(t, question, d.Dispatch(ctx, 1, "q"))

	// The next-question instruction went out verbatim.
	last := fake.histories[len(fake.histories)-1]
	assert.Equal(t, "Find a new and unique question and answer for the chosen category.", last[len(last)-1].Content)
}

func TestDispatch_AnswerScenario(t *testing.T) {
	fake := &fakeLLM{replies: []string{
		"The category MATH has been selected.",
		`{"question":"2+2?","answer":"4"}`,
	}}
	d, _ := newTestDispatcher(t, fake)
	ctx := context.Background()

	d.Dispatch(ctx, 1, "c Math")
	d.Dispatch(ctx, 1, "nq")

	answer := d.Dispatch(ctx, 1, "a")
	assert.Contains(t, answer, "\"MATH\" TRIVIA ANSWER:")
	assert.Contains(t, answer, "4")
}

func TestDispatch_ShowCategoryIdempotent(t *testing.T) {
	fake := &fakeLLM{replies: []string{"The category HISTORY has been selected."}}
	d, _ := newTestDispatcher(t, fake)
	ctx := context.Background()

	assert.Equal(t, MsgNoCategory, d.Dispatch(ctx, 1, "tc"))

	d.Dispatch(ctx, 1, "c History")

	first := d.Dispatch(ctx, 1, "tc")
	second := d.Dispatch(ctx, 1, "tc")
	assert.Equal(t, MsgCurrentCategory("HISTORY"), first)
	assert.Equal(t, first, second)
}

func TestDispatch_NextQuestionUpstreamFailure(t *testing.T) {
	fake := &fakeLLM{replies: []string{"The category SCIENCE has been selected."}}
	d, st := newTestDispatcher(t, fake)
	ctx := context.Background()

	d.Dispatch(ctx, 1, "c Science")
	fake.err = errors.New("boom")

	assert.Equal(t, MsgQuestionFailed, d.Dispatch(ctx, 1, "nq"))

	state, _ := st.Get(1)
	state.Lock()
	defer state.Unlock()
	assert.Nil(t, state.QA, "failed exchange leaves no question/answer")
	assert.Equal(t, "SCIENCE", state.Category, "category survives the failure")
}

func TestDispatch_NextQuestionMalformedReply(t *testing.T) {
	fake := &fakeLLM{replies: []string{
		"The category SCIENCE has been selected.",
		"Sorry, I cannot find a question right now.",
	}}
	d, st := newTestDispatcher(t, fake)
	ctx := context.Background()

	d.Dispatch(ctx, 1, "c Science")
	assert.Equal(t, MsgQuestionFailed, d.Dispatch(ctx, 1, "nq"))

	state, _ := st.Get(1)
	state.Lock()
	defer state.Unlock()
	assert.Nil(t, state.QA)
}

// orphanStore hands out an entry that is no longer in the underlying store,
// as happens when the sweeper evicts a guild between lookup and lock.
type orphanStore struct {
	store.Store
	orphan *store.GuildState
	served bool
}

func (o *orphanStore) Get(id store.GuildID) (*store.GuildState, bool) {
	if !o.served {
		o.served = true
		return o.orphan, true
	}
	return o.Store.Get(id)
}

func newOrphanDispatcher(t *testing.T) (*Dispatcher, *orphanStore) {
	t.Helper()
	st := &orphanStore{
		Store: store.NewMemoryStore(),
		orphan: &store.GuildState{
			Category: "STALE",
			QA:       &store.QuestionAnswer{Question: "stale question", Answer: "stale answer"},
		},
	}
	metrics := NewMetrics(prometheus.NewRegistry(), st)
	conversations := NewConversationManager(&fakeLLM{}, metrics)
	filters := NewFilters(metrics)
	return NewDispatcher(st, conversations, filters, metrics), st
}

func TestDispatch_EvictedStateIsNotServed(t *testing.T) {
	ctx := context.Background()

	t.Run("q falls back instead of serving an orphaned question", func(t *testing.T) {
		d, _ := newOrphanDispatcher(t)
		assert.Equal(t, MsgNoQuestions, d.Dispatch(ctx, 1, "q"))
	})

	t.Run("a falls back instead of serving an orphaned answer", func(t *testing.T) {
		d, _ := newOrphanDispatcher(t)
		assert.Equal(t, MsgNoQuestions, d.Dispatch(ctx, 1, "a"))
	})

	t.Run("tc falls back instead of serving an orphaned category", func(t *testing.T) {
		d, _ := newOrphanDispatcher(t)
		assert.Equal(t, MsgNoCategory, d.Dispatch(ctx, 1, "tc"))
	})
}

func TestDispatch_GuildsAreIsolated(t *testing.T) {
	fake := &fakeLLM{replies: []string{
		"The category SCIENCE has been selected.",
		"The category HISTORY has been selected.",
	}}
	d, st := newTestDispatcher(t, fake)
	ctx := context.Background()

	d.Dispatch(ctx, 1, "c Science")
	d.Dispatch(ctx, 2, "c History")

	assert.Equal(t, MsgCurrentCategory("SCIENCE"), d.Dispatch(ctx, 1, "tc"))
	assert.Equal(t, MsgCurrentCategory("HISTORY"), d.Dispatch(ctx, 2, "tc"))
	assert.Equal(t, 2, st.Len())
}
