// Package store provides the in-memory per-guild state store shared by the
// command dispatcher and the expiry sweeper.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jasonholloway125/Trivia-Bot/ai/llm"
)

// GuildID identifies a chat server. Telegram group chat IDs are int64.
type GuildID int64

// QuestionAnswer is the currently loaded trivia question and its answer.
type QuestionAnswer struct {
	Question string
	Answer   string
}

// Conversation is the accumulated message history exchanged with the LLM for
// one guild.
type Conversation struct {
	LastUpdated time.Time
	Messages    []llm.Message
}

// GuildState bundles every per-guild record: the conversation, the selected
// trivia category, and the loaded question/answer pair. The three live and die
// together; removing the state from the store drops all of them at once.
//
// Fields are guarded by the state's own mutex. Callers lock the state for the
// duration of a read-modify-write section, including across the outbound LLM
// call, so the store-wide lock is never held while a request is in flight.
type GuildState struct {
	mu sync.Mutex

	Conversation Conversation
	Category     string
	QA           *QuestionAnswer
}

func (s *GuildState) Lock()   { s.mu.Lock() }
func (s *GuildState) Unlock() { s.mu.Unlock() }

// TryLock acquires the state lock without blocking. The sweeper uses it to
// skip guilds with an exchange in flight.
func (s *GuildState) TryLock() bool { return s.mu.TryLock() }

// Touch refreshes LastUpdated. Caller must hold the state lock.
func (s *GuildState) Touch() {
	s.Conversation.LastUpdated = time.Now()
}

// Store is the per-guild state container consumed by the dispatcher and the
// sweeper. Implementations must be safe for concurrent use.
type Store interface {
	// GetOrCreate returns the state for a guild, creating an empty one if
	// none exists. Never fails.
	GetOrCreate(id GuildID) *GuildState

	// Get returns the state for a guild if present.
	Get(id GuildID) (*GuildState, bool)

	// Remove deletes the guild's full state: conversation, category, and
	// question/answer. It is the single deletion point; there is no way to
	// drop one record without the others. Reports whether state existed.
	Remove(id GuildID) bool

	// Range calls fn for each guild until fn returns false.
	Range(fn func(id GuildID, state *GuildState) bool)

	// Len returns the number of guilds with active state.
	Len() int
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu     sync.RWMutex
	guilds map[GuildID]*GuildState
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		guilds: make(map[GuildID]*GuildState),
	}
}

func (m *MemoryStore) GetOrCreate(id GuildID) *GuildState {
	m.mu.RLock()
	state, ok := m.guilds[id]
	m.mu.RUnlock()
	if ok {
		return state
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.guilds[id]; ok {
		return state
	}

	slog.Debug("store: added guild to active conversations", "guild_id", id)
	state = &GuildState{
		Conversation: Conversation{LastUpdated: time.Now()},
	}
	m.guilds[id] = state
	return state
}

func (m *MemoryStore) Get(id GuildID) (*GuildState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.guilds[id]
	return state, ok
}

func (m *MemoryStore) Remove(id GuildID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.guilds[id]; !ok {
		return false
	}
	delete(m.guilds, id)
	slog.Debug("store: removed guild from active conversations", "guild_id", id)
	return true
}

func (m *MemoryStore) Range(fn func(id GuildID, state *GuildState) bool) {
	m.mu.RLock()
	snapshot := make(map[GuildID]*GuildState, len(m.guilds))
	for id, state := range m.guilds {
		snapshot[id] = state
	}
	m.mu.RUnlock()

	for id, state := range snapshot {
		if !fn(id, state) {
			return
		}
	}
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.guilds)
}

var _ Store = (*MemoryStore)(nil)
