package trivia

import (
	"context"
	"log/slog"
	"time"

	"github.com/jasonholloway125/Trivia-Bot/internal/profile"
	"github.com/jasonholloway125/Trivia-Bot/store"
)

// SweeperConfig holds the sweeper's timing knobs.
type SweeperConfig struct {
	// Interval between sweep passes. Must stay well below IdleThreshold so
	// worst-case staleness stays bounded.
	Interval time.Duration

	// IdleThreshold is the idle time after which a guild's state is evicted.
	IdleThreshold time.Duration
}

// Sweeper periodically evicts guild state whose conversation has been idle
// past the threshold. Eviction goes through store.Remove, so the category and
// question/answer records always disappear together with the conversation.
type Sweeper struct {
	store   store.Store
	metrics *Metrics
	config  SweeperConfig
	done    chan struct{}
}

// NewSweeper creates a Sweeper. Zero config fields fall back to the profile
// defaults.
func NewSweeper(st store.Store, metrics *Metrics, config SweeperConfig) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = profile.DefaultSweepInterval
	}
	if config.IdleThreshold <= 0 {
		config.IdleThreshold = profile.DefaultIdleThreshold
	}
	return &Sweeper{
		store:   st,
		metrics: metrics,
		config:  config,
		done:    make(chan struct{}),
	}
}

// Start runs the sweep loop until ctx is cancelled or Shutdown is called.
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("sweeper: started",
		"interval", s.config.Interval,
		"idle_threshold", s.config.IdleThreshold,
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(time.Now())
		case <-ctx.Done():
			slog.Info("sweeper: stopped", "reason", "context cancelled")
			return
		case <-s.done:
			slog.Info("sweeper: stopped", "reason", "shutdown")
			return
		}
	}
}

// Shutdown stops the sweep loop.
func (s *Sweeper) Shutdown() {
	close(s.done)
}

// RunOnce performs a single sweep pass and returns the number of guilds
// evicted. A guild whose state is locked by an in-flight exchange is skipped
// this pass: a conversation active at sweep-time is never evicted mid-use.
func (s *Sweeper) RunOnce(now time.Time) int {
	evicted := 0
	s.store.Range(func(id store.GuildID, state *store.GuildState) bool {
		if !state.TryLock() {
			return true
		}
		idle := now.Sub(state.Conversation.LastUpdated)
		if idle > s.config.IdleThreshold {
			// The snapshotted entry may have been removed and recreated
			// under the same id since Range; removing by id then would
			// delete the fresh state this lock does not cover.
			if current, ok := s.store.Get(id); ok && current == state {
				s.store.Remove(id)
				s.metrics.RecordEviction()
				evicted++
				slog.Info("sweeper: evicted idle guild", "guild_id", id, "idle_duration", idle)
			}
		}
		state.Unlock()
		return true
	})
	return evicted
}
