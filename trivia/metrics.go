package trivia

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jasonholloway125/Trivia-Bot/store"
)

// Metrics exposes the engine's Prometheus collectors.
type Metrics struct {
	commands        *prometheus.CounterVec
	upstreamErrors  prometheus.Counter
	qaParseFailures *prometheus.CounterVec
	evictions       prometheus.Counter
	llmTokens       *prometheus.CounterVec
}

// NewMetrics creates and registers the engine collectors on registry. The
// active-conversation gauge reads directly from the store.
func NewMetrics(registry *prometheus.Registry, st store.Store) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "triviabot",
				Name:      "commands_total",
				Help:      "Total number of dispatched commands",
			},
			[]string{"command", "status"},
		),
		upstreamErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "triviabot",
				Name:      "upstream_errors_total",
				Help:      "Total number of failed LLM requests",
			},
		),
		qaParseFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "triviabot",
				Name:      "qa_parse_failures_total",
				Help:      "Total number of question/answer replies rejected by the filter",
			},
			[]string{"reason"},
		),
		evictions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "triviabot",
				Name:      "evictions_total",
				Help:      "Total number of idle conversations evicted by the sweeper",
			},
		),
		llmTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "triviabot",
				Name:      "llm_tokens_total",
				Help:      "Total LLM tokens consumed",
			},
			[]string{"token_type"},
		),
	}

	activeConversations := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "triviabot",
			Name:      "active_conversations",
			Help:      "Number of guilds with live conversation state",
		},
		func() float64 { return float64(st.Len()) },
	)

	registry.MustRegister(
		m.commands,
		m.upstreamErrors,
		m.qaParseFailures,
		m.evictions,
		m.llmTokens,
		activeConversations,
	)

	return m
}

// RecordCommand records a dispatched command and its outcome.
func (m *Metrics) RecordCommand(command string, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.commands.WithLabelValues(command, status).Inc()
}

// RecordUpstreamError records a failed LLM request.
func (m *Metrics) RecordUpstreamError() {
	if m == nil {
		return
	}
	m.upstreamErrors.Inc()
}

// RecordQAParseFailure records a rejected question/answer reply.
func (m *Metrics) RecordQAParseFailure(reason ErrorCode) {
	if m == nil {
		return
	}
	m.qaParseFailures.WithLabelValues(string(reason)).Inc()
}

// RecordEviction records an idle conversation evicted by the sweeper.
func (m *Metrics) RecordEviction() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

// RecordTokens records token usage from a completed LLM call.
func (m *Metrics) RecordTokens(promptTokens, completionTokens int) {
	if m == nil {
		return
	}
	m.llmTokens.WithLabelValues("prompt").Add(float64(promptTokens))
	m.llmTokens.WithLabelValues("completion").Add(float64(completionTokens))
}
