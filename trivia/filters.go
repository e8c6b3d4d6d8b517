package trivia

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jasonholloway125/Trivia-Bot/store"
)

// Literal boundaries of a category confirmation. This is a brittle substring
// contract, not semantic validation: any deviation from the phrasing the
// system preamble demands is treated as a rejection.
const (
	categoryConfirmPrefix = "The category"
	categoryConfirmSuffix = "has been selected."
)

// Filters validates raw LLM replies before they reach users or stored state.
type Filters struct {
	metrics *Metrics
}

// NewFilters creates a Filters.
func NewFilters(metrics *Metrics) *Filters {
	return &Filters{metrics: metrics}
}

// FilterCategoryResponse validates a category-change reply. On acceptance it
// records the requested category (verbatim as supplied by the caller, not as
// echoed by the LLM) and returns the accepted text behind a display marker.
// Any other shape returns the fixed rejection message and leaves the stored
// category untouched.
//
// Caller must hold the state lock.
func (f *Filters) FilterCategoryResponse(state *store.GuildState, requested, raw string) string {
	resp := strings.TrimSpace(raw)

	slog.Debug("filter: category response", "response", resp)

	if !strings.HasPrefix(resp, categoryConfirmPrefix) || !strings.HasSuffix(resp, categoryConfirmSuffix) {
		return MsgCategoryRejected
	}

	state.Category = requested
	return "### " + resp
}

// qaPayload is the structured record the LLM is instructed to return.
// Pointer fields distinguish an absent key from an empty value.
type qaPayload struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

// FilterQAResponse parses a next-question reply as a JSON question/answer
// record. On success it wraps both fields with a display header naming the
// guild's stored category, saves the pair, and reports true. A malformed
// record or a missing field reports false without mutating state; the two
// cases stay distinct only for diagnostics.
//
// Caller must hold the state lock and guarantee a category has been stored.
func (f *Filters) FilterQAResponse(state *store.GuildState, raw string) bool {
	slog.Debug("filter: qa response", "response", raw)

	var payload qaPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		slog.Debug("filter: qa response is not valid JSON", "error", err)
		f.metrics.RecordQAParseFailure(ErrorParseFailure)
		return false
	}

	if payload.Question == nil || payload.Answer == nil {
		slog.Debug("filter: qa response lacks question or answer field")
		f.metrics.RecordQAParseFailure(ErrorMissingField)
		return false
	}

	state.QA = &store.QuestionAnswer{
		Question: fmt.Sprintf("## \"%s\" TRIVIA QUESTION:\n### %s", state.Category, *payload.Question),
		Answer:   fmt.Sprintf("## \"%s\" TRIVIA ANSWER:\n### %s", state.Category, *payload.Answer),
	}
	return true
}
