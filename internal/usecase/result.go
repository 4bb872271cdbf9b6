package usecase

import (
	"encoding/json"
	"strings"
)

// Search strategies reported on search results
const (
	StrategySearchALicious = "search-a-licious"
	StrategyLegacyFallback = "legacy-fallback"
)

// Result is the canonical outcome of a capability invocation.
type Result struct {
	// Text is a human-readable summary shown before the data.
	Text string
	// Data is the structured record, serialized as indented JSON.
	Data any
	// Degraded is set when a fallback produced the result.
	Degraded bool
	// NoResults is set when the upstream had nothing to return.
	NoResults bool
	// Strategy names the search path that produced the data, if any.
	Strategy string
}

// Render produces the text content returned to the calling agent. The
// output is deterministic for equal inputs.
func (r *Result) Render() string {
	if r.Data == nil {
		return r.Text
	}
	data, err := json.MarshalIndent(r.Data, "", "  ")
	if err != nil {
		return r.Text
	}
	if r.Text == "" {
		return string(data)
	}
	return strings.TrimRight(r.Text, "\n") + "\n\n" + string(data)
}

func textResult(text string) *Result {
	return &Result{Text: text}
}

func dataResult(data any) *Result {
	return &Result{Data: data}
}

func noResults(text string) *Result {
	return &Result{Text: text, NoResults: true}
}

// userError carries a caller-facing message and hint alongside the
// underlying sentinel error.
type userError struct {
	err     error
	message string
	hint    string
}

func (e *userError) Error() string {
	return e.message + ": " + e.err.Error()
}

func (e *userError) Unwrap() error {
	return e.err
}
