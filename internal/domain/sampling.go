package domain

import "context"

// SamplingRequest asks the connected client's LLM for a completion.
type SamplingRequest struct {
	SystemPrompt         string
	Prompt               string
	ModelHints           []string
	IntelligencePriority float64
	SpeedPriority        float64
	CostPriority         float64
	Temperature          float64
	MaxTokens            int
	StopSequences        []string
}

// SamplingResponse is the text the LLM returned.
type SamplingResponse struct {
	Model string
	Text  string
}

// Sampler performs one LLM completion round-trip. Implementations are
// bound to the session that issued the current request.
type Sampler interface {
	CreateMessage(ctx context.Context, req *SamplingRequest) (*SamplingResponse, error)
}
