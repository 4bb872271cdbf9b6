package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

// sessionSampler sends sampling requests back to the client of the session
// that issued the tool call.
type sessionSampler struct {
	session *mcp.ServerSession
}

var _ domain.Sampler = (*sessionSampler)(nil)

func (s *sessionSampler) CreateMessage(ctx context.Context, req *domain.SamplingRequest) (*domain.SamplingResponse, error) {
	res, err := s.session.CreateMessage(ctx, toCreateMessageParams(req))
	if err != nil {
		return nil, fmt.Errorf("sampling request failed: %w", err)
	}
	text, ok := res.Content.(*mcp.TextContent)
	if !ok {
		return nil, fmt.Errorf("sampling returned %T content, want text", res.Content)
	}
	return &domain.SamplingResponse{Model: res.Model, Text: text.Text}, nil
}

func toCreateMessageParams(req *domain.SamplingRequest) *mcp.CreateMessageParams {
	hints := make([]*mcp.ModelHint, 0, len(req.ModelHints))
	for _, name := range req.ModelHints {
		hints = append(hints, &mcp.ModelHint{Name: name})
	}
	return &mcp.CreateMessageParams{
		Messages: []*mcp.SamplingMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: req.Prompt},
		}},
		SystemPrompt:  req.SystemPrompt,
		MaxTokens:     int64(req.MaxTokens),
		Temperature:   req.Temperature,
		StopSequences: req.StopSequences,
		ModelPreferences: &mcp.ModelPreferences{
			Hints:                hints,
			IntelligencePriority: req.IntelligencePriority,
			SpeedPriority:        req.SpeedPriority,
			CostPriority:         req.CostPriority,
		},
	}
}
