package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/openfoodfacts-mcp/backend/internal/domain"
	"github.com/openfoodfacts-mcp/backend/internal/knowledge"
	"github.com/openfoodfacts-mcp/backend/internal/usecase"
	"github.com/rs/zerolog"
)

// Server identity advertised during initialization
const (
	ServerName    = "OpenFoodFacts-MCP"
	ServerVersion = "1.0.1"
)

// Server exposes the capability dispatcher, the prompt table and the
// knowledge documents over MCP.
type Server struct {
	server     *mcp.Server
	dispatcher *usecase.Dispatcher
	prompts    *usecase.PromptTable
	knowledge  *knowledge.Provider
	logger     *zerolog.Logger
}

// NewServer builds the MCP server and registers every tool, resource and
// prompt.
func NewServer(dispatcher *usecase.Dispatcher, prompts *usecase.PromptTable, docs *knowledge.Provider, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Server{
		server:     mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil),
		dispatcher: dispatcher,
		prompts:    prompts,
		knowledge:  docs,
		logger:     logger,
	}
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// RunStdio serves one session over stdin/stdout until ctx is done or the
// client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info().Str("transport", "stdio").Msg("serving MCP")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler returns the streamable HTTP handler for this server.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) registerTools() {
	for _, c := range s.dispatcher.Registry().Capabilities() {
		openWorld := c.Annotations.OpenWorld
		tool := &mcp.Tool{
			Name:        c.Name,
			Title:       c.Title,
			Description: c.Description,
			InputSchema: c.InputSchema,
			Annotations: &mcp.ToolAnnotations{
				Title:          c.Title,
				ReadOnlyHint:   c.Annotations.ReadOnly,
				IdempotentHint: c.Annotations.Idempotent,
				OpenWorldHint:  &openWorld,
			},
		}
		s.server.AddTool(tool, s.toolHandler(c))
	}
}

func (s *Server) toolHandler(c *usecase.Capability) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sampler domain.Sampler
		if c.UsesSampling && req.Session != nil {
			sampler = &sessionSampler{session: req.Session}
		}

		res, err := s.dispatcher.Invoke(ctx, c.Name, req.Params.Arguments, sampler)
		if err != nil {
			var ce *domain.CapabilityError
			if errors.As(err, &ce) {
				return errorResult(ce.UserMessage()), nil
			}
			return errorResult(err.Error()), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: res.Render()}},
		}, nil
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func (s *Server) registerResources() {
	for _, doc := range s.knowledge.Documents() {
		s.server.AddResource(&mcp.Resource{
			URI:         doc.URI,
			Name:        doc.Key,
			Title:       doc.Name,
			Description: doc.Description,
			MIMEType:    doc.MIMEType,
		}, s.readResource)
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: knowledge.TaxonomyTemplate(),
		Name:        "taxonomy",
		Title:       "Taxonomy Reference",
		Description: "Open Food Facts taxonomy by type (categories, labels, countries, ingredients, allergens, additives, brands)",
		MIMEType:    "text/plain",
	}, s.readResource)
}

func (s *Server) readResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	doc, err := s.knowledge.ResolveURI(uri)
	if err != nil {
		s.logger.Debug().Err(err).Str("uri", uri).Msg("resource not found")
		return nil, mcp.ResourceNotFoundError(uri)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: doc.MIMEType,
			Text:     doc.Text,
		}},
	}, nil
}

func (s *Server) registerPrompts() {
	for _, p := range s.prompts.List() {
		args := make([]*mcp.PromptArgument, 0, len(p.Arguments))
		for _, a := range p.Arguments {
			args = append(args, &mcp.PromptArgument{
				Name:        a.Name,
				Description: a.Description,
				Required:    a.Required,
			})
		}
		s.server.AddPrompt(&mcp.Prompt{
			Name:        p.Name,
			Title:       p.Title,
			Description: p.Description,
			Arguments:   args,
		}, s.promptHandler(p))
	}
}

func (s *Server) promptHandler(p *usecase.Prompt) mcp.PromptHandler {
	return func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text, err := s.prompts.Render(p.Name, req.Params.Arguments)
		if err != nil {
			return nil, fmt.Errorf("prompt %s: %w", p.Name, err)
		}
		return &mcp.GetPromptResult{
			Description: p.Description,
			Messages: []*mcp.PromptMessage{{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			}},
		}, nil
	}
}
