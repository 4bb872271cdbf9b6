package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openfoodfacts-mcp/backend/config"
	"github.com/openfoodfacts-mcp/backend/internal/metrics"
	"github.com/rs/zerolog"
)

// MCPPath is where the streamable HTTP transport is mounted
const MCPPath = "/mcp"

// SetupRouter creates and configures the Gin router. mcpHandler serves the
// MCP transport and m may be nil when metrics are disabled.
func SetupRouter(cfg *config.Config, handler *Handler, mcpHandler http.Handler, m *metrics.Registry, logger *zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/", handler.Root)
	router.GET("/health", handler.HealthCheck)

	if mcpHandler != nil {
		mcp := gin.WrapH(mcpHandler)
		router.GET(MCPPath, mcp)
		router.POST(MCPPath, mcp)
		router.DELETE(MCPPath, mcp)
	}

	if cfg.Metrics.Enabled && m != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	// Read-only introspection of the registered capabilities
	v1 := router.Group("/api/v1")
	{
		v1.GET("/tools", handler.ListTools)
		v1.GET("/resources", handler.ListResources)
	}

	return router
}
