package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openfoodfacts-mcp/backend/internal/knowledge"
	"github.com/openfoodfacts-mcp/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	registry  *usecase.Registry
	knowledge *knowledge.Provider
	version   string
}

// NewHandler creates a new HTTP handler
func NewHandler(registry *usecase.Registry, docs *knowledge.Provider, version string) *Handler {
	return &Handler{registry: registry, knowledge: docs, version: version}
}

// HealthCheck returns the health status of the server
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// Root confirms that the server is up
func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Open Food Facts MCP Server is running")
}

// ListTools returns the capability table with input schemas
func (h *Handler) ListTools(c *gin.Context) {
	if h.registry == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "capability registry not configured"})
		return
	}
	tools := h.registry.Capabilities()
	c.JSON(http.StatusOK, gin.H{
		"tools": tools,
		"count": len(tools),
	})
}

// ListResources returns the static knowledge documents without their bodies
func (h *Handler) ListResources(c *gin.Context) {
	if h.knowledge == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "knowledge provider not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resources":         h.knowledge.Documents(),
		"resourceTemplates": []string{knowledge.TaxonomyTemplate()},
	})
}
