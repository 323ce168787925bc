package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/morgatz/gitseer/internal/gitseerd/service/mcp"
	"github.com/morgatz/gitseer/internal/pkg/core"
	"github.com/morgatz/gitseer/pkg/errorx"
)

// MCPHandler exposes the MCP subsystem's connection state.
type MCPHandler struct {
	manager mcp.Manager
}

// NewMCPHandler creates an MCPHandler.
func NewMCPHandler(manager mcp.Manager) *MCPHandler {
	return &MCPHandler{manager: manager}
}

// Status handles GET /v1/mcp/status.
func (h *MCPHandler) Status(c *gin.Context) {
	resp := MCPStatusResponse{Servers: []ServerStatusInfo{}}
	for _, name := range h.manager.ServerNames() {
		info := ServerStatusInfo{
			Name:   name,
			Status: h.manager.ServerStatus(name).String(),
		}
		if srv, ok := h.manager.Server(name); ok {
			info.Tools = srv.ToolNames()
			if err := srv.Err(); err != nil {
				info.Error = err.Error()
			}
		}
		resp.Servers = append(resp.Servers, info)
	}
	core.WriteResponse(c, nil, resp)
}

// Reconnect handles POST /v1/mcp/:name/reconnect.
func (h *MCPHandler) Reconnect(c *gin.Context) {
	name := c.Param("name")
	if err := h.manager.Reconnect(c.Request.Context(), name); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrMCPReconnect, "reconnect MCP server %q", name), nil)
		return
	}
	core.WriteResponse(c, nil, ServerStatusInfo{
		Name:   name,
		Status: h.manager.ServerStatus(name).String(),
	})
}

// Healthz handles GET /healthz.
func (h *MCPHandler) Healthz(c *gin.Context) {
	servers := map[string]string{}
	for _, name := range h.manager.ServerNames() {
		servers[name] = h.manager.ServerStatus(name).String()
	}
	c.JSON(http.StatusOK, HealthzResponse{
		Status:     "healthy",
		MCPServers: servers,
	})
}
