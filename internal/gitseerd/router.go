package gitseerd

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/morgatz/gitseer/internal/gitseerd/handler/middleware"
	v1 "github.com/morgatz/gitseer/internal/gitseerd/handler/v1"
	"github.com/morgatz/gitseer/internal/gitseerd/service/mcp"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	chatEngine      v1.ChatEngine
	mcpManager      mcp.Manager
	authConfig      *middleware.AuthConfig
	corsOrigins     []string
	enableProfiling bool
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, deps *routerDeps) {
	g.Use(gin.Recovery())
	g.Use(middleware.CORS(deps.corsOrigins))

	if deps.authConfig != nil {
		g.Use(middleware.BearerAuth(deps.authConfig))
	}
}

func installController(g *gin.Engine, deps *routerDeps) {
	chatHandler := v1.NewChatHandler(deps.chatEngine)
	mcpHandler := v1.NewMCPHandler(deps.mcpManager)

	g.GET("/healthz", mcpHandler.Healthz)

	apiV1 := g.Group("/v1")
	{
		apiV1.POST("/chat", chatHandler.Handle)
		apiV1.GET("/mcp/status", mcpHandler.Status)
		apiV1.POST("/mcp/:name/reconnect", mcpHandler.Reconnect)
	}

	if deps.enableProfiling {
		pprof.Register(g)
	}
}
