package gitseerd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/gg/gptr"
	"github.com/gin-gonic/gin"

	"github.com/morgatz/gitseer/internal/gitseerd/config"
	"github.com/morgatz/gitseer/internal/gitseerd/handler/middleware"
	"github.com/morgatz/gitseer/internal/gitseerd/options"
	"github.com/morgatz/gitseer/internal/gitseerd/service/engine"
	"github.com/morgatz/gitseer/internal/gitseerd/service/llm"
	"github.com/morgatz/gitseer/internal/gitseerd/service/llm/openai"
	"github.com/morgatz/gitseer/internal/gitseerd/service/mcp"
	"github.com/morgatz/gitseer/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type apiServer struct {
	cfg *config.Config

	ginEngine  *gin.Engine
	httpServer *http.Server

	mcpModule  *mcp.Module
	chatEngine *engine.Engine
}

type preparedAPIServer struct {
	*apiServer
}

func createAPIServer(cfg *config.Config) (*apiServer, error) {
	if cfg.ServingOptions.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	provider, err := buildProvider(cfg.LLMOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	logger.Info("[Gitseerd] LLM provider %q initialized (model=%s)", provider.Name(), cfg.LLMOptions.Model)

	// Initialize MCP module (Config -> Complete -> New).
	// MCP servers are described in a standalone file (Claude Desktop format).
	mcpFileCfg, err := mcp.LoadMCPConfig(cfg.MCPOptions.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load MCP config from %q: %w", cfg.MCPOptions.ConfigFile, err)
	}
	mcpCfg := &mcp.Config{
		MCPConfig: mcpFileCfg,
	}
	mcpModule, err := mcpCfg.Complete().New(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP module: %w", err)
	}
	logger.Info("[Gitseerd] MCP module initialized successfully")

	gateway := mcp.NewGateway(mcpModule.Manager)
	compactor := engine.NewCompactor(engine.CompactorConfig{
		KeepRecentMessages: cfg.EngineOptions.KeepRecentMessages,
		MaxListItems:       cfg.EngineOptions.MaxListItems,
		MaxStringChars:     cfg.EngineOptions.MaxStringChars,
		MaxSerializedChars: cfg.EngineOptions.MaxSerializedChars,
	})
	chatEngine := engine.NewEngine(provider, gateway, compactor, engine.EngineConfig{
		MaxRounds:   cfg.EngineOptions.MaxRounds,
		EventBuffer: cfg.EngineOptions.EventBuffer,
	})
	logger.Info("[Gitseerd] orchestration engine initialized (max rounds=%d)", cfg.EngineOptions.MaxRounds)

	ginEngine := gin.New()

	server := &apiServer{
		cfg:        cfg,
		ginEngine:  ginEngine,
		mcpModule:  mcpModule,
		chatEngine: chatEngine,
		httpServer: &http.Server{
			Addr:    cfg.ServingOptions.Addr(),
			Handler: ginEngine,
		},
	}

	return server, nil
}

func (s *apiServer) PrepareRun() preparedAPIServer {
	initRouter(s.ginEngine, &routerDeps{
		chatEngine: s.chatEngine,
		mcpManager: s.mcpModule.Manager,
		authConfig: &middleware.AuthConfig{
			Enabled: s.cfg.ServingOptions.AuthEnabled,
			Token:   s.cfg.ServingOptions.AuthToken,
		},
		corsOrigins:     s.cfg.ServingOptions.CORSOrigins,
		enableProfiling: s.cfg.ServingOptions.EnableProfiling,
	})

	return preparedAPIServer{s}
}

func (s preparedAPIServer) Run() error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Gitseerd] serving on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		s.closeModules()
		return err
	case sig := <-quit:
		logger.Info("[Gitseerd] received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.closeModules()
	return err
}

func (s *apiServer) closeModules() {
	// Close MCP module (disconnect all MCP servers).
	if s.mcpModule != nil {
		if err := s.mcpModule.Close(); err != nil {
			logger.Warn("[Gitseerd] MCP module close error: %v", err)
		}
	}
}

func buildProvider(opts *options.LLMOptions) (llm.StreamProvider, error) {
	cfg := &openai.Config{
		APIKey:      opts.APIKey,
		BaseURL:     opts.BaseURL,
		Model:       opts.Model,
		Azure:       opts.Provider == options.ProviderAzure,
		Deployment:  opts.Deployment,
		APIVersion:  opts.APIVersion,
		Temperature: gptr.Of(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}
	return openai.New(cfg)
}
