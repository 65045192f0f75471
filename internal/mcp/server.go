package mcp

import (
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/pkg/logging"
)

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      MemberResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	DefaultMember string
	Location      *time.Location
	Clock         clock.Clock
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := logging.OrDiscard(cfg.Logger)

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "roundup",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Stdio is a local, single-user transport: calls act as the default member.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultMember))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	handler := NewHandler(cfg.Services, cfg.Location, cfg.Clock, logger)
	registerTools(server, handler, logger)

	return server
}
