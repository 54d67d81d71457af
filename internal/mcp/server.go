package mcp

import (
	"database/sql"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/focusbrief/internal/config"
	"github.com/hpungsan/focusbrief/internal/logging"
	"github.com/hpungsan/focusbrief/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"capsule_create": {
		def:     createToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"capsule_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"capsule_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"capsule_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Deps are the collaborators the MCP tools serve.
type Deps struct {
	DB       *sql.DB
	Pipeline *ops.Pipeline
	Config   *config.Config
	Log      *logging.Logger
	Version  string
}

// NewServer creates a new MCP server with the capsule tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(d Deps) *server.MCPServer {
	if d.Config == nil {
		d.Config = config.DefaultConfig()
	}
	s := server.NewMCPServer(
		"focusbrief",
		d.Version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(d.DB, d.Config, d.Pipeline, d.Log)

	disabled := make(map[string]bool, len(d.Config.DisabledTools))
	for _, name := range d.Config.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(d Deps) error {
	return server.ServeStdio(NewServer(d))
}
