// Package mcp exposes an annotation session as Model Context Protocol tools, so an agent can
// place and orient subparticles through the same operations a viewer uses.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/subboxer"
	"github.com/aretw0/subboxer/internal/runtime"
	"github.com/aretw0/subboxer/pkg/bridge"
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SubparticlesURI is the resource listing the current definitions.
const SubparticlesURI = "subboxer://subparticles"

// Session is the part of subboxer.Session the tools drive.
type Session interface {
	HandlePointer(ctx context.Context, ev domain.PointerEvent) error
	HandleKey(ctx context.Context, key string) error
	SetMode(ctx context.Context, m domain.Mode) error
	Select(ctx context.Context, id int) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Abort(ctx context.Context)
	Subparticles() []domain.SubparticlePose
	Layers() domain.Layers
	Status() runtime.Status
	KeyBindings() []runtime.KeyBinding
	Export(path string) ([]bridge.Record, error)
}

// Server wraps a session and exposes it as an MCP server.
type Server struct {
	session   Session
	logger    *slog.Logger
	mcpServer *server.MCPServer
	// confined restricts export to bare file names inside exportDir.
	confined  bool
	exportDir string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExportDir restricts the export tool to bare file names written into dir, or into
// the working directory when dir is empty. Use it whenever the server is reachable over
// the network.
func WithExportDir(dir string) Option {
	return func(s *Server) {
		s.confined = true
		s.exportDir = dir
	}
}

// NewServer creates a new MCP server for the session.
func NewServer(session Session, opts ...Option) *Server {
	s := &Server{
		session:   session,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("subboxer-mcp", strings.TrimSpace(subboxer.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves JSON-RPC on the given streams until ctx is done or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// Handler returns the streamable HTTP transport, for mounting next to the viewer API.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("status",
		mcp.WithDescription("Report the mode, active subparticle, plane and camera."),
	), s.handleStatus)

	s.mcpServer.AddTool(mcp.NewTool("list_subparticles",
		mcp.WithDescription("List every subparticle with its origin and frame."),
	), s.handleList)

	s.mcpServer.AddTool(mcp.NewTool("pointer",
		mcp.WithDescription("Send one pointer event. A press with the alt modifier adds a subparticle in add mode, or picks in the axis modes."),
		mcp.WithString("phase", mcp.Required(), mcp.Enum("press", "move", "release")),
		mcp.WithArray("position", mcp.Required(), mcp.Description("Cursor position in voxels, x y z"), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithArray("view_direction", mcp.Description("View ray direction, x y z"), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithArray("modifiers", mcp.Description("Held modifiers, e.g. alt"), mcp.Items(map[string]any{"type": "string"})),
	), s.handlePointer)

	s.mcpServer.AddTool(mcp.NewTool("key",
		mcp.WithDescription("Press a key binding: x, y or z align the plane, o orients it to the camera, [ and ] change thickness, , and . navigate."),
		mcp.WithString("key", mcp.Required()),
	), s.handleKey)

	s.mcpServer.AddTool(mcp.NewTool("set_mode",
		mcp.WithDescription("Switch the annotation mode."),
		mcp.WithString("mode", mcp.Required(), mcp.Enum(string(domain.ModeAdd), string(domain.ModeDefineZAxis), string(domain.ModeRotateInPlane))),
	), s.handleMode)

	s.mcpServer.AddTool(mcp.NewTool("select",
		mcp.WithDescription("Make a subparticle active."),
		mcp.WithNumber("id", mcp.Required()),
	), s.handleSelect)

	s.mcpServer.AddTool(mcp.NewTool("navigate",
		mcp.WithDescription("Move the active subparticle forward or back, wrapping around."),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("next", "prev")),
	), s.handleNavigate)

	s.mcpServer.AddTool(mcp.NewTool("abort",
		mcp.WithDescription("Abandon the gesture in flight."),
	), s.handleAbort)

	s.mcpServer.AddTool(mcp.NewTool("export",
		mcp.WithDescription("Write the complete subparticle definitions as a local transform table."),
		mcp.WithString("path", mcp.Required()),
	), s.handleExport)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SubparticlesURI, "Subparticle definitions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.session.Subparticles())
		if err != nil {
			return nil, fmt.Errorf("failed to encode subparticles: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SubparticlesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Status())
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Subparticles())
}

func (s *Server) handlePointer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ev, err := pointerEvent(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.after("pointer", s.session.HandlePointer(ctx, ev))
}

func (s *Server) handleKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.after("key", s.session.HandleKey(ctx, key))
}

func (s *Server) handleMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := domain.ParseMode(name)
	if err == nil {
		err = s.session.SetMode(ctx, m)
	}
	return s.after("set_mode", err)
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.after("select", s.session.Select(ctx, id))
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch request.GetString("direction", "") {
	case "next":
		return s.after("navigate", s.session.Next(ctx))
	case "prev":
		return s.after("navigate", s.session.Previous(ctx))
	}
	return mcp.NewToolResultError(`direction must be "next" or "prev"`), nil
}

func (s *Server) handleAbort(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.session.Abort(ctx)
	return s.after("abort", nil)
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.confined {
		if path, err = bridge.ExportPath(s.exportDir, path); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	records, err := s.session.Export(path)
	if err != nil {
		s.logger.Warn("mcp export failed", "path", path, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"path": path, "records": records})
}

// after reports a session error as a tool error, or the status after a successful call.
// Tool errors go back to the model, never to the transport.
func (s *Server) after(tool string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		s.logger.Debug("mcp tool failed", "tool", tool, "err", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.session.Status())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// pointerEvent converts tool arguments into a pointer event. Vectors arrive as three-number
// arrays.
func pointerEvent(args map[string]any) (domain.PointerEvent, error) {
	var ev domain.PointerEvent
	phase, _ := args["phase"].(string)
	ev.Phase = domain.Phase(phase)

	var err error
	if ev.Position, err = vector(args, "position", true); err != nil {
		return ev, err
	}
	if ev.ViewDirection, err = vector(args, "view_direction", false); err != nil {
		return ev, err
	}
	if raw, ok := args["modifiers"].([]any); ok {
		for _, m := range raw {
			name, ok := m.(string)
			if !ok {
				return ev, errors.New("modifiers must be strings")
			}
			ev.Modifiers = append(ev.Modifiers, name)
		}
	}
	return ev, nil
}
