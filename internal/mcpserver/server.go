// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the notechat action vocabulary over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notechat/internal/executor"
	"github.com/starford/notechat/internal/matcher"
	"github.com/starford/notechat/internal/parser"
	"github.com/starford/notechat/internal/storage"
)

const contractURI = "notechat://actions"

// Server wraps the MCP server with notechat tools. Every tool acts for a
// single owner.
type Server struct {
	mcp    *server.MCPServer
	store  storage.NoteStore
	exec   *executor.Executor
	owner  string
	logger *slog.Logger
}

// New creates a new MCP server with all notechat tools registered.
func New(store storage.NoteStore, exec *executor.Executor, owner string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{store: store, exec: exec, owner: owner, logger: logger}

	s.mcp = server.NewMCPServer(
		"Notechat",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("run_action",
		mcp.WithDescription("Execute one JSON action descriptor, or a JSON array of them, against the notes. "+
			"Read the contract first via the get_action_contract tool or the "+contractURI+" resource."),
		mcp.WithString("action", mcp.Required(), mcp.Description(`Action descriptor, e.g. {"action": "create_note", "title": "Groceries"}`)),
	), s.runAction)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Find live notes whose title matches the query (exact, then substring, then fuzzy)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Title or part of a title")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, newest first."),
		mcp.WithBoolean("deleted", mcp.Description("List soft-deleted notes instead of live ones")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_action_contract",
		mcp.WithDescription("Returns the notechat action contract. "+
			"Call this before run_action to learn the accepted descriptors."),
	), s.getActionContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Action Contract",
			mcp.WithResourceDescription("Action descriptors accepted by run_action."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) runAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	descriptors := parser.Parse(raw)
	if len(descriptors) == 0 {
		return mcp.NewToolResultError("no action descriptor found"), nil
	}

	var lines []string
	for _, d := range descriptors {
		res, err := s.exec.Execute(ctx, s.owner, d)
		if err != nil {
			s.logger.Error("mcp action failed",
				slog.String("kind", string(d.Kind)),
				slog.String("error", err.Error()))
			return mcp.NewToolResultError(err.Error()), nil
		}
		lines = append(lines, res.Message)
		if res.Session != nil {
			session, err := res.Session.Encode()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			lines = append(lines, session)
			break
		}
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n\n")), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.store.List(ctx, s.owner, storage.ListOptions{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := matcher.Search(notes, query, matcher.Options{})
	if len(res.Matches) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	out, _ := json.MarshalIndent(res.Matches, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deleted := req.GetBool("deleted", false)
	notes, err := s.store.List(ctx, s.owner, storage.ListOptions{Deleted: deleted})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("[]"), nil
	}
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getActionContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ActionContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     ActionContract,
		},
	}, nil
}
