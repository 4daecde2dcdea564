// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the journal operations as tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quietwren/gemjournal/internal/journalservice"
)

// Server wraps the MCP server with journal tools.
type Server struct {
	mcp *server.MCPServer
	svc *journalservice.Service
}

// New creates a new MCP server with all journal tools registered.
func New(svc *journalservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"GemJournal",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_journals",
		mcp.WithDescription("List every indexed journal file with its entry count and date range."),
	), s.listJournals)

	s.mcp.AddTool(mcp.NewTool("read_journal",
		mcp.WithDescription("Parse and validate a journal file, returning its entries in the "+
			"canonical schema. The path must lie inside an approved journal root."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the journal .json file")),
	), s.readJournal)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through entry descriptions, reflections, and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("toggle_publish",
		mcp.WithDescription("Flip the publish flag of the entry with the given id. Only the first "+
			"matching entry is modified; the journal file is rewritten in place."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the journal .json file")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id to toggle")),
	), s.togglePublish)

	s.mcp.AddTool(mcp.NewTool("export_published",
		mcp.WithDescription("Export every entry marked publish=true to redacted Markdown files. "+
			"Read the gemjournal://format resource for the journal format contract."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the journal .json file")),
		mcp.WithString("out_dir", mcp.Required(), mcp.Description("Directory for the Markdown output")),
	), s.exportPublished)

	s.mcp.AddTool(mcp.NewTool("get_journal_contract",
		mcp.WithDescription("Returns the canonical Gem Journal file format contract. "+
			"Call this before writing journal files to ensure correct structure."),
	), s.getJournalContract)

	// Resource: journal format contract.
	s.mcp.AddResource(
		mcp.NewResource("gemjournal://format", "Gem Journal Format Contract",
			mcp.WithResourceDescription("Canonical envelope and entry schema all journal files must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func (s *Server) listJournals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.svc.ListFiles(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no journals indexed"), nil
	}
	var lines []string
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s (%d entries, %s .. %s)",
			r.Path, r.EntryCount, r.FirstTimestamp, r.LastTimestamp))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.svc.GetEntries(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) togglePublish(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	updated, err := s.svc.TogglePublish(ctx, path, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !updated {
		return mcp.NewToolResultError(fmt.Sprintf("entry not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("toggled publish flag of entry %s in %s", id, path)), nil
}

func (s *Server) exportPublished(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outDir, err := req.RequireString("out_dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	exported, err := s.svc.Export(ctx, path, outDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(exported) == 0 {
		return mcp.NewToolResultText("no entries marked for publication"), nil
	}
	return mcp.NewToolResultText(strings.Join(exported, "\n")), nil
}

func (s *Server) getJournalContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(JournalFormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "gemjournal://format",
			MIMEType: "text/markdown",
			Text:     JournalFormatContract,
		},
	}, nil
}
