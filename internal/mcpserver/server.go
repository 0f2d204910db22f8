// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the blog catalog for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/orgblog/internal/apperr"
	"github.com/starford/orgblog/internal/catalog"
	"github.com/starford/orgblog/internal/entryservice"
	"github.com/starford/orgblog/internal/models"
	"github.com/starford/orgblog/internal/parser"
)

const contractURI = "orgblog://markup-contract"

// Server wraps the MCP server with the blog tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *entryservice.Service
	parser *parser.Parser
}

// New creates a new MCP server with all tools registered. p checks drafts
// with the same grammar the build uses.
func New(svc *entryservice.Service, p *parser.Parser) *Server {
	s := &Server{svc: svc, parser: p}

	s.mcp = server.NewMCPServer(
		"orgblog",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through published entry titles, bodies and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read the outline-markup source of a published entry."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id (the :ID: property)")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List published entries, newest first, optionally filtered by tag or category."),
		mcp.WithString("tag", mcp.Description("Optional user tag")),
		mcp.WithString("category", mcp.Description("Optional category: TEMPORAL, PERSISTENT, TAGS or TEMPLATES")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("list_timeline",
		mcp.WithDescription("List the ids of entries first published in a year, month or day."),
		mcp.WithNumber("year", mcp.Required(), mcp.Description("Year, e.g. 2024")),
		mcp.WithNumber("month", mcp.Description("Optional month 1-12")),
		mcp.WithNumber("day", mcp.Description("Optional day 1-31, requires month")),
	), s.listTimeline)

	s.mcp.AddTool(mcp.NewTool("check_markup",
		mcp.WithDescription("Parse an outline-markup draft and report the entries it would publish "+
			"or the first structural error. Read the contract first via get_markup_contract."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Outline markup following the contract")),
	), s.checkMarkup)

	s.mcp.AddTool(mcp.NewTool("get_markup_contract",
		mcp.WithDescription("Returns the outline markup contract a blog entry must follow to be published."),
	), s.getMarkupContract)

	// Resource: markup contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Markup Contract",
			mcp.WithResourceDescription("Outline markup an entry must follow to be published."),
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

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
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
	if len(results) == 0 {
		return mcp.NewToolResultText("no entries found"), nil
	}
	return jsonResult(results), nil
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, err := s.svc.Source(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(src), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := catalog.Filter{
		Tag:      req.GetString("tag", ""),
		Category: models.Category(strings.ToUpper(req.GetString("category", ""))),
	}
	items, _, err := s.svc.ListEntries(ctx, filter, 200, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = it.ID + "\t" + it.Title
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := entryservice.TimelineQuery{
		Year:  req.GetInt("year", 0),
		Month: req.GetInt("month", 0),
		Day:   req.GetInt("day", 0),
	}
	ids, err := s.svc.Timeline(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText("no entries published in that period"), nil
	}
	return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
}

// draftEntry is what check_markup reports per qualifying heading.
type draftEntry struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Category models.Category `json:"category"`
	Tags     []string        `json:"tags,omitempty"`
	Blocks   int             `json:"blocks"`
}

func (s *Server) checkMarkup(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.parser.Parse("draft.org", []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]draftEntry, len(res.Entries))
	for i, e := range res.Entries {
		out[i] = draftEntry{ID: e.ID, Title: e.Title, Category: e.Category, Tags: e.UserTags, Blocks: len(e.Content)}
	}
	return jsonResult(map[string]any{"entries": out}), nil
}

func (s *Server) getMarkupContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MarkupContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     MarkupContract,
		},
	}, nil
}
