// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the designa catalog for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/designa/internal/catalog"
	"github.com/starford/designa/internal/gallery"
)

// FixtureFormatURI is the resource holding FixtureFormatContract.
const FixtureFormatURI = "designa://fixture-format"

const defaultUpcoming = 3

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp     *server.MCPServer
	catalog *catalog.Catalog
	now     func() time.Time
}

// New creates a new MCP server with all catalog tools registered.
func New(c *catalog.Catalog) *Server {
	s := &Server{catalog: c, now: time.Now}

	s.mcp = server.NewMCPServer(
		"Designa",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_artworks",
		mcp.WithDescription("List gallery artworks, optionally filtered. With a software filter, "+
			"artworks made with fewer other tools come first."),
		mcp.WithString("software", mcp.Description("Software name, or All")),
		mcp.WithString("type", mcp.Description("Artwork type, or All")),
		mcp.WithString("tag", mcp.Description("Tag")),
	), s.listArtworks)

	s.mcp.AddTool(mcp.NewTool("get_artwork",
		mcp.WithDescription("Get a single artwork by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Artwork id")),
	), s.getArtwork)

	s.mcp.AddTool(mcp.NewTool("list_workshops",
		mcp.WithDescription("List upcoming workshops and the workshop categories."),
		mcp.WithString("category", mcp.Description("Category id, or all")),
		mcp.WithString("level", mcp.Description("beginner, intermediate or advanced")),
		mcp.WithString("skill", mcp.Description("Skill taught")),
		mcp.WithBoolean("past", mcp.Description("Include workshops that already started")),
	), s.listWorkshops)

	s.mcp.AddTool(mcp.NewTool("upcoming_workshops",
		mcp.WithDescription("Next workshops, earliest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of workshops (default 3)")),
	), s.upcomingWorkshops)

	s.mcp.AddTool(mcp.NewTool("get_fixture_contract",
		mcp.WithDescription("Returns the artwork and workshop fixture format. "+
			"Call this before drafting catalog entries."),
	), s.getFixtureContract)

	s.mcp.AddTool(mcp.NewTool("validate_fixtures",
		mcp.WithDescription("Check draft fixture contents without publishing them."),
		mcp.WithString("artworks", mcp.Required(), mcp.Description("Contents of artworks.json")),
		mcp.WithString("workshops", mcp.Description("Contents of workshops.json")),
	), s.validateFixtures)

	// Resource: fixture format contract.
	s.mcp.AddResource(
		mcp.NewResource(FixtureFormatURI, "Fixture Format Contract",
			mcp.WithResourceDescription("Format of artworks.json and workshops.json."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFixtureFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listArtworks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := gallery.ArtworkFilter{
		Software: req.GetString("software", ""),
		Type:     req.GetString("type", ""),
		Tag:      req.GetString("tag", ""),
	}
	return jsonResult(gallery.FilterArtworks(s.catalog.Snapshot().Artworks, f))
}

func (s *Server) getArtwork(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := gallery.FindArtwork(s.catalog.Snapshot().Artworks, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a)
}

func (s *Server) listWorkshops(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := gallery.WorkshopFilter{
		Category: req.GetString("category", ""),
		Level:    req.GetString("level", ""),
		Skill:    req.GetString("skill", ""),
	}
	if !req.GetBool("past", false) {
		f.After = s.now()
	}
	snap := s.catalog.Snapshot()
	return jsonResult(map[string]any{
		"categories": snap.Categories,
		"workshops":  gallery.FilterWorkshops(snap.Workshops, f),
	})
}

func (s *Server) upcomingWorkshops(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultUpcoming)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}
	return jsonResult(gallery.UpcomingWorkshops(s.catalog.Snapshot().Workshops, s.now(), limit))
}

func (s *Server) getFixtureContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FixtureFormatContract), nil
}

func (s *Server) validateFixtures(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	artworks, err := req.RequireString("artworks")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var workshops []byte
	if ws := req.GetString("workshops", ""); ws != "" {
		workshops = []byte(ws)
	}
	snap, err := catalog.Parse([]byte(artworks), workshops)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"valid":     true,
		"artworks":  len(snap.Artworks),
		"workshops": len(snap.Workshops),
		"version":   snap.Version,
	})
}

func (s *Server) readFixtureFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FixtureFormatURI,
			MIMEType: "text/markdown",
			Text:     FixtureFormatContract,
		},
	}, nil
}
