package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/designa/internal/models"
	"github.com/starford/designa/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, c := testutil.TestCatalog(t)
	srv := New(c)
	srv.now = func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) }
	return srv
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_artworks":
		result, err = srv.listArtworks(ctx, req)
	case "get_artwork":
		result, err = srv.getArtwork(ctx, req)
	case "list_workshops":
		result, err = srv.listWorkshops(ctx, req)
	case "upcoming_workshops":
		result, err = srv.upcomingWorkshops(ctx, req)
	case "get_fixture_contract":
		result, err = srv.getFixtureContract(ctx, req)
	case "validate_fixtures":
		result, err = srv.validateFixtures(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListArtworks_Filtered(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_artworks", map[string]interface{}{"software": "Blender"})
	var list []models.Artwork
	if err := json.Unmarshal([]byte(resultText(r)), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Night Market uses only Blender, Salt Harbor two more tools.
	if len(list) != 2 || list[0].ID != 4 || list[1].ID != 2 {
		t.Errorf("list = %+v", list)
	}
}

func TestGetArtwork(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_artwork", map[string]interface{}{"id": float64(3)})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "Moss Golem") {
		t.Errorf("result = %s", resultText(r))
	}

	r = callTool(t, srv, "get_artwork", map[string]interface{}{"id": float64(42)})
	if !r.IsError {
		t.Error("expected error for unknown artwork")
	}
}

func TestListWorkshops_HidesPast(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_workshops", map[string]interface{}{})
	if strings.Contains(resultText(r), "past-sketch-jam") {
		t.Error("past workshop listed")
	}
	r = callTool(t, srv, "list_workshops", map[string]interface{}{"past": true})
	if !strings.Contains(resultText(r), "past-sketch-jam") {
		t.Error("past workshop missing with past=true")
	}
}

func TestUpcomingWorkshops(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "upcoming_workshops", map[string]interface{}{"limit": float64(1)})
	var list []models.Workshop
	if err := json.Unmarshal([]byte(resultText(r)), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].Slug != "modular-kits" {
		t.Errorf("upcoming = %+v", list)
	}

	r = callTool(t, srv, "upcoming_workshops", map[string]interface{}{"limit": float64(-1)})
	if !r.IsError {
		t.Error("expected error for negative limit")
	}
}

func TestGetFixtureContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_fixture_contract", nil)
	if resultText(r) != FixtureFormatContract {
		t.Error("contract text mismatch")
	}
}

func TestValidateFixtures(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "validate_fixtures", map[string]interface{}{
		"artworks": `[{"id":1,"title":"A","type":"Character","image":"/a.jpg"}]`,
	})
	if r.IsError {
		t.Fatalf("valid draft rejected: %s", resultText(r))
	}

	r = callTool(t, srv, "validate_fixtures", map[string]interface{}{
		"artworks": `[{"id":1,"image":"/a.jpg"},{"id":1,"image":"/b.jpg"}]`,
	})
	if !r.IsError || !strings.Contains(resultText(r), "duplicate artwork id") {
		t.Errorf("duplicate id not reported: %s", resultText(r))
	}

	r = callTool(t, srv, "validate_fixtures", map[string]interface{}{
		"artworks":  `[]`,
		"workshops": `{"workshops":[{"id":1,"slug":"x","level":"expert","dateRange":"2030-01-01 to 2030-01-02"}]}`,
	})
	if !r.IsError || !strings.Contains(resultText(r), "unknown level") {
		t.Errorf("bad level not reported: %s", resultText(r))
	}
}

func TestFixtureFormatResource(t *testing.T) {
	srv := testServer(t)
	contents, err := srv.readFixtureFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != FixtureFormatURI || tc.MIMEType != "text/markdown" {
		t.Errorf("resource = %+v", contents[0])
	}
}
