package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/obstacles"
	"github.com/wricardo/gridsight/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"gridsight",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`gridsight - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Each session holds a tile grid with walls, water, foliage and runtime
obstacles. Use it to plan routes with A* and to ask what a point of view
can see.

COORDINATES:
All x/y arguments are tiles unless unit is "pixels". Grids print with
column 0 on the left and row 0 at the top.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions / reset_session
- grid_state: ASCII map with anchor, path and visibility
- find_path: A* between two points (heuristic, allow_diagonal optional)
- step / move_cursor: walk the active path
- set_anchor / compute_sight: move the point of view and run a sight pass
- check_tile / radius_cells: query visibility around a point
- set_obstacles / clear_region / list_obstacles: runtime obstacles
- list_configs: available grid configurations`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

func tileModeNames() []string {
	names := make([]string, len(engine.TileModes))
	for i, m := range engine.TileModes {
		names[i] = string(m)
	}
	return names
}

func unitProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"tiles", "pixels"},
		"description": "Coordinate unit (default tiles)",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new grid session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active grid sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_session",
		Description: "Rebuild the session grid from its configuration, dropping runtime obstacles, path and visibility",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleResetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "grid_state",
		Description: "Render the session grid as ASCII with anchor, active path and visibility",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGridState)

	// Pathfinding
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Find a path with A* and load it as the session's active path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"start_x":    numberProp("Start x"),
				"start_y":    numberProp("Start y"),
				"goal_x":     numberProp("Goal x"),
				"goal_y":     numberProp("Goal y"),
				"unit":       unitProp(),
				"heuristic": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"manhattan", "diagonal", "euclidean", "euclidean-raw"},
					"description": "Heuristic (default from config)",
				},
				"allow_diagonal": map[string]interface{}{
					"type":        "boolean",
					"description": "Allow diagonal steps (default from config)",
				},
			},
			Required: []string{"session_id", "start_x", "start_y", "goal_x", "goal_y"},
		},
	}, c.handleFindPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Advance movement along the active path by one tick",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"include_last": map[string]interface{}{
					"type":        "boolean",
					"description": "Report a direction for the final cell instead of finishing early",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_cursor",
		Description: "Move the active path cursor one cell forward or back",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"op": map[string]interface{}{
					"type": "string",
					"enum": []string{service.CursorAdvance, service.CursorRetreat},
				},
			},
			Required: []string{"session_id", "op"},
		},
	}, c.handleMoveCursor)

	// Visibility
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_anchor",
		Description: "Move the session's point of view",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"x":          numberProp("X coordinate"),
				"y":          numberProp("Y coordinate"),
				"unit":       unitProp(),
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleSetAnchor)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "compute_sight",
		Description: "Run a sight pass from the anchor or a given origin and list visible cells",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"x":          numberProp("Origin x (optional, defaults to the anchor)"),
				"y":          numberProp("Origin y (optional, defaults to the anchor)"),
				"unit":       unitProp(),
				"radius":     numberProp("Sight radius in tiles (optional, defaults to config)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleComputeSight)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "check_tile",
		Description: "Test one cell against a visibility mode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"x":          numberProp("X coordinate"),
				"y":          numberProp("Y coordinate"),
				"unit":       unitProp(),
				"mode": map[string]interface{}{
					"type": "string",
					"enum": tileModeNames(),
				},
			},
			Required: []string{"session_id", "x", "y", "mode"},
		},
	}, c.handleCheckTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "radius_cells",
		Description: "List the cells in the square around a point, or the non-blocking cells around the anchor when self is true",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"x":          numberProp("Center x"),
				"y":          numberProp("Center y"),
				"unit":       unitProp(),
				"radius":     numberProp("Radius in tiles"),
				"self": map[string]interface{}{
					"type":        "boolean",
					"description": "Iterate around the anchor, skipping sight-blocking cells",
				},
			},
			Required: []string{"session_id", "radius"},
		},
	}, c.handleRadiusCells)

	// Obstacles
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_obstacles",
		Description: "Add rectangular obstacles in pixel coordinates. Each object needs id, x, y, w, h; an omitted walkable or block_sight leaves that cell attribute untouched",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"objects": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"id":          map[string]interface{}{"type": "string"},
							"x":           map[string]interface{}{"type": "number"},
							"y":           map[string]interface{}{"type": "number"},
							"w":           map[string]interface{}{"type": "number"},
							"h":           map[string]interface{}{"type": "number"},
							"walkable":    map[string]interface{}{"type": "boolean"},
							"block_sight": map[string]interface{}{"type": "boolean"},
						},
						"required": []string{"id", "x", "y", "w", "h"},
					},
				},
				"walkable": map[string]interface{}{
					"type":        "boolean",
					"description": "Override walkable for every object",
				},
				"block_sight": map[string]interface{}{
					"type":        "boolean",
					"description": "Override block_sight for every object",
				},
			},
			Required: []string{"session_id", "objects"},
		},
	}, c.handleSetObstacles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_region",
		Description: "Remove every obstacle intersecting a pixel rectangle and restore its cells to the layout terrain and the remaining obstacles",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"x":          numberProp("Region x in pixels"),
				"y":          numberProp("Region y in pixels"),
				"w":          numberProp("Region width in pixels"),
				"h":          numberProp("Region height in pixels"),
			},
			Required: []string{"session_id", "x", "y", "w", "h"},
		},
	}, c.handleClearRegion)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_obstacles",
		Description: "List the session's runtime and layer obstacles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleListObstacles)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available grid configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Argument helpers

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func floatArg(args map[string]interface{}, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func boolArg(args map[string]interface{}, key string) (bool, bool) {
	v, ok := args[key].(bool)
	return v, ok
}

func sessionPath(args map[string]interface{}, suffix string) string {
	return "/api/sessions/" + url.PathEscape(stringArg(args, "session_id")) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created " + formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, %dx%d, Created: %s)\n",
			s.ID, s.ConfigName, s.Width, s.Height, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(request.GetArguments(), ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleResetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Grid *engine.GridSnapshot `json:"grid"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(request.GetArguments(), "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Session reset.\n\n" + formatGrid(response.Grid)), nil
}

func (c *Client) handleGridState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var grid engine.GridSnapshot
	if err := c.apiCall(ctx, "GET", sessionPath(request.GetArguments(), "/grid"), nil, &grid); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGrid(&grid)), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := service.PathRequest{
		Unit:      stringArg(args, "unit"),
		Heuristic: stringArg(args, "heuristic"),
	}
	req.Start.X, _ = floatArg(args, "start_x")
	req.Start.Y, _ = floatArg(args, "start_y")
	req.Goal.X, _ = floatArg(args, "goal_x")
	req.Goal.Y, _ = floatArg(args, "goal_y")
	if diagonal, ok := boolArg(args, "allow_diagonal"); ok {
		req.AllowDiagonal = &diagonal
	}

	var result service.PathResult
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/path"), req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPathResult(&result)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	includeLast, _ := boolArg(args, "include_last")

	var info service.StepInfo
	body := map[string]bool{"include_last": includeLast}
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/step"), body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepInfo(&info)), nil
}

func (c *Client) handleMoveCursor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var info service.StepInfo
	body := map[string]string{"op": stringArg(args, "op")}
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/cursor"), body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepInfo(&info)), nil
}

func (c *Client) handleSetAnchor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := service.AnchorRequest{Unit: stringArg(args, "unit")}
	req.X, _ = floatArg(args, "x")
	req.Y, _ = floatArg(args, "y")

	var response struct {
		Anchor engine.Position `json:"anchor"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/anchor"), req, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Anchor moved to (%d,%d)", response.Anchor.Col, response.Anchor.Row)), nil
}

func (c *Client) handleComputeSight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := service.SightRequest{Unit: stringArg(args, "unit")}
	x, hasX := floatArg(args, "x")
	y, hasY := floatArg(args, "y")
	if hasX && hasY {
		req.Origin = &engine.PixelPos{X: x, Y: y}
	}
	if r, ok := floatArg(args, "radius"); ok {
		radius := int(r)
		req.Radius = &radius
	}

	var result service.SightResult
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/sight"), req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSightResult(&result)), nil
}

func (c *Client) handleCheckTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query := url.Values{}
	for _, key := range []string{"x", "y"} {
		v, _ := floatArg(args, key)
		query.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
	}
	query.Set("mode", stringArg(args, "mode"))
	if unit := stringArg(args, "unit"); unit != "" {
		query.Set("unit", unit)
	}

	var result service.TileResult
	if err := c.apiCall(ctx, "GET", sessionPath(args, "/tile?"+query.Encode()), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Cell (%d,%d) %s: %v",
		result.Cell.Col, result.Cell.Row, result.Mode, result.Match)), nil
}

func (c *Client) handleRadiusCells(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query := url.Values{}
	for _, key := range []string{"x", "y"} {
		v, _ := floatArg(args, key)
		query.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
	}
	radius, _ := floatArg(args, "radius")
	query.Set("radius", strconv.Itoa(int(radius)))
	if self, ok := boolArg(args, "self"); ok {
		query.Set("self", strconv.FormatBool(self))
	}
	if unit := stringArg(args, "unit"); unit != "" {
		query.Set("unit", unit)
	}

	var result service.RadiusResult
	if err := c.apiCall(ctx, "GET", sessionPath(args, "/radius?"+query.Encode()), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%d cells within radius %d: %s",
		len(result.Cells), result.Radius, formatPositions(result.Cells))), nil
}

func (c *Client) handleSetObstacles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	// round-trip the loosely typed arguments through JSON into the request type
	raw, err := json.Marshal(map[string]interface{}{
		"objects":     args["objects"],
		"walkable":    args["walkable"],
		"block_sight": args["block_sight"],
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var update service.ObstacleUpdate
	if err := json.Unmarshal(raw, &update); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid objects: %v", err)), nil
	}

	var result service.ObstacleResult
	if err := c.apiCall(ctx, "POST", sessionPath(args, "/obstacles"), update, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatObstacleResult("Added", &result)), nil
}

func (c *Client) handleClearRegion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var region service.Region
	region.X, _ = floatArg(args, "x")
	region.Y, _ = floatArg(args, "y")
	region.W, _ = floatArg(args, "w")
	region.H, _ = floatArg(args, "h")

	var result service.ObstacleResult
	body := map[string]interface{}{"region": region}
	if err := c.apiCall(ctx, "DELETE", sessionPath(args, "/obstacles"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatObstacleResult("Cleared", &result)), nil
}

func (c *Client) handleListObstacles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                `json:"count"`
		Objects []obstacles.Object `json:"objects"`
	}
	if err := c.apiCall(ctx, "GET", sessionPath(request.GetArguments(), "/obstacles"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Obstacles (%d):\n", response.Count)
	for _, obj := range response.Objects {
		b.WriteString(formatObject(obj))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, tile %dpx, sight %d)\n",
			cfg.ConfigID, cfg.Name, cfg.Width, cfg.Height, cfg.TileSize, cfg.SightRadius)
		if cfg.Description != "" {
			fmt.Fprintf(&b, "  %s\n", cfg.Description)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
