// Package remote is the viewer's client for the gridsight HTTP API and its
// per-session WebSocket feed.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/service"
	hub "github.com/wricardo/gridsight/transport/websocket"
)

// Client talks to one gridsight server
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// New returns a client for the server at baseURL (http or https)
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
	}, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reqBody)
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
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return errors.New(errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(id, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

// CreateSession starts a session from configID, or the server default when empty
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	err := c.call(ctx, "POST", "/api/sessions", map[string]string{"config_id": configID}, &info)
	return &info, err
}

// Grid fetches the current snapshot
func (c *Client) Grid(ctx context.Context, id string) (*engine.GridSnapshot, error) {
	var grid engine.GridSnapshot
	err := c.call(ctx, "GET", sessionPath(id, "/grid"), nil, &grid)
	return &grid, err
}

// FindPath searches between two cells with the session's default heuristic
func (c *Client) FindPath(ctx context.Context, id string, from, to engine.Position) (*service.PathResult, error) {
	req := service.PathRequest{
		Start: engine.PixelPos{X: float64(from.Col), Y: float64(from.Row)},
		Goal:  engine.PixelPos{X: float64(to.Col), Y: float64(to.Row)},
		Unit:  string(engine.Tiles),
	}
	var result service.PathResult
	err := c.call(ctx, "POST", sessionPath(id, "/path"), req, &result)
	return &result, err
}

// SetAnchor moves the point of view to a cell
func (c *Client) SetAnchor(ctx context.Context, id string, cell engine.Position) error {
	req := service.AnchorRequest{X: float64(cell.Col), Y: float64(cell.Row), Unit: string(engine.Tiles)}
	return c.call(ctx, "POST", sessionPath(id, "/anchor"), req, nil)
}

// ComputeSight runs a sight pass from the anchor
func (c *Client) ComputeSight(ctx context.Context, id string) (*service.SightResult, error) {
	var result service.SightResult
	err := c.call(ctx, "POST", sessionPath(id, "/sight"), service.SightRequest{}, &result)
	return &result, err
}

// Step advances movement along the active path by one tick
func (c *Client) Step(ctx context.Context, id string) (*service.StepInfo, error) {
	var info service.StepInfo
	err := c.call(ctx, "POST", sessionPath(id, "/step"), map[string]bool{"include_last": true}, &info)
	return &info, err
}

// Reset rebuilds the session from its configuration
func (c *Client) Reset(ctx context.Context, id string) error {
	return c.call(ctx, "POST", sessionPath(id, "/reset"), nil, nil)
}

// WebSocketURL returns the feed URL for a session
func (c *Client) WebSocketURL(id string) string {
	u := *c.baseURL
	u.Scheme = "ws"
	if c.baseURL.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"session": {id}}.Encode()
	return u.String()
}

// Subscribe streams the session's hub messages to handle until ctx is
// cancelled or the connection drops
func (c *Client) Subscribe(ctx context.Context, id string, handle func(hub.Message)) error {
	conn, _, err := c.dialer.DialContext(ctx, c.WebSocketURL(id), nil)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var msg hub.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		handle(msg)
	}
}
