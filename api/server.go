package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/gridsight/game/engine"
	"github.com/wricardo/gridsight/game/service"
	"github.com/wricardo/gridsight/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GridService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(gridService service.GridService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gridService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")

	// Grid, pathfinding and movement
	api.HandleFunc("/sessions/{id}/grid", s.handleGetGrid).Methods("GET")
	api.HandleFunc("/sessions/{id}/path", s.handleFindPath).Methods("POST")
	api.HandleFunc("/sessions/{id}/step", s.handleStep).Methods("POST")
	api.HandleFunc("/sessions/{id}/cursor", s.handleCursor).Methods("POST")

	// Visibility
	api.HandleFunc("/sessions/{id}/anchor", s.handleSetAnchor).Methods("POST")
	api.HandleFunc("/sessions/{id}/sight", s.handleComputeSight).Methods("POST")
	api.HandleFunc("/sessions/{id}/tile", s.handleCheckTile).Methods("GET")
	api.HandleFunc("/sessions/{id}/radius", s.handleRadius).Methods("GET")

	// Obstacles
	api.HandleFunc("/sessions/{id}/obstacles", s.handleListObstacles).Methods("GET")
	api.HandleFunc("/sessions/{id}/obstacles", s.handleSetObstacles).Methods("POST")
	api.HandleFunc("/sessions/{id}/obstacles", s.handleClearRegion).Methods("DELETE")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service error onto its HTTP status
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidConfig),
		errors.Is(err, engine.ErrInvalidUnit),
		errors.Is(err, engine.ErrUnknownHeuristic),
		errors.Is(err, engine.ErrUnknownTileMode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) broadcast(sessionID, event string, data interface{}) {
	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, event, data)
	}
}

// broadcastGrid pushes a fresh snapshot after cells change
func (s *Server) broadcastGrid(ctx context.Context, sessionID, event string) {
	if s.hub == nil {
		return
	}
	grid, err := s.service.GetGrid(ctx, sessionID)
	if err != nil {
		return
	}
	s.hub.BroadcastGrid(sessionID, event, grid)
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	session, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	limit := total
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	if s.hub != nil {
		s.hub.CloseSession(sessionID)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	grid, err := s.service.ResetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastGrid(sessionID, websocket.EventReset, grid)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Session reset successfully",
		"grid":    grid,
	})
}

// Grid and Path Handlers

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	grid, err := s.service.GetGrid(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, grid)
}

func (s *Server) handleFindPath(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.FindPath(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if result.Found {
		s.broadcast(sessionID, websocket.EventPathFound, result)
	}

	log.Printf("[PATH] session=%s (%g,%g)->(%g,%g) found=%v len=%d cost=%d expanded=%d h=%s",
		sessionID, req.Start.X, req.Start.Y, req.Goal.X, req.Goal.Y,
		result.Found, result.Length, result.Cost, result.Expanded, result.Heuristic)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		IncludeLast bool `json:"include_last,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := s.service.Step(r.Context(), sessionID, req.IncludeLast)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, websocket.EventStep, info)
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleCursor(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Op string `json:"op"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := s.service.MoveCursor(r.Context(), sessionID, req.Op)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if info.Moved {
		s.broadcast(sessionID, websocket.EventStep, info)
	}
	respondJSON(w, http.StatusOK, info)
}

// Visibility Handlers

func (s *Server) handleSetAnchor(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.AnchorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	anchor, err := s.service.SetAnchor(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, websocket.EventAnchorMoved, anchor)
	respondJSON(w, http.StatusOK, map[string]interface{}{"anchor": anchor})
}

func (s *Server) handleComputeSight(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.SightRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.ComputeSight(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, websocket.EventSightUpdated, result)

	log.Printf("[SIGHT] session=%s origin=(%d,%d) r=%d visible=%d revealed=%d explored=%d",
		sessionID, result.Origin.Col, result.Origin.Row, result.Radius,
		len(result.Visible), len(result.Revealed), result.Explored)

	respondJSON(w, http.StatusOK, result)
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func (s *Server) handleCheckTile(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	x, err := queryFloat(r, "x")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := queryFloat(r, "y")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.CheckTile(r.Context(), mux.Vars(r)["id"], service.TileRequest{
		X:    x,
		Y:    y,
		Unit: query.Get("unit"),
		Mode: query.Get("mode"),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRadius(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := service.RadiusRequest{Unit: query.Get("unit")}

	var err error
	if req.X, err = queryFloat(r, "x"); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Y, err = queryFloat(r, "y"); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if raw := query.Get("radius"); raw != "" {
		if req.Radius, err = strconv.Atoi(raw); err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid radius: %q", raw))
			return
		}
	}
	if raw := query.Get("self"); raw != "" {
		if req.Self, err = strconv.ParseBool(raw); err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid self: %q", raw))
			return
		}
	}

	result, err := s.service.RadiusCells(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Obstacle Handlers

func (s *Server) handleListObstacles(w http.ResponseWriter, r *http.Request) {
	objects, err := s.service.ListObstacles(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(objects),
		"objects": objects,
	})
}

func (s *Server) handleSetObstacles(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var update service.ObstacleUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.SetObstacles(r.Context(), sessionID, update)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastGrid(r.Context(), sessionID, websocket.EventObstaclesChanged)

	log.Printf("[OBSTACLES] session=%s added=%d cells=%d total=%d",
		sessionID, len(result.Objects), result.CellsChanged, result.Total)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleClearRegion(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Region *service.Region `json:"region"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Region == nil {
		respondError(w, http.StatusBadRequest, "Request body must contain a region")
		return
	}

	result, err := s.service.ClearRegion(r.Context(), sessionID, *req.Region)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if len(result.Objects) > 0 {
		s.broadcastGrid(r.Context(), sessionID, websocket.EventObstaclesChanged)
	}

	log.Printf("[OBSTACLES] session=%s cleared=%d cells=%d total=%d",
		sessionID, len(result.Objects), result.CellsChanged, result.Total)

	respondJSON(w, http.StatusOK, result)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	config, err := s.service.LoadConfig(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
		engine.GridConfig
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	// config_id names the file; it defaults to a slug of the display name
	configID := req.ConfigID
	if configID == "" {
		configID = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(req.Name), " ", "_"))
	}
	if strings.ContainsAny(configID, `/\`) || strings.HasPrefix(configID, ".") {
		respondError(w, http.StatusBadRequest, "Invalid config_id")
		return
	}

	config := req.GridConfig
	if err := s.service.SaveConfig(r.Context(), configID, &config); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}
	if s.hub == nil {
		http.Error(w, "WebSocket not available", http.StatusServiceUnavailable)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
