package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/beamctl/beamctl/device"
)

// Controller is the subset of the device session the HTTP server needs.
// *device.Session satisfies it.
type Controller interface {
	Commands() []string
	Actions(command string) ([]string, error)
	Execute(ctx context.Context, command, action string) (*device.Result, error)
}

// Server handles incoming HTTP requests for interacting with the
// configured device session
type Server struct {
	Logger  *slog.Logger
	Session Controller
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /commands", s.handleCommands)
	mux.HandleFunc("GET /commands/{command}/actions", s.handleActions)
	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	s.sendJSON(w, statusCode, ErrorResponse{Message: message})
}

// handleCommands lists the command aliases the device grammar defines
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	type CommandsResponse struct {
		Commands []string `json:"commands"`
	}
	s.sendJSON(w, http.StatusOK, CommandsResponse{Commands: s.Session.Commands()})
}

// handleActions lists the action aliases valid for one command
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	command := r.PathValue("command")

	actions, err := s.Session.Actions(command)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusNotFound)
		return
	}

	type ActionsResponse struct {
		Command string   `json:"command"`
		Actions []string `json:"actions"`
	}
	s.sendJSON(w, http.StatusOK, ActionsResponse{Command: command, Actions: actions})
}

// handleExecute processes incoming HTTP POST requests to run one
// command/action exchange against the device
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	type ExecuteRequest struct {
		Command string `json:"command"`
		Action  string `json:"action"`
	}

	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Command == "" || req.Action == "" {
		s.sendError(w, "both 'command' and 'action' fields are required", http.StatusBadRequest)
		return
	}

	result, err := s.Session.Execute(r.Context(), req.Command, req.Action)
	if err != nil {
		s.Logger.Error("Failed to execute command", "error", err, "command", req.Command, "action", req.Action)

		switch {
		case errors.Is(err, device.ErrInvalidCommand):
			s.sendError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, device.ErrCommandFailed), errors.Is(err, device.ErrCommandException):
			s.sendError(w, err.Error(), http.StatusBadGateway)
		default:
			s.sendError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	s.Logger.Info("Command executed", "command", req.Command, "action", req.Action)

	type ExecuteResponse struct {
		Response string `json:"response"`
		Meaning  string `json:"meaning,omitempty"`
	}
	s.sendJSON(w, http.StatusOK, ExecuteResponse{Response: result.Raw, Meaning: result.Meaning})
}
