package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beamctl/beamctl/device"
)

// stubSession is a canned Controller for exercising the HTTP surface
// without a transport.
type stubSession struct {
	result *device.Result
	err    error
}

func (s *stubSession) Commands() []string {
	return []string{"mute", "power"}
}

func (s *stubSession) Actions(command string) ([]string, error) {
	if command != "power" {
		return nil, fmt.Errorf("%w: unknown command %q", device.ErrInvalidCommand, command)
	}
	return []string{"off", "on"}, nil
}

func (s *stubSession) Execute(ctx context.Context, command, action string) (*device.Result, error) {
	return s.result, s.err
}

func newTestServer(session Controller) *Server {
	return &Server{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Session: session,
	}
}

func TestServerCommands(t *testing.T) {
	server := newTestServer(&stubSession{})

	req := httptest.NewRequest(http.MethodGet, "/commands", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got: %d", rec.Code)
	}

	var resp struct {
		Commands []string `json:"commands"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Commands) != 2 || resp.Commands[0] != "mute" {
		t.Errorf("unexpected commands: %v", resp.Commands)
	}
}

func TestServerActions(t *testing.T) {
	t.Run("Lists actions for a known command", func(t *testing.T) {
		server := newTestServer(&stubSession{})

		req := httptest.NewRequest(http.MethodGet, "/commands/power/actions", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got: %d", rec.Code)
		}

		var resp struct {
			Command string   `json:"command"`
			Actions []string `json:"actions"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Command != "power" || len(resp.Actions) != 2 {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("404 for an unknown command", func(t *testing.T) {
		server := newTestServer(&stubSession{})

		req := httptest.NewRequest(http.MethodGet, "/commands/volume/actions", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got: %d", rec.Code)
		}
	})
}

func TestServerExecute(t *testing.T) {
	execute := func(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/execute", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Returns the reply and meaning", func(t *testing.T) {
		server := newTestServer(&stubSession{
			result: &device.Result{Raw: "OK", Meaning: "Power is on"},
		})

		rec := execute(t, server, `{"command": "power", "action": "on"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got: %d", rec.Code)
		}

		var resp struct {
			Response string `json:"response"`
			Meaning  string `json:"meaning"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Response != "OK" || resp.Meaning != "Power is on" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("400 on missing fields", func(t *testing.T) {
		server := newTestServer(&stubSession{})

		rec := execute(t, server, `{"command": "power"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got: %d", rec.Code)
		}
	})

	t.Run("400 on bad JSON", func(t *testing.T) {
		server := newTestServer(&stubSession{})

		rec := execute(t, server, `{`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got: %d", rec.Code)
		}
	})

	t.Run("400 on invalid command", func(t *testing.T) {
		server := newTestServer(&stubSession{
			err: fmt.Errorf("%w: unknown command", device.ErrInvalidCommand),
		})

		rec := execute(t, server, `{"command": "volume", "action": "up"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got: %d", rec.Code)
		}
	})

	t.Run("502 on device-side failure", func(t *testing.T) {
		server := newTestServer(&stubSession{
			err: fmt.Errorf("%w: blocked", device.ErrCommandFailed),
		})

		rec := execute(t, server, `{"command": "power", "action": "on"}`)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got: %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "blocked") {
			t.Errorf("expected error message in body, got: %s", rec.Body.String())
		}
	})

	t.Run("500 on transport errors", func(t *testing.T) {
		server := newTestServer(&stubSession{
			err: fmt.Errorf("write command: broken pipe"),
		})

		rec := execute(t, server, `{"command": "power", "action": "on"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got: %d", rec.Code)
		}
	})
}
