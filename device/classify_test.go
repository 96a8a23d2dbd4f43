package device

import (
	"errors"
	"testing"

	"github.com/beamctl/beamctl/grammar"
)

func TestClassify(t *testing.T) {
	t.Run("Empty reply is a success with no payload", func(t *testing.T) {
		g := &grammar.Grammar{
			KnownResponses:       map[string]string{"OK": "Power is on"},
			CommandFailedMessage: "Block item",
		}

		result, err := classify(g, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Raw != "" || result.Meaning != "" {
			t.Errorf("expected empty result, got: %+v", result)
		}
	})

	t.Run("Known response matches after surround stripping", func(t *testing.T) {
		g := &grammar.Grammar{
			LeftSurround:   "\r*",
			RightSurround:  "#\r",
			KnownResponses: map[string]string{"OK": "Power is on"},
		}

		result, err := classify(g, "\r*OK#\r")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Meaning != "Power is on" {
			t.Errorf("expected known response meaning, got: %q", result.Meaning)
		}
		if result.Raw != "\r*OK#\r" {
			t.Errorf("expected raw reply to be preserved, got: %q", result.Raw)
		}
	})

	t.Run("ErrCommandFailed for a reply outside the known set", func(t *testing.T) {
		g := &grammar.Grammar{
			KnownResponses: map[string]string{"OK": "Power is on"},
		}

		_, err := classify(g, "XX")
		if !errors.Is(err, ErrCommandFailed) {
			t.Errorf("expected ErrCommandFailed, got: %v", err)
		}
	})

	t.Run("Known responses win over substring rules", func(t *testing.T) {
		g := &grammar.Grammar{
			KnownResponses:       map[string]string{"Block item": "Device is busy"},
			CommandFailedMessage: "Block item",
		}

		result, err := classify(g, "Block item")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Meaning != "Device is busy" {
			t.Errorf("expected table lookup to win, got: %+v", result)
		}
	})

	t.Run("ErrCommandFailed on failure substring", func(t *testing.T) {
		g := &grammar.Grammar{
			CommandFailedMessage: "Block item",
			ExceptionMessage:     "Illegal format",
		}

		_, err := classify(g, "\r*Block item#\r")
		if !errors.Is(err, ErrCommandFailed) {
			t.Errorf("expected ErrCommandFailed, got: %v", err)
		}
	})

	t.Run("ErrCommandException on exception substring", func(t *testing.T) {
		g := &grammar.Grammar{
			CommandFailedMessage: "Block item",
			ExceptionMessage:     "Illegal format",
		}

		_, err := classify(g, "\r*Illegal format#\r")
		if !errors.Is(err, ErrCommandException) {
			t.Errorf("expected ErrCommandException, got: %v", err)
		}
	})

	t.Run("Other non-empty replies succeed with the raw text", func(t *testing.T) {
		g := &grammar.Grammar{
			CommandFailedMessage: "Block item",
			ExceptionMessage:     "Illegal format",
		}

		result, err := classify(g, "\r*POW=ON#\r")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Raw != "\r*POW=ON#\r" {
			t.Errorf("expected raw payload, got: %q", result.Raw)
		}
		if result.Meaning != "" {
			t.Errorf("expected no meaning without a known-responses table, got: %q", result.Meaning)
		}
	})

	t.Run("No rules configured accepts any reply", func(t *testing.T) {
		result, err := classify(&grammar.Grammar{}, "whatever")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Raw != "whatever" {
			t.Errorf("unexpected payload: %q", result.Raw)
		}
	})
}
