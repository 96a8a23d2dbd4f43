package grammar_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/beamctl/beamctl/grammar"
)

func writeGrammar(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDir(t *testing.T) {
	t.Run("Loads JSON and YAML documents keyed by file name", func(t *testing.T) {
		dir := t.TempDir()
		writeGrammar(t, dir, "benq.json", `{
  "serial": {"baudrate": 9600, "parity": "none"},
  "left_surround": "\r*",
  "right_surround": "#\r",
  "seperator": "=",
  "command_list": {
    "power": {"command": "pow", "actions": {"on": "on", "off": "off"}}
  }
}`)
		writeGrammar(t, dir, "sharp.yaml", `
serial:
  baudrate: 9600
known_responses:
  OK: Command acknowledged
command_list:
  power:
    command: POWR
    actions:
      "on": "1   "
`)
		writeGrammar(t, dir, "notes.txt", "not a grammar")

		reg, err := grammar.LoadDir(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if devices := reg.Devices(); !slices.Equal(devices, []string{"benq", "sharp"}) {
			t.Errorf("expected devices [benq sharp], got: %v", devices)
		}

		benq, ok := reg.Grammar("benq")
		if !ok {
			t.Fatal("expected benq grammar to be loaded")
		}
		if benq.Separator != "=" {
			t.Errorf("expected seperator key to decode, got: %q", benq.Separator)
		}
		if benq.CommandList["power"].Command != "pow" {
			t.Errorf("unexpected wire command: %q", benq.CommandList["power"].Command)
		}
		if benq.CommandList["power"].Actions["on"] != "on" {
			t.Errorf("unexpected wire action: %q", benq.CommandList["power"].Actions["on"])
		}

		sharp, ok := reg.Grammar("sharp")
		if !ok {
			t.Fatal("expected sharp grammar to be loaded")
		}
		if sharp.KnownResponses["OK"] != "Command acknowledged" {
			t.Errorf("unexpected known response meaning: %q", sharp.KnownResponses["OK"])
		}
	})

	t.Run("Error on missing directory", func(t *testing.T) {
		if _, err := grammar.LoadDir(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("expected error for missing directory")
		}
	})

	t.Run("Error on malformed document", func(t *testing.T) {
		dir := t.TempDir()
		writeGrammar(t, dir, "broken.json", `{"serial": [`)

		if _, err := grammar.LoadDir(dir); err == nil {
			t.Error("expected error for malformed document")
		}
	})

	t.Run("Unknown device id is not found", func(t *testing.T) {
		reg, err := grammar.LoadDir(t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := reg.Grammar("benq"); ok {
			t.Error("expected lookup of unknown device to fail")
		}
	})
}

func TestGrammarActions(t *testing.T) {
	g := &grammar.Grammar{
		CommandList: map[string]grammar.Command{
			"power": {Command: "pow", Actions: map[string]string{"on": "on", "off": "off"}},
		},
	}

	actions := g.Actions("power")
	slices.Sort(actions)
	if !slices.Equal(actions, []string{"off", "on"}) {
		t.Errorf("expected [off on], got: %v", actions)
	}

	if g.Actions("volume") != nil {
		t.Error("expected nil for unknown command")
	}
}
