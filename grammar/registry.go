package grammar

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds the grammars loaded at startup, keyed by device id. It is
// immutable after LoadDir returns and safe for concurrent reads.
type Registry struct {
	grammars map[string]*Grammar
}

// LoadDir loads every grammar document from dir into a Registry. The
// device id is the file name without extension; "benq.json" becomes device
// id "benq". Both JSON and YAML documents are accepted (yaml.v3 decodes
// both). Files with other extensions are ignored.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read grammar directory %s: %w", dir, err)
	}

	reg := &Registry{grammars: make(map[string]*Grammar)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		switch ext {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read grammar %s: %w", path, err)
		}

		var g Grammar
		if err := yaml.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("parse grammar %s: %w", path, err)
		}

		id := strings.TrimSuffix(entry.Name(), ext)
		reg.grammars[id] = &g
	}

	return reg, nil
}

// NewRegistry builds a Registry from already-parsed grammars. Intended for
// tests and embedders that manage their own documents.
func NewRegistry(grammars map[string]*Grammar) *Registry {
	m := make(map[string]*Grammar, len(grammars))
	for id, g := range grammars {
		m[id] = g
	}
	return &Registry{grammars: m}
}

// Grammar returns the grammar for the given device id.
func (r *Registry) Grammar(deviceID string) (*Grammar, bool) {
	g, ok := r.grammars[deviceID]
	return g, ok
}

// Devices returns the loaded device ids in sorted order.
func (r *Registry) Devices() []string {
	ids := make([]string, 0, len(r.grammars))
	for id := range r.grammars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
