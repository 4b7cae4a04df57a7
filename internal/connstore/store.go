// Package connstore persists saved connections and compiled blueprints
// under the cxsh home directory as YAML documents.
package connstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Param describes one parameter of a blueprint action.
type Param struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required,omitempty"`
}

// ActionSpec describes a callable action exposed by a connection.
type ActionSpec struct {
	Description string  `yaml:"description"`
	Params      []Param `yaml:"params,omitempty"`
}

// Connection is one saved connection document (*.conn.yaml).
type Connection struct {
	ID        string                `yaml:"id"`
	Name      string                `yaml:"name"`
	CatalogID string                `yaml:"api_catalog_id"`
	Actions   map[string]ActionSpec `yaml:"actions,omitempty"`
	CreatedAt time.Time             `yaml:"created_at"`
}

// Blueprint is a compiled API specification record (*.blueprint.yaml).
type Blueprint struct {
	ID        string    `yaml:"id"`
	SpecURL   string    `yaml:"spec_url"`
	Version   string    `yaml:"version"`
	CreatedAt time.Time `yaml:"created_at"`
}

// BlueprintName extracts the bare connection name from a blueprint ID,
// e.g. "community/github@1.0.0" yields "github".
func BlueprintName(blueprintID string) string {
	name := blueprintID
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return name
}

// Store manages connection and blueprint files on disk with an in-memory
// index for reads.
type Store struct {
	dir string

	mu    sync.RWMutex
	conns map[string]Connection // keyed by ID, e.g. "user:github"
}

// DefaultDir returns the default connections directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cxsh-connections")
	}
	return filepath.Join(home, ".cxsh", "connections")
}

// NewStore creates a store backed by the given directory and loads the
// existing connection documents into the index.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create connections directory: %w", err)
	}
	s := &Store{dir: dir, conns: make(map[string]Connection)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

// Reload rebuilds the in-memory index from disk. Unreadable files are
// skipped rather than failing the whole reload.
func (s *Store) Reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read connections directory: %w", err)
	}

	conns := make(map[string]Connection)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".conn.yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var c Connection
		if err := yaml.Unmarshal(data, &c); err != nil || c.ID == "" {
			continue
		}
		conns[c.ID] = c
	}

	s.mu.Lock()
	s.conns = conns
	s.mu.Unlock()
	return nil
}

// List returns all saved connections sorted by ID.
func (s *Store) List() []Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Connection, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the connection with the given ID.
func (s *Store) Get(id string) (Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conns[id]
	return c, ok
}

// Save writes a connection document atomically and updates the index.
func (s *Store) Save(c Connection) error {
	if c.ID == "" {
		return fmt.Errorf("connection ID must not be empty")
	}
	if c.Name == "" {
		c.Name = strings.TrimPrefix(c.ID, "user:")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	path := filepath.Join(s.dir, c.Name+".conn.yaml")
	if err := writeAtomic(path, c); err != nil {
		return fmt.Errorf("save connection %q: %w", c.ID, err)
	}

	s.mu.Lock()
	s.conns[c.ID] = c
	s.mu.Unlock()
	return nil
}

// Delete removes a connection document and its index entry.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	c, ok := s.conns[id]
	if ok {
		delete(s.conns, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("connection %q not found", id)
	}
	return os.Remove(filepath.Join(s.dir, c.Name+".conn.yaml"))
}

// SaveBlueprint records a compiled blueprint next to the connections.
func (s *Store) SaveBlueprint(b Blueprint) error {
	if b.ID == "" {
		return fmt.Errorf("blueprint ID must not be empty")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	name := strings.ReplaceAll(strings.TrimPrefix(b.ID, "community/"), "/", "-")
	name = strings.ReplaceAll(name, "@", "-")
	path := filepath.Join(s.dir, name+".blueprint.yaml")
	if err := writeAtomic(path, b); err != nil {
		return fmt.Errorf("save blueprint %q: %w", b.ID, err)
	}
	return nil
}

// GetBlueprint loads a blueprint record by ID.
func (s *Store) GetBlueprint(id string) (Blueprint, bool) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return Blueprint{}, false
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".blueprint.yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var b Blueprint
		if err := yaml.Unmarshal(data, &b); err != nil {
			continue
		}
		if b.ID == id {
			return b, true
		}
	}
	return Blueprint{}, false
}

func writeAtomic(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
