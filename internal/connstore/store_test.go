package connstore

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestSaveAndList(t *testing.T) {
	s := newTestStore(t)
	conns := []Connection{
		{ID: "user:github", CatalogID: "community/github@1.0.0"},
		{ID: "user:spotify", CatalogID: "community/spotify@1.0.0"},
	}
	for _, c := range conns {
		if err := s.Save(c); err != nil {
			t.Fatalf("Save(%s) failed: %v", c.ID, err)
		}
	}

	got := s.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(got))
	}
	if got[0].ID != "user:github" || got[1].ID != "user:spotify" {
		t.Errorf("list not sorted by ID: %v, %v", got[0].ID, got[1].ID)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("expected created_at to be filled")
	}
}

func TestSaveEmptyID(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Connection{}); err == nil {
		t.Fatal("expected error for empty ID")
	}
}

func TestGet(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Connection{ID: "user:github"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, ok := s.Get("user:github"); !ok {
		t.Error("expected to find user:github")
	}
	if _, ok := s.Get("user:missing"); ok {
		t.Error("did not expect to find user:missing")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Connection{ID: "user:github"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Delete("user:github"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := s.Get("user:github"); ok {
		t.Error("connection still present after delete")
	}
	if err := s.Delete("user:github"); err == nil {
		t.Error("expected error deleting missing connection")
	}
}

func TestReloadPicksUpExternalFiles(t *testing.T) {
	s := newTestStore(t)
	doc := "id: user:external\nname: external\napi_catalog_id: community/external@1.0.0\n"
	path := filepath.Join(s.Dir(), "external.conn.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := s.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	c, ok := s.Get("user:external")
	if !ok {
		t.Fatal("expected reloaded connection")
	}
	if c.CatalogID != "community/external@1.0.0" {
		t.Errorf("catalog = %q", c.CatalogID)
	}
}

func TestReloadSkipsMalformedFiles(t *testing.T) {
	s := newTestStore(t)
	bad := filepath.Join(s.Dir(), "broken.conn.yaml")
	if err := os.WriteFile(bad, []byte(":\nnot yaml {{{"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if len(s.List()) != 0 {
		t.Errorf("expected malformed file skipped, got %d entries", len(s.List()))
	}
}

func TestBlueprintRoundTrip(t *testing.T) {
	s := newTestStore(t)
	b := Blueprint{ID: "community/spotify@1.0.0", SpecURL: "https://example.com/openapi.json", Version: "1.0.0"}
	if err := s.SaveBlueprint(b); err != nil {
		t.Fatalf("SaveBlueprint failed: %v", err)
	}
	got, ok := s.GetBlueprint("community/spotify@1.0.0")
	if !ok {
		t.Fatal("expected blueprint")
	}
	if got.SpecURL != b.SpecURL {
		t.Errorf("spec_url = %q", got.SpecURL)
	}
}
