package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/store"
)

// TempStoreDir creates an empty backing-file root with one directory per kind.
func TempStoreDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for _, kind := range model.Kinds {
		if err := os.MkdirAll(filepath.Join(dir, string(kind)), 0755); err != nil {
			t.Fatalf("Failed to create %s directory: %v", kind, err)
		}
	}
	return dir
}

// WriteFile writes content to dir/kind/name, creating the kind directory.
func WriteFile(t *testing.T, dir string, kind model.Kind, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, string(kind), name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// Seed stores the given entities, failing the test on the first error.
func Seed[T model.Entity](t *testing.T, s *store.Store[T], entities ...T) {
	t.Helper()
	for _, e := range entities {
		if err := s.Create(e); err != nil {
			t.Fatalf("Failed to seed %s %s: %v", s.Kind(), e.GetID(), err)
		}
	}
}

// SeedRealms stores realms with the given ids, each named after its id.
func SeedRealms(t *testing.T, stores *store.Stores, ids ...string) []*model.Realm {
	t.Helper()
	realms := make([]*model.Realm, 0, len(ids))
	for i, id := range ids {
		realms = append(realms, &model.Realm{ID: id, Name: id, Enabled: true, CreatedTimestamp: int64(i + 1)})
	}
	Seed(t, stores.Realms, realms...)
	return realms
}
