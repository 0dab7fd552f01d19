package filestore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/teranos/filestore/errors"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/store"
)

// record is a pointer to a persisted entity type.
type record[E any] interface {
	*E
	model.Entity
	model.Dirty
}

// binding connects one kind directory to its store.
type binding interface {
	kind() model.Kind
	load(ctx context.Context, dir string) (int, error)
	flush(ctx context.Context, dir string) (written, removed int, err error)
}

type kindBinding[E any, P record[E]] struct {
	k     model.Kind
	store *store.Store[P]

	// files maps each file name last loaded or written to the id it holds.
	// Only these files are ever removed; guarded by the Dir's kind lock.
	files map[string]string
}

func bind[E any, P record[E]](s *store.Store[P]) binding {
	return &kindBinding[E, P]{k: s.Kind(), store: s, files: make(map[string]string)}
}

func (b *kindBinding[E, P]) kind() model.Kind { return b.k }

// load parses every entity file in dir and replaces the store's contents,
// keeping entities still marked updated in memory. A missing dir is empty.
func (b *kindBinding[E, P]) load(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		entries = nil
	} else if err != nil {
		return 0, errors.Wrapf(err, "list %s", dir)
	}

	byID := make(map[string]P, len(entries))
	files := make(map[string]string, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if entry.IsDir() || !isEntityFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		e := P(new(E))
		if err := decodeFile(path, e); err != nil {
			return 0, err
		}
		if e.GetID() == "" {
			return 0, errors.NewInvalidArgumentError("%s has no id", path)
		}
		if _, dup := byID[e.GetID()]; dup {
			return 0, errors.NewConflictError("%s: id %q appears in more than one file", b.k, e.GetID())
		}
		byID[e.GetID()] = e
		files[entry.Name()] = e.GetID()
	}

	for e := range b.store.ReadAll() {
		if e.IsUpdated() {
			byID[e.GetID()] = e
		}
	}

	all := make([]P, 0, len(byID))
	for _, e := range byID {
		all = append(all, e)
	}
	if err := b.store.Replace(all); err != nil {
		return 0, err
	}
	b.files = files
	return len(all), nil
}

// flush writes updated entities and removes the files this binding loaded
// or wrote whose id is no longer stored. Files it never saw are left alone.
func (b *kindBinding[E, P]) flush(ctx context.Context, dir string) (int, int, error) {
	written := 0
	for e := range b.store.ReadAll() {
		if err := ctx.Err(); err != nil {
			return written, 0, err
		}
		if !e.IsUpdated() {
			continue
		}
		name := fileName(e.GetID())
		if err := writeFile(filepath.Join(dir, name), e); err != nil {
			return written, 0, err
		}
		e.ClearUpdated()
		b.files[name] = e.GetID()
		written++
	}

	removed := 0
	for name, id := range b.files {
		// a file under a non-canonical name is stale once the entity was
		// rewritten to its own file
		stale := !b.store.Exists(id) || name != fileName(id) && b.files[fileName(id)] == id
		if !stale {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return written, removed, errors.Wrapf(err, "remove %s", name)
		} else if err == nil {
			removed++
		}
		delete(b.files, name)
	}
	return written, removed, nil
}
