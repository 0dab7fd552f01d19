package filestore

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/filestore/am"
	"github.com/teranos/filestore/errors"
)

const fileExt = ".yaml"

// fileName returns the file holding the entity with id.
// Ids are path-escaped so any id maps to one file in the kind directory.
func fileName(id string) string {
	return url.PathEscape(id) + fileExt
}

func isEntityFile(name string) bool {
	return strings.HasSuffix(name, fileExt) && !strings.HasPrefix(name, ".")
}

// decodeFile parses path into v.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return errors.WithDetailf(errors.Wrap(err, "parse entity file"), "file: %s", path)
	}
	return nil
}

// writeFile encodes v to path through a temporary file and a rename, so
// readers never see a partial file.
func writeFile(path string, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := enc.Close(); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*"+fileExt)
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", tmp.Name())
	}
	if err := tmp.Chmod(am.DefaultFilePermissions); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "rename into %s", path)
}
