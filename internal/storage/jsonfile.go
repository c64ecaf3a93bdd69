// Package storage provides the persistence layer for the asset application:
// flat JSON stores for rules, the category cache, unknown merchants and
// review sessions, plus a SQLite-backed transaction history.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reginold/asset-management/internal/common"
)

// writeFileAtomic writes data to path via a temp file and rename, so a
// crash mid-write never leaves a truncated store behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrStoreWrite, path, err)
	}

	tmp, err := os.CreateTemp(dir, ".asset-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrStoreWrite, path, err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0o644)
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}

	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", common.ErrStoreWrite, path, err)
	}
	return nil
}

// writeJSONAtomic marshals v as indented UTF-8 JSON (no HTML escaping, so
// Japanese merchant names stay human-inspectable) and writes it atomically.
func writeJSONAtomic(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrStoreWrite, path, err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

// jsonValue marshals a single value without HTML escaping or a trailing
// newline, for stores that write objects key by key to preserve order.
func jsonValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
