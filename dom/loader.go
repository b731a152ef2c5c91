package dom

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ResourceLoader fetches the text of a resource by URL. Pages use it to load
// linked style sheets.
type ResourceLoader interface {
	Load(ref string) (string, error)
}

// MapLoader serves resources from memory, keyed by URL.
type MapLoader map[string]string

// Load is part of interface ResourceLoader.
func (m MapLoader) Load(ref string) (string, error) {
	if text, ok := m[ref]; ok {
		return text, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoResource, ref)
}

// DirLoader serves resources from a folder of the local file system. The
// path component of a URL is taken relative to Root.
type DirLoader struct {
	Root string
}

// Load is part of interface ResourceLoader.
func (d DirLoader) Load(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoResource, ref)
	}
	rel := filepath.FromSlash(strings.TrimPrefix(u.Path, "/"))
	path := filepath.Join(d.Root, rel)
	if r, err := filepath.Rel(d.Root, path); err != nil || strings.HasPrefix(r, "..") {
		return "", fmt.Errorf("%w: %s is outside of %s", ErrNoResource, ref, d.Root)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNoResource, ref)
		}
		return "", fmt.Errorf("dom: cannot read %s: %w", ref, err)
	}
	return string(data), nil
}
