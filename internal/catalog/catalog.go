// Package catalog holds the set of objects a game build knows about and resolves
// object path names to them. It stands in for the engine's object lookup when the
// codec runs outside the game (CLI, stash, tests).
package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/udisondev/itemcode/internal/model"
)

var (
	ErrNotFound  = errors.New("object not found")
	ErrDuplicate = errors.New("duplicate object path")
	ErrEmptyPath = errors.New("empty object path")
)

// Part is a catalog object. Index is its position in load order.
type Part struct {
	path  string
	index int
}

// PathName returns the object path as written in the catalog.
func (p *Part) PathName() string {
	return p.path
}

// Index returns the load-order position of the part.
func (p *Part) Index() int {
	return p.index
}

func (p *Part) String() string {
	return p.path
}

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	parts  []*Part
	byName map[string]*Part // key: upper-cased path
}

// New builds a catalog from object paths. Lookups are case-insensitive, so two
// paths differing only in case are duplicates.
func New(paths []string) (*Catalog, error) {
	c := &Catalog{
		parts:  make([]*Part, 0, len(paths)),
		byName: make(map[string]*Part, len(paths)),
	}
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, ErrEmptyPath
		}
		key := strings.ToUpper(path)
		if prev, ok := c.byName[key]; ok {
			return nil, fmt.Errorf("%w: %s (already loaded as %s)", ErrDuplicate, path, prev.path)
		}
		p := &Part{path: path, index: len(c.parts)}
		c.parts = append(c.parts, p)
		c.byName[key] = p
	}
	return c, nil
}

// Parse reads one object path per line. Blank lines and lines starting with '#' are skipped.
func Parse(r io.Reader) (*Catalog, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return New(paths)
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}

	slog.Info("part catalog loaded", "path", path, "parts", c.Len())
	return c, nil
}

// Len returns the number of parts.
func (c *Catalog) Len() int {
	return len(c.parts)
}

// Lookup finds a part by path, ignoring case.
func (c *Catalog) Lookup(path string) (*Part, bool) {
	p, ok := c.byName[strings.ToUpper(path)]
	return p, ok
}

// At returns the part at load-order index i.
func (c *Catalog) At(i int) (*Part, bool) {
	if i < 0 || i >= len(c.parts) {
		return nil, false
	}
	return c.parts[i], true
}

// Resolve implements the replacement resolver.
func (c *Catalog) Resolve(path string) (model.Object, error) {
	p, ok := c.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return p, nil
}

// Parts returns all parts in load order. The slice must not be modified.
func (c *Catalog) Parts() []*Part {
	return c.parts
}
