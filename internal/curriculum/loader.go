// Package curriculum loads the static course catalogs the tracker is seeded from.
package curriculum

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Atul17-std/pokemon-tracker/internal/progress"
)

// DefaultCatalogID is the catalog bundled with the binary.
const DefaultCatalogID = "btech-cse"

//go:embed catalogs/*.yaml
var bundled embed.FS

// ErrMalformed marks a catalog file that is not valid YAML.
var ErrMalformed = errors.New("malformed catalog YAML")

// Catalog is a loaded catalog with its descriptive fields.
type Catalog struct {
	ID      string
	Name    string
	Program string
	progress.Catalog
}

// Loader loads and caches catalogs from the filesystem.
type Loader struct {
	rootDir  string
	catalogs map[string]Catalog
	skipped  []error
	mu       sync.RWMutex
}

// NewLoader creates a loader and loads every catalog under rootDir.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir:  rootDir,
		catalogs: make(map[string]Catalog),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading curriculum: %w", err)
	}

	slog.Info("curriculum loaded", "catalogs", len(l.catalogs))
	return l, nil
}

// GetCatalog returns a catalog by ID.
func (l *Loader) GetCatalog(id string) (Catalog, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.catalogs[id]
	return c, ok
}

// Skipped returns the errors of files skipped as malformed, one per file.
func (l *Loader) Skipped() []error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.skipped)
}

// IDs returns the loaded catalog IDs, sorted.
func (l *Loader) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.catalogs))
	for id := range l.catalogs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		cat, ok, err := parse(data)
		switch {
		case errors.Is(err, ErrMalformed):
			slog.Warn("skipping invalid catalog YAML", "path", path, "error", err)
			l.mu.Lock()
			l.skipped = append(l.skipped, fmt.Errorf("%s: %w", path, err))
			l.mu.Unlock()
			return nil
		case err != nil:
			return fmt.Errorf("%s: %w", path, err)
		case !ok:
			slog.Warn("skipping non-catalog YAML", "path", path)
			return nil
		}

		l.mu.Lock()
		l.catalogs[cat.ID] = cat
		l.mu.Unlock()
		return nil
	})
}

// parse decodes one catalog file. ok is false when the YAML is not a catalog
// at all. err wraps ErrMalformed when the YAML does not decode, and is set
// otherwise when a catalog fails validation.
func parse(data []byte) (Catalog, bool, error) {
	var f CatalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Catalog{}, false, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if f.ID == "" || len(f.Semesters) == 0 {
		return Catalog{}, false, nil
	}

	cat, err := f.ToCatalog()
	if err != nil {
		return Catalog{}, true, err
	}
	return Catalog{ID: f.ID, Name: f.Name, Program: f.Program, Catalog: cat}, true, nil
}

// Default returns the bundled B.Tech CSE catalog.
func Default() (Catalog, error) {
	data, err := bundled.ReadFile("catalogs/" + DefaultCatalogID + ".yaml")
	if err != nil {
		return Catalog{}, fmt.Errorf("reading bundled catalog: %w", err)
	}
	cat, ok, err := parse(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("bundled catalog: %w", err)
	}
	if !ok {
		return Catalog{}, fmt.Errorf("bundled catalog %s is empty", DefaultCatalogID)
	}
	return cat, nil
}

// Resolve picks the catalog to seed from: the bundled default when dir is
// empty, otherwise catalog id loaded from dir.
func Resolve(dir, id string) (Catalog, error) {
	if dir == "" {
		return Default()
	}
	l, err := NewLoader(dir)
	if err != nil {
		return Catalog{}, err
	}
	if id == "" {
		id = DefaultCatalogID
	}
	cat, ok := l.GetCatalog(id)
	if !ok {
		notFound := fmt.Errorf("catalog %q not found in %s", id, dir)
		return Catalog{}, errors.Join(append([]error{notFound}, l.Skipped()...)...)
	}
	return cat, nil
}
