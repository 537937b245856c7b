// Package catalog describes the software modules a company can assign to its
// team. The catalog is read-only: the access core queries it but does not own
// or mutate it.
package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("catalog: module not found")

// ModuleStatus is the release state of a catalog module.
type ModuleStatus string

const (
	ModuleActive     ModuleStatus = "active"
	ModuleDeprecated ModuleStatus = "deprecated"
	ModuleBeta       ModuleStatus = "beta"
)

// Module is one entry in the catalog.
type Module struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Category      string       `json:"category"`
	RequiredRole  string       `json:"required_role"`
	Version       string       `json:"version"`
	Status        ModuleStatus `json:"status"`
	Size          string       `json:"size"`
	DownloadCount int          `json:"download_count"`
}

// Catalog holds the module set loaded at service start.
type Catalog struct {
	mu      sync.RWMutex
	modules []Module
	index   map[string]int
}

// New builds a catalog from the given modules.
func New(modules []Module) *Catalog {
	c := &Catalog{
		modules: make([]Module, len(modules)),
		index:   make(map[string]int, len(modules)),
	}
	copy(c.modules, modules)
	for i, m := range c.modules {
		c.index[m.ID] = i
	}
	return c
}

// Get returns the module with the given id.
func (c *Catalog) Get(ctx context.Context, id string) (Module, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return Module{}, ErrNotFound
	}
	return c.modules[i], nil
}

// List returns all modules in catalog order.
func (c *Catalog) List(ctx context.Context) []Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Module, len(c.modules))
	copy(out, c.modules)
	return out
}

// Filter narrows a catalog listing. Zero values match everything; "all" is
// accepted as a wildcard for category, role and status to mirror the
// dashboard selectors.
type Filter struct {
	Category     string
	RequiredRole string
	Status       string
	MinDownloads int
	MaxSizeMB    float64
	MinVersion   string
	Search       string
}

// Select returns the modules matching f, preserving catalog order.
func (c *Catalog) Select(ctx context.Context, f Filter) []Module {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Module
	for _, m := range c.modules {
		if !wildcard(f.Category) && !strings.EqualFold(m.Category, f.Category) {
			continue
		}
		if !wildcard(f.RequiredRole) && !strings.EqualFold(m.RequiredRole, f.RequiredRole) {
			continue
		}
		if !wildcard(f.Status) && !strings.EqualFold(string(m.Status), f.Status) {
			continue
		}
		if f.MinDownloads > 0 && m.DownloadCount < f.MinDownloads {
			continue
		}
		if f.MaxSizeMB > 0 && sizeMB(m.Size) > f.MaxSizeMB {
			continue
		}
		if f.MinVersion != "" && CompareVersions(m.Version, f.MinVersion) < 0 {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Title), search) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func wildcard(v string) bool {
	return v == "" || strings.EqualFold(v, "all")
}

// sizeMB parses the leading numeric component of a size string like "4.2 MB".
func sizeMB(size string) float64 {
	fields := strings.Fields(size)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}

// CompareVersions compares two dot-separated numeric versions component by
// component. Missing components count as zero; non-numeric components as
// zero. Returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
