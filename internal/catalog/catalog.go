package catalog

import (
	"sort"
	"strings"
)

// Category is a product category known to the monitors
type Category struct {
	Name string `json:"name" yaml:"name"`
}

// Catalog is an immutable, name-ordered set of categories
type Catalog struct {
	categories []Category
	index      map[string]int
}

// New creates a catalog from category names. Blank names are dropped and duplicates collapse
// into a single category, so names merged from several monitors can be passed as-is.
func New(names ...string) *Catalog {
	seen := make(map[string]bool, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		unique = append(unique, name)
	}
	sort.Strings(unique)

	c := &Catalog{
		categories: make([]Category, len(unique)),
		index:      make(map[string]int, len(unique)),
	}
	for i, name := range unique {
		c.categories[i] = Category{Name: name}
		c.index[name] = i
	}
	return c
}

// Categories returns the categories in canonical order
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Names returns the category names in canonical order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.categories))
	for i, category := range c.categories {
		names[i] = category.Name
	}
	return names
}

// Contains reports whether a category with exactly this name exists
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Len returns the number of categories
func (c *Catalog) Len() int {
	return len(c.categories)
}
