package reaction

import (
	"strings"

	"github.com/pfrederiksen/subwatch/internal/catalog"
	"github.com/pkg/errors"
)

// DefaultGlyphs are the reaction glyphs offered on the subscription message, in order
var DefaultGlyphs = []string{"0⃣", "1⃣", "2⃣", "3⃣", "4⃣", "5⃣", "6⃣", "7⃣", "8⃣", "9⃣", "🔟", "#⃣", "*⃣"}

// ErrBindingCapacity is returned when the catalog has more categories than available glyphs
var ErrBindingCapacity = errors.New("catalog exceeds reaction glyph capacity")

// LegendEntry pairs a glyph with the category it selects
type LegendEntry struct {
	Glyph    string `json:"glyph"`
	Category string `json:"category"`
}

// Binding is a fixed one-to-one mapping between glyphs and catalog categories
type Binding struct {
	legend  []LegendEntry
	byGlyph map[string]catalog.Category
}

// NewBinding zips the catalog's categories with glyphs in order. Every category must receive
// a glyph; otherwise ErrBindingCapacity is returned. Unused trailing glyphs stay unbound.
func NewBinding(cat *catalog.Catalog, glyphs []string) (*Binding, error) {
	categories := cat.Categories()
	if len(categories) > len(glyphs) {
		return nil, errors.Wrapf(ErrBindingCapacity, "%d categories, %d glyphs", len(categories), len(glyphs))
	}

	b := &Binding{
		legend:  make([]LegendEntry, 0, len(categories)),
		byGlyph: make(map[string]catalog.Category, len(categories)),
	}
	seen := make(map[string]bool, len(glyphs))
	for _, glyph := range glyphs {
		key := normalizeGlyph(glyph)
		if key == "" {
			return nil, errors.New("empty reaction glyph")
		}
		if seen[key] {
			return nil, errors.Errorf("duplicate reaction glyph %q", glyph)
		}
		seen[key] = true
	}

	for i, category := range categories {
		b.legend = append(b.legend, LegendEntry{Glyph: glyphs[i], Category: category.Name})
		b.byGlyph[normalizeGlyph(glyphs[i])] = category
	}
	return b, nil
}

// Lookup returns the category bound to glyph
func (b *Binding) Lookup(glyph string) (catalog.Category, bool) {
	category, ok := b.byGlyph[normalizeGlyph(glyph)]
	return category, ok
}

// Legend returns the glyph assignments in catalog order
func (b *Binding) Legend() []LegendEntry {
	out := make([]LegendEntry, len(b.legend))
	copy(out, b.legend)
	return out
}

// Len returns the number of bound categories
func (b *Binding) Len() int {
	return len(b.legend)
}

// normalizeGlyph drops emoji presentation selectors, which some clients add to keycaps
// (U+FE0F), so a keycap matches with or without it.
func normalizeGlyph(glyph string) string {
	return strings.ReplaceAll(strings.TrimSpace(glyph), "\ufe0f", "")
}
