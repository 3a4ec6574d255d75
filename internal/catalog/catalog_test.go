package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "sorted by name",
			input: []string{"Toys", "Books", "GPUs"},
			want:  []string{"Books", "GPUs", "Toys"},
		},
		{
			name:  "duplicates across monitors collapse",
			input: []string{"GPUs", "Consoles", "GPUs", "Consoles"},
			want:  []string{"Consoles", "GPUs"},
		},
		{
			name:  "blank names dropped and whitespace trimmed",
			input: []string{"  Books ", "", "   "},
			want:  []string{"Books"},
		},
		{
			name:  "empty catalog",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.input...)
			assert.Equal(t, tt.want, c.Names())
			assert.Equal(t, len(tt.want), c.Len())
		})
	}
}

func TestCatalog_Contains(t *testing.T) {
	c := New("Books", "Toys")

	assert.True(t, c.Contains("Books"))
	assert.True(t, c.Contains("Toys"))
	assert.False(t, c.Contains("books"), "lookup is case sensitive")
	assert.False(t, c.Contains("nonexistent"))
}

func TestCatalog_CategoriesIsCopy(t *testing.T) {
	c := New("Books", "Toys")

	categories := c.Categories()
	categories[0].Name = "Changed"

	assert.Equal(t, "Books", c.Categories()[0].Name)
}
