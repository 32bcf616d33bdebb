package tips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_Validation(t *testing.T) {
	_, err := NewCatalog([]Tip{{ID: ""}})
	assert.Error(t, err)

	_, err = NewCatalog([]Tip{{ID: "dup"}, {ID: "dup"}})
	assert.Error(t, err)
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, 10, c.Len())

	// Every tip resolves by id to itself.
	for _, tip := range c.All() {
		got, ok := c.ByID(tip.ID)
		require.True(t, ok)
		assert.Equal(t, tip, got)
		assert.NotEmpty(t, tip.Title)
		assert.NotEmpty(t, tip.Category)
	}

	_, ok := c.ByID("missing-tip")
	assert.False(t, ok)
}

func TestCatalog_ByCategory(t *testing.T) {
	c := DefaultCatalog()

	water := c.ByCategory(CategoryWater)
	assert.NotEmpty(t, water)
	for _, tip := range water {
		assert.Equal(t, CategoryWater, tip.Category)
	}

	assert.Empty(t, c.ByCategory(Category("bogus")))
}
