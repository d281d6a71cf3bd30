package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevealGrowsByPageAndCapsAtTotal(t *testing.T) {
	r := NewReveal(8, 20)

	assert.Equal(t, 8, r.Visible())
	assert.True(t, r.HasMore())

	assert.Equal(t, 16, r.LoadMore())
	assert.True(t, r.HasMore())

	assert.Equal(t, 20, r.LoadMore(), "final page is partial")
	assert.False(t, r.HasMore())

	assert.Equal(t, 20, r.LoadMore(), "load more past the end is a no-op")
}

func TestRevealSmallResultSet(t *testing.T) {
	r := NewReveal(8, 3)

	assert.Equal(t, 3, r.Visible())
	assert.False(t, r.HasMore())
}

func TestRevealEmptyResultSet(t *testing.T) {
	r := NewReveal(8, 0)

	assert.Zero(t, r.Visible())
	assert.False(t, r.HasMore())
	assert.Zero(t, r.LoadMore())
}

func TestRevealResetCollapsesToFirstPage(t *testing.T) {
	r := NewReveal(8, 20)
	r.LoadMore()

	r.Reset(12)

	assert.Equal(t, 8, r.Visible())
	assert.Equal(t, 12, r.Total())
	assert.True(t, r.HasMore())
}

func TestRevealGuardsDegenerateInputs(t *testing.T) {
	r := NewReveal(0, -5)

	assert.Zero(t, r.Total())
	assert.Zero(t, r.Visible())
}
