package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilClientAlwaysMisses(t *testing.T) {
	c := NewService(nil)
	ctx := context.Background()

	assert.False(t, c.IsAvailable())
	assert.NoError(t, c.SetProfile(ctx, 1, map[string]string{"name": "x"}))

	var out map[string]string
	assert.ErrorIs(t, c.GetProfile(ctx, 1, &out), ErrMiss)
	assert.Equal(t, int64(0), c.BrowseVersion(ctx))
	assert.ErrorIs(t, c.GetBrowse(ctx, 0, "q", &out), ErrMiss)
	assert.NoError(t, c.InvalidateProfile(ctx, 1))
	assert.NoError(t, c.InvalidateBrowse(ctx))
	assert.Error(t, c.Ping(ctx))
}

func TestProfileKey(t *testing.T) {
	assert.Equal(t, "profile:42", profileKey(42))
}

func TestBrowseKeyCarriesGeneration(t *testing.T) {
	assert.Equal(t, "browse:v3:p=1&l=20", browseKey(3, "p=1&l=20"))
	assert.NotEqual(t, browseKey(3, "p=1"), browseKey(4, "p=1"))
}
