package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Konzum", DisplayName("konzum"))
	assert.Equal(t, "Konzum", DisplayName("KONZUM"))
	assert.Equal(t, "KTC", DisplayName("ktc"))
	assert.Equal(t, "Novichain", DisplayName("novichain"))
	assert.Equal(t, "", DisplayName(""))
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown("lidl"))
	assert.True(t, IsKnown("Lidl"))
	assert.False(t, IsKnown("novichain"))
}

func TestKnownChains(t *testing.T) {
	slugs := KnownChains()
	assert.Len(t, slugs, 11)
	assert.Contains(t, slugs, "konzum")
}
