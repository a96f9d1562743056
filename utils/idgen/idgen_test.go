package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Prefix(t *testing.T) {
	id := New(PrefixUser)
	assert.True(t, strings.HasPrefix(id, "usr_"))
	assert.Greater(t, len(id), len("usr_"))
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New(PrefixImage)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewDegraded(t *testing.T) {
	id := newDegraded(PrefixHistory)
	assert.True(t, strings.HasPrefix(id, "hist_"))
}
