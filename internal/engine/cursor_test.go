package engine

import (
	"feedloader/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursor_NextIsMonotonic(t *testing.T) {
	c := NewCursor(1, domain.KindReply)
	for want := 1; want <= 5; want++ {
		assert.Equal(t, want, c.Next())
	}
	assert.Equal(t, 6, c.Page())
	assert.Equal(t, domain.KindReply, c.Kind())
}

func TestCursor_StartPage(t *testing.T) {
	assert.Equal(t, 4, NewCursor(4, domain.KindFeed).Next())
	assert.Equal(t, 1, NewCursor(0, domain.KindFeed).Next())
	assert.Equal(t, 1, NewCursor(-3, domain.KindFeed).Page())
}
