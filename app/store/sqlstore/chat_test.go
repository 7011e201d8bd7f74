package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTouchUserActivityOnlyUpdatesActivityColumns(t *testing.T) {
	s := NewChatStore(nil)

	queryString, args, err := s.touchUserActivityQuery("chat-1", 1700000000)
	assert.NoError(t, err)
	assert.Equal(t, "UPDATE soul_chat SET last_user_activity = $1, updated_at = $2 WHERE id = $3", queryString)
	assert.Len(t, args, 3)
	assert.Equal(t, int64(1700000000), args[0])
	assert.Equal(t, "chat-1", args[2])
}
