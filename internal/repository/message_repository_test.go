package repository

import (
	"testing"
	"time"

	"tripdesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMessagesQueryKeepsNewestWithinLimit(t *testing.T) {
	sql, args, err := listMessagesQuery(uuid.New(), 30).ToSql()
	require.NoError(t, err)

	// The window must trim from the oldest end: newest-first with the
	// limit applied, then reversed in Go.
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC")
	assert.Contains(t, sql, "LIMIT 30")
	assert.Len(t, args, 1)
}

func TestListMessagesQueryNoLimit(t *testing.T) {
	sql, _, err := listMessagesQuery(uuid.New(), 0).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "LIMIT")
}

func TestReverseMessagesRestoresChronologicalOrder(t *testing.T) {
	now := time.Now()
	newestFirst := []*models.Message{
		{Content: "third", CreatedAt: now.Add(2 * time.Second)},
		{Content: "second", CreatedAt: now.Add(time.Second)},
		{Content: "first", CreatedAt: now},
	}

	reverseMessages(newestFirst)

	require.Len(t, newestFirst, 3)
	assert.Equal(t, "first", newestFirst[0].Content)
	assert.Equal(t, "second", newestFirst[1].Content)
	assert.Equal(t, "third", newestFirst[2].Content)
}
