package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) (*ShortTermStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewShortTermStore(client), mr
}

func TestShortTermStore_AppendAndGet(t *testing.T) {
	store, _ := setupMiniredis(t)
	ctx := context.Background()
	sessionID := "session-abc-123"

	err := store.AppendMessage(ctx, sessionID, Message{
		Role:      RoleUser,
		Content:   "Hello",
		Timestamp: time.Now(),
	}, 20, time.Hour)
	require.NoError(t, err)

	err = store.AppendMessage(ctx, sessionID, Message{
		Role:      RoleAssistant,
		Content:   "Hi there!",
		Timestamp: time.Now(),
	}, 20, time.Hour)
	require.NoError(t, err)

	msgs, err := store.GetRecentMessages(ctx, sessionID, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "Hello", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hi there!", msgs[1].Content)
}

func TestShortTermStore_Trim(t *testing.T) {
	store, _ := setupMiniredis(t)
	ctx := context.Background()
	sessionID := "session-abc-123"

	for i := 0; i < 5; i++ {
		err := store.AppendMessage(ctx, sessionID, Message{
			Role:      RoleUser,
			Content:   string(rune('A' + i)),
			Timestamp: time.Now(),
		}, 3, time.Hour)
		require.NoError(t, err)
	}

	// Only the last 3 survive the trim.
	msgs, err := store.GetRecentMessages(ctx, sessionID, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
	assert.Equal(t, "C", msgs[0].Content)
	assert.Equal(t, "D", msgs[1].Content)
	assert.Equal(t, "E", msgs[2].Content)
}

func TestShortTermStore_TTL(t *testing.T) {
	store, mr := setupMiniredis(t)
	ctx := context.Background()
	sessionID := "session-abc-123"

	err := store.AppendMessage(ctx, sessionID, Message{
		Role:    RoleUser,
		Content: "Hello",
	}, 20, time.Minute)
	require.NoError(t, err)

	mr.FastForward(61 * time.Second)

	msgs, err := store.GetRecentMessages(ctx, sessionID, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestShortTermStore_Clear(t *testing.T) {
	store, _ := setupMiniredis(t)
	ctx := context.Background()
	sessionID := "session-abc-123"

	err := store.AppendMessage(ctx, sessionID, Message{
		Role:    RoleUser,
		Content: "Hello",
	}, 20, time.Hour)
	require.NoError(t, err)

	err = store.ClearConversation(ctx, sessionID)
	require.NoError(t, err)

	msgs, err := store.GetRecentMessages(ctx, sessionID, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestShortTermStore_IsolatedBySession(t *testing.T) {
	store, _ := setupMiniredis(t)
	ctx := context.Background()

	err := store.AppendMessage(ctx, "session-aaa-111", Message{
		Role: RoleUser, Content: "first",
	}, 20, time.Hour)
	require.NoError(t, err)

	err = store.AppendMessage(ctx, "session-bbb-222", Message{
		Role: RoleUser, Content: "second",
	}, 20, time.Hour)
	require.NoError(t, err)

	msgs, _ := store.GetRecentMessages(ctx, "session-aaa-111", 10)
	assert.Len(t, msgs, 1)
	assert.Equal(t, "first", msgs[0].Content)

	msgs, _ = store.GetRecentMessages(ctx, "session-bbb-222", 10)
	assert.Len(t, msgs, 1)
	assert.Equal(t, "second", msgs[0].Content)
}
