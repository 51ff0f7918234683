package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkStale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	staleAfter := 30 * time.Second

	users := []BoardUser{
		{UserID: "fresh", IsOnline: true, LastSeen: now.Add(-10 * time.Second).UnixMilli()},
		{UserID: "stale", IsOnline: true, LastSeen: now.Add(-45 * time.Second).UnixMilli()},
		{UserID: "left", IsOnline: false, LastSeen: now.Add(-5 * time.Minute).UnixMilli()},
	}

	out := MarkStale(users, now, staleAfter)
	require.Len(t, out, 3)

	byID := make(map[string]BoardUser, len(out))
	for _, user := range out {
		byID[user.UserID] = user
	}

	assert.True(t, byID["fresh"].IsOnline)
	assert.False(t, byID["stale"].IsOnline)
	assert.False(t, byID["left"].IsOnline)

	// 원본 lastSeen은 유지된다
	assert.Equal(t, now.Add(-45*time.Second).UnixMilli(), byID["stale"].LastSeen)
}
