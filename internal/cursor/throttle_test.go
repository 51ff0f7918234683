package cursor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottleLeadingEdge(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base

	th := NewThrottle(50 * time.Millisecond)
	th.now = func() time.Time { return clock }

	// t=0ms 첫 이벤트는 즉시 통과
	assert.True(t, th.Allow())

	// t=10ms 윈도우 내 이벤트는 드롭
	clock = base.Add(10 * time.Millisecond)
	assert.False(t, th.Allow())

	// t=60ms 윈도우 경과 후 다시 통과
	clock = base.Add(60 * time.Millisecond)
	assert.True(t, th.Allow())

	clock = base.Add(80 * time.Millisecond)
	assert.False(t, th.Allow())
}

func TestFilterStale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	staleAfter := 30 * time.Second

	positions := []Position{
		{UserID: "me", LastUpdated: now.UnixMilli()},
		{UserID: "fresh", LastUpdated: now.Add(-5 * time.Second).UnixMilli()},
		{UserID: "stale", LastUpdated: now.Add(-45 * time.Second).UnixMilli()},
		{UserID: "edge", LastUpdated: now.Add(-30 * time.Second).UnixMilli()},
	}

	out := FilterStale(positions, "me", now, staleAfter)

	ids := make([]string, 0, len(out))
	for _, pos := range out {
		ids = append(ids, pos.UserID)
	}
	assert.ElementsMatch(t, []string{"fresh", "edge"}, ids)
}
