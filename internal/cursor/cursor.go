package cursor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Position is one user's live cursor on a board. Positions are ephemeral;
// they live in redis only and are never persisted.
type Position struct {
	UserID      string  `json:"userId"`
	DisplayName string  `json:"displayName"`
	PhotoURL    string  `json:"photoURL,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Color       string  `json:"color"`
	LastUpdated int64   `json:"lastUpdated"` // unix millis
}

// Manager stores cursor positions in a redis hash per board.
type Manager struct {
	rdb        *redis.Client
	staleAfter time.Duration
	ttl        time.Duration
}

// NewManager Manager 생성. staleAfter보다 오래된 커서는 조회에서 제외된다.
func NewManager(rdb *redis.Client, staleAfter time.Duration) *Manager {
	return &Manager{
		rdb:        rdb,
		staleAfter: staleAfter,
		ttl:        24 * time.Hour,
	}
}

func cursorKey(boardID string) string {
	return fmt.Sprintf("board:%s:cursors", boardID)
}

// Set upserts one cursor position.
func (m *Manager) Set(ctx context.Context, boardID string, pos Position) error {
	pos.LastUpdated = time.Now().UnixMilli()

	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to marshal cursor: %w", err)
	}

	key := cursorKey(boardID)
	pipe := m.rdb.Pipeline()
	pipe.HSet(ctx, key, pos.UserID, data)
	pipe.Expire(ctx, key, m.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Remove deletes one user's cursor, typically on disconnect.
func (m *Manager) Remove(ctx context.Context, boardID, userID string) error {
	return m.rdb.HDel(ctx, cursorKey(boardID), userID).Err()
}

// List returns every live cursor on the board except the caller's own.
// Entries older than staleAfter are dropped so vanished clients do not
// leave ghost cursors behind.
func (m *Manager) List(ctx context.Context, boardID, selfUserID string) ([]Position, error) {
	entries, err := m.rdb.HGetAll(ctx, cursorKey(boardID)).Result()
	if err != nil {
		return nil, err
	}

	positions := make([]Position, 0, len(entries))
	for _, raw := range entries {
		var pos Position
		if err := json.Unmarshal([]byte(raw), &pos); err != nil {
			continue
		}
		positions = append(positions, pos)
	}

	return FilterStale(positions, selfUserID, time.Now(), m.staleAfter), nil
}

// FilterStale drops the caller's own cursor and any entry not updated within
// the staleness window.
func FilterStale(positions []Position, selfUserID string, now time.Time, staleAfter time.Duration) []Position {
	cutoff := now.Add(-staleAfter).UnixMilli()
	out := make([]Position, 0, len(positions))
	for _, pos := range positions {
		if pos.UserID == selfUserID {
			continue
		}
		if pos.LastUpdated < cutoff {
			continue
		}
		out = append(out, pos)
	}
	return out
}
