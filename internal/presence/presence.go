package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BoardUser is one participant's presence record on a board.
type BoardUser struct {
	UserID      string `json:"uid"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Color       string `json:"color"`
	IsOnline    bool   `json:"isOnline"`
	LastSeen    int64  `json:"lastSeen"` // unix millis
}

// Manager tracks who is on each board via a redis hash. Heartbeats refresh
// lastSeen; a record without a recent heartbeat counts as offline even if
// the client never sent a clean leave.
type Manager struct {
	rdb        *redis.Client
	staleAfter time.Duration
	ttl        time.Duration
}

// NewManager Manager 생성
func NewManager(rdb *redis.Client, staleAfter time.Duration) *Manager {
	return &Manager{
		rdb:        rdb,
		staleAfter: staleAfter,
		ttl:        24 * time.Hour,
	}
}

func presenceKey(boardID string) string {
	return fmt.Sprintf("board:%s:presence", boardID)
}

// Join marks the user online on the board.
func (m *Manager) Join(ctx context.Context, boardID string, user BoardUser) error {
	user.IsOnline = true
	user.LastSeen = time.Now().UnixMilli()
	return m.write(ctx, boardID, user)
}

// Heartbeat refreshes the user's lastSeen without changing identity fields.
func (m *Manager) Heartbeat(ctx context.Context, boardID string, user BoardUser) error {
	user.IsOnline = true
	user.LastSeen = time.Now().UnixMilli()
	return m.write(ctx, boardID, user)
}

// Leave marks the user offline, keeping the record for "last seen" display.
func (m *Manager) Leave(ctx context.Context, boardID, userID string) error {
	raw, err := m.rdb.HGet(ctx, presenceKey(boardID), userID).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	var user BoardUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return m.rdb.HDel(ctx, presenceKey(boardID), userID).Err()
	}
	user.IsOnline = false
	user.LastSeen = time.Now().UnixMilli()
	return m.write(ctx, boardID, user)
}

// List returns the board's participants with staleness applied.
func (m *Manager) List(ctx context.Context, boardID string) ([]BoardUser, error) {
	entries, err := m.rdb.HGetAll(ctx, presenceKey(boardID)).Result()
	if err != nil {
		return nil, err
	}

	users := make([]BoardUser, 0, len(entries))
	for _, raw := range entries {
		var user BoardUser
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			continue
		}
		users = append(users, user)
	}

	return MarkStale(users, time.Now(), m.staleAfter), nil
}

func (m *Manager) write(ctx context.Context, boardID string, user BoardUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal presence: %w", err)
	}

	key := presenceKey(boardID)
	pipe := m.rdb.Pipeline()
	pipe.HSet(ctx, key, user.UserID, data)
	pipe.Expire(ctx, key, m.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// MarkStale flips users without a heartbeat inside the window to offline.
// The record itself is kept so clients can show when someone was last seen.
func MarkStale(users []BoardUser, now time.Time, staleAfter time.Duration) []BoardUser {
	cutoff := now.Add(-staleAfter).UnixMilli()
	out := make([]BoardUser, 0, len(users))
	for _, user := range users {
		if user.IsOnline && user.LastSeen < cutoff {
			user.IsOnline = false
		}
		out = append(out, user)
	}
	return out
}
