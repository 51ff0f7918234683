package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collabboard-backend/internal/model"
)

func seedObject(t *testing.T, s *Store, repo *MockRepository, boardID, id string) {
	t.Helper()
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	_, err := s.Create(context.Background(), boardID, model.BoardObject{
		ID:   id,
		Type: model.ObjectStickyNote,
	}, 1)
	require.NoError(t, err)
}

func TestCoalescerMergesBurst(t *testing.T) {
	s, repo := newTestStore(t)
	seedObject(t, s, repo, "b1", "obj-1")

	var got []FieldUpdate
	repo.On("UpdateFieldsBatch", mock.Anything, "b1", mock.Anything).
		Run(func(args mock.Arguments) {
			got = append(got, args.Get(2).([]FieldUpdate)...)
		}).
		Return(nil)

	co := NewCoalescer(s, "b1", 30*time.Millisecond)
	defer co.Close()

	// 10ms 간격의 드래그 버스트는 단일 쓰기로 합쳐진다
	co.Buffer("obj-1", map[string]interface{}{"x": 1.0})
	time.Sleep(10 * time.Millisecond)
	co.Buffer("obj-1", map[string]interface{}{"x": 2.0})
	time.Sleep(10 * time.Millisecond)
	co.Buffer("obj-1", map[string]interface{}{"x": 3.0, "y": 5.0})

	time.Sleep(60 * time.Millisecond)

	require.Len(t, got, 1)
	assert.Equal(t, "obj-1", got[0].ID)
	assert.Equal(t, 3.0, got[0].Fields["x"])
	assert.Equal(t, 5.0, got[0].Fields["y"])
}

func TestCoalescerSeparateQuietWindows(t *testing.T) {
	s, repo := newTestStore(t)
	seedObject(t, s, repo, "b1", "obj-1")

	writes := 0
	repo.On("UpdateFieldsBatch", mock.Anything, "b1", mock.Anything).
		Run(func(mock.Arguments) { writes++ }).
		Return(nil)

	co := NewCoalescer(s, "b1", 20*time.Millisecond)
	defer co.Close()

	co.Buffer("obj-1", map[string]interface{}{"x": 1.0})
	time.Sleep(50 * time.Millisecond)
	co.Buffer("obj-1", map[string]interface{}{"x": 2.0})
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 2, writes)
}

func TestCoalescerBatchesMultipleObjects(t *testing.T) {
	s, repo := newTestStore(t)
	seedObject(t, s, repo, "b1", "obj-1")
	seedObject(t, s, repo, "b1", "obj-2")

	var got []FieldUpdate
	repo.On("UpdateFieldsBatch", mock.Anything, "b1", mock.Anything).
		Run(func(args mock.Arguments) {
			got = append(got, args.Get(2).([]FieldUpdate)...)
		}).
		Return(nil)

	co := NewCoalescer(s, "b1", 20*time.Millisecond)
	defer co.Close()

	co.Buffer("obj-1", map[string]interface{}{"x": 10.0})
	co.Buffer("obj-2", map[string]interface{}{"y": 20.0})

	time.Sleep(50 * time.Millisecond)

	assert.Len(t, got, 2)
}

func TestCoalescerCloseFlushesPending(t *testing.T) {
	s, repo := newTestStore(t)
	seedObject(t, s, repo, "b1", "obj-1")

	var got []FieldUpdate
	repo.On("UpdateFieldsBatch", mock.Anything, "b1", mock.Anything).
		Run(func(args mock.Arguments) {
			got = append(got, args.Get(2).([]FieldUpdate)...)
		}).
		Return(nil)

	co := NewCoalescer(s, "b1", time.Hour)
	co.Buffer("obj-1", map[string]interface{}{"x": 42.0})
	co.Close()

	require.Len(t, got, 1)
	assert.Equal(t, 42.0, got[0].Fields["x"])

	// Close 이후의 Buffer는 무시된다
	co.Buffer("obj-1", map[string]interface{}{"x": 99.0})
	assert.Len(t, got, 1)
}
