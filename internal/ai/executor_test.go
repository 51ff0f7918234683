package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collabboard-backend/internal/model"
	"collabboard-backend/internal/store"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) LoadBoard(ctx context.Context, boardID string) ([]model.BoardObject, error) {
	args := m.Called(ctx, boardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BoardObject), args.Error(1)
}

func (m *mockRepo) Insert(ctx context.Context, obj *model.BoardObject) error {
	return m.Called(ctx, obj).Error(0)
}

func (m *mockRepo) InsertBatch(ctx context.Context, objs []*model.BoardObject) error {
	return m.Called(ctx, objs).Error(0)
}

func (m *mockRepo) UpdateFields(ctx context.Context, boardID, id string, fields map[string]interface{}) error {
	return m.Called(ctx, boardID, id, fields).Error(0)
}

func (m *mockRepo) UpdateFieldsBatch(ctx context.Context, boardID string, entries []store.FieldUpdate) error {
	return m.Called(ctx, boardID, entries).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, boardID, id string) error {
	return m.Called(ctx, boardID, id).Error(0)
}

func (m *mockRepo) DeleteBatch(ctx context.Context, boardID string, ids []string) error {
	return m.Called(ctx, boardID, ids).Error(0)
}

func TestApplyCreateAndMoveIndependentTargets(t *testing.T) {
	repo := new(mockRepo)
	repo.On("LoadBoard", mock.Anything, "b1").Return([]model.BoardObject{}, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	repo.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateFieldsBatch", mock.Anything, "b1", mock.Anything).Return(nil)

	s := store.New(repo)
	ctx := context.Background()

	existingID, err := s.Create(ctx, "b1", model.BoardObject{
		ID:   "existing",
		Type: model.ObjectRectangle,
		X:    0,
		Y:    0,
	}, 1)
	require.NoError(t, err)

	exec := NewExecutor(s)
	result, err := exec.Apply(ctx, "b1", 1, []Action{
		{Name: ActionCreateStickyNote, Params: map[string]interface{}{
			"text": "hello", "x": 100.0, "y": 200.0,
		}},
		{Name: ActionMoveObject, Params: map[string]interface{}{
			"objectId": existingID, "x": 50.0, "y": 60.0,
		}},
	})
	require.NoError(t, err)
	require.Len(t, result.CreatedIDs, 1)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Skipped)

	// 이동은 기존 객체에만 적용, 새 노트는 생성 파라미터 위치 그대로
	note, ok := s.Get("b1", result.CreatedIDs[0])
	require.True(t, ok)
	assert.Equal(t, 100.0, note.X)
	assert.Equal(t, 200.0, note.Y)

	moved, ok := s.Get("b1", existingID)
	require.True(t, ok)
	assert.Equal(t, 50.0, moved.X)
	assert.Equal(t, 60.0, moved.Y)
}

// 프로세스가 아직 보드를 캐시하지 않았어도 저장된 객체는 이동 대상이 된다
func TestApplyMovesPersistedObjectOnColdCache(t *testing.T) {
	repo := new(mockRepo)
	repo.On("LoadBoard", mock.Anything, "b1").Return([]model.BoardObject{
		{ID: "existing", BoardID: "b1", Type: model.ObjectRectangle, X: 0, Y: 0},
	}, nil)
	repo.On("UpdateFieldsBatch", mock.Anything, "b1", mock.Anything).Return(nil)

	s := store.New(repo)
	exec := NewExecutor(s)

	result, err := exec.Apply(context.Background(), "b1", 1, []Action{
		{Name: ActionMoveObject, Params: map[string]interface{}{
			"objectId": "existing", "x": 50.0, "y": 60.0,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Skipped)

	moved, ok := s.Get("b1", "existing")
	require.True(t, ok)
	assert.Equal(t, 50.0, moved.X)
	assert.Equal(t, 60.0, moved.Y)
}

func TestApplySkipsUnknownReferences(t *testing.T) {
	repo := new(mockRepo)
	repo.On("LoadBoard", mock.Anything, "b1").Return([]model.BoardObject{}, nil)
	s := store.New(repo)

	exec := NewExecutor(s)
	result, err := exec.Apply(context.Background(), "b1", 1, []Action{
		{Name: ActionMoveObject, Params: map[string]interface{}{
			"objectId": "ghost", "x": 1.0, "y": 2.0,
		}},
		{Name: ActionDeleteObject, Params: map[string]interface{}{
			"objectId": "ghost",
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Deleted)
	assert.Equal(t, 2, result.Skipped)
	repo.AssertNotCalled(t, "UpdateFieldsBatch", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "DeleteBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplySkipsMalformedActions(t *testing.T) {
	repo := new(mockRepo)
	repo.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)
	s := store.New(repo)

	exec := NewExecutor(s)
	result, err := exec.Apply(context.Background(), "b1", 1, []Action{
		{Name: "explodeBoard", Params: map[string]interface{}{}},
		{Name: ActionCreateStickyNote, Params: map[string]interface{}{"text": "no coords"}},
		{Name: ActionCreateText, Params: map[string]interface{}{
			"text": "ok", "x": 0.0, "y": 0.0,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, result.CreatedIDs, 1)
}

func TestApplyDeletesAfterCreates(t *testing.T) {
	repo := new(mockRepo)
	repo.On("LoadBoard", mock.Anything, "b1").Return([]model.BoardObject{}, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	repo.On("DeleteBatch", mock.Anything, "b1", []string{"old"}).Return(nil)
	s := store.New(repo)

	ctx := context.Background()
	_, err := s.Create(ctx, "b1", model.BoardObject{ID: "old", Type: model.ObjectCircle}, 1)
	require.NoError(t, err)

	exec := NewExecutor(s)
	result, err := exec.Apply(ctx, "b1", 1, []Action{
		{Name: ActionDeleteObject, Params: map[string]interface{}{"objectId": "old"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)

	_, ok := s.Get("b1", "old")
	assert.False(t, ok)
}
