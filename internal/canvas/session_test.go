package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard-backend/internal/model"
)

func boardFixture() []model.BoardObject {
	return []model.BoardObject{
		{ID: "a", Type: model.ObjectStickyNote, X: 0, Y: 0, Width: 100, Height: 100},
		{ID: "b", Type: model.ObjectRectangle, X: 150, Y: 0, Width: 100, Height: 100},
		{ID: "c", Type: model.ObjectCircle, X: 400, Y: 400, Width: 100, Height: 100},
	}
}

func TestToolShortcuts(t *testing.T) {
	cases := map[string]Tool{
		"v": ToolSelect,
		"h": ToolHand,
		"n": ToolStickyNote,
		"r": ToolRectangle,
		"c": ToolCircle,
		"l": ToolLine,
		"t": ToolText,
		"a": ToolArrow,
	}
	for key, want := range cases {
		s := NewSession()
		s.KeyDown(key, false)
		assert.Equal(t, want, s.Tool(), "key %q", key)
	}

	s := NewSession()
	s.KeyDown("z", false)
	assert.Equal(t, ToolSelect, s.Tool())
}

func TestCreationClickReturnsToSelect(t *testing.T) {
	s := NewSession()
	s.SetTool(ToolStickyNote)

	req := s.PointerDown(nil, 50, 60, Pointer{})
	require.NotNil(t, req)
	assert.Equal(t, model.ObjectStickyNote, req.Type)
	assert.Equal(t, 50.0, req.X)
	assert.Equal(t, 60.0, req.Y)
	assert.Equal(t, ToolSelect, s.Tool())
}

func TestEscapeResetsToolAndSelection(t *testing.T) {
	s := NewSession()
	objects := boardFixture()

	s.PointerDown(objects, 50, 50, Pointer{})
	s.PointerUp(objects)
	require.True(t, s.Selected("a"))

	s.SetTool(ToolHand)
	s.KeyDown("Escape", false)

	assert.Equal(t, ToolSelect, s.Tool())
	assert.Empty(t, s.Selection())
}

func TestClickSelectsAndDragCommitsGeometry(t *testing.T) {
	s := NewSession()
	objects := boardFixture()

	s.PointerDown(objects, 50, 50, Pointer{})
	assert.Equal(t, ModeDragging, s.Mode())

	s.PointerMove(80, 90)
	result := s.PointerUp(objects)

	require.Len(t, result.Geometry, 1)
	assert.Equal(t, "a", result.Geometry[0].ID)
	assert.Equal(t, 30.0, result.Geometry[0].X)
	assert.Equal(t, 40.0, result.Geometry[0].Y)
	assert.Equal(t, ModeIdle, s.Mode())
}

func TestShiftClickTogglesSelection(t *testing.T) {
	s := NewSession()
	objects := boardFixture()

	s.PointerDown(objects, 50, 50, Pointer{})
	s.PointerUp(objects)
	s.PointerDown(objects, 200, 50, Pointer{Shift: true})
	s.PointerUp(objects)

	assert.ElementsMatch(t, []string{"a", "b"}, s.Selection())

	// shift 클릭으로 해제
	s.PointerDown(objects, 200, 50, Pointer{Shift: true})
	s.PointerUp(objects)
	assert.ElementsMatch(t, []string{"a"}, s.Selection())
}

func TestMultiDragMovesWholeSelection(t *testing.T) {
	s := NewSession()
	objects := boardFixture()

	s.PointerDown(objects, 50, 50, Pointer{})
	s.PointerUp(objects)
	s.PointerDown(objects, 200, 50, Pointer{Shift: true})
	s.PointerUp(objects)

	s.PointerDown(objects, 200, 50, Pointer{})
	s.PointerMove(210, 70)
	result := s.PointerUp(objects)

	require.Len(t, result.Geometry, 2)
	byID := make(map[string]GeometryUpdate, 2)
	for _, g := range result.Geometry {
		byID[g.ID] = g
	}
	assert.Equal(t, 10.0, byID["a"].X)
	assert.Equal(t, 20.0, byID["a"].Y)
	assert.Equal(t, 160.0, byID["b"].X)
	assert.Equal(t, 20.0, byID["b"].Y)
}

func TestMarqueeSelectsByIntersection(t *testing.T) {
	s := NewSession()
	// a와 b는 완전히 포함, c는 바운딩 박스만 걸치게 배치
	objects := []model.BoardObject{
		{ID: "a", Type: model.ObjectStickyNote, X: 10, Y: 10, Width: 50, Height: 50},
		{ID: "b", Type: model.ObjectRectangle, X: 100, Y: 10, Width: 50, Height: 50},
		{ID: "c", Type: model.ObjectCircle, X: 180, Y: 180, Width: 100, Height: 100},
	}

	s.PointerDown(objects, 0, 0, Pointer{})
	assert.Equal(t, ModeMarquee, s.Mode())
	s.PointerMove(200, 200)
	result := s.PointerUp(objects)

	assert.ElementsMatch(t, []string{"a", "b", "c"}, result.Selection)
}

func TestMarqueeDirectionIndependent(t *testing.T) {
	s := NewSession()
	objects := boardFixture()

	// 오른쪽 아래에서 왼쪽 위로 드래그해도 동일하게 동작
	s.PointerDown(objects, 300, 150, Pointer{})
	s.PointerMove(-10, -10)
	result := s.PointerUp(objects)

	assert.ElementsMatch(t, []string{"a", "b"}, result.Selection)
}

func TestPanningModes(t *testing.T) {
	objects := boardFixture()

	// 중클릭
	s := NewSession()
	s.PointerDown(objects, 0, 0, Pointer{Button: ButtonMiddle})
	assert.Equal(t, ModePanning, s.Mode())

	// 핸드 툴
	s = NewSession()
	s.SetTool(ToolHand)
	s.PointerDown(objects, 0, 0, Pointer{})
	assert.Equal(t, ModePanning, s.Mode())

	// 스페이스바 홀드
	s = NewSession()
	s.KeyDown(" ", false)
	s.PointerDown(objects, 0, 0, Pointer{})
	assert.Equal(t, ModePanning, s.Mode())
	s.PointerUp(objects)
	s.KeyUp(" ")
	assert.Equal(t, ToolSelect, s.Tool())

	// 빈 캔버스 shift+드래그
	s = NewSession()
	s.PointerDown(objects, 1000, 1000, Pointer{Shift: true})
	assert.Equal(t, ModePanning, s.Mode())
}

func TestPanMovesViewport(t *testing.T) {
	s := NewSession()
	s.PointerDown(nil, 0, 0, Pointer{Button: ButtonMiddle})
	s.PointerMove(30, 40)
	s.PointerUp(nil)

	vp := s.Viewport()
	assert.Equal(t, 30.0, vp.OffsetX)
	assert.Equal(t, 40.0, vp.OffsetY)
}

func TestZoomClampAndAnchor(t *testing.T) {
	s := NewSession()

	s.ZoomAt(100, 0, 0)
	assert.Equal(t, MaxZoom, s.Viewport().Zoom)

	s = NewSession()
	s.ZoomAt(0.0001, 0, 0)
	assert.Equal(t, MinZoom, s.Viewport().Zoom)

	// 줌 후에도 포인터 아래의 월드 좌표는 고정
	s = NewSession()
	px, py := 100.0, 50.0
	before := s.Viewport()
	worldX := (px - before.OffsetX) / before.Zoom
	worldY := (py - before.OffsetY) / before.Zoom

	s.ZoomAt(2, px, py)

	after := s.Viewport()
	assert.Equal(t, 2.0, after.Zoom)
	assert.InDelta(t, worldX, (px-after.OffsetX)/after.Zoom, 1e-9)
	assert.InDelta(t, worldY, (py-after.OffsetY)/after.Zoom, 1e-9)
}

func TestDuplicateOffsetsSelection(t *testing.T) {
	s := NewSession()
	objects := boardFixture()

	s.PointerDown(objects, 50, 50, Pointer{})
	s.PointerUp(objects)
	s.PointerDown(objects, 200, 50, Pointer{Shift: true})
	s.PointerUp(objects)

	assert.Equal(t, KeyDuplicateSelection, s.KeyDown("d", true))

	dups := s.Duplicate(objects)
	require.Len(t, dups, 2)
	for _, dup := range dups {
		assert.Empty(t, dup.ID)
		assert.Equal(t, int64(0), dup.CreatedBy)
	}

	byType := make(map[model.ObjectType]model.BoardObject, 2)
	for _, dup := range dups {
		byType[dup.Type] = dup
	}
	assert.Equal(t, 20.0, byType[model.ObjectStickyNote].X)
	assert.Equal(t, 20.0, byType[model.ObjectStickyNote].Y)
	assert.Equal(t, 170.0, byType[model.ObjectRectangle].X)
	assert.Equal(t, 20.0, byType[model.ObjectRectangle].Y)
}

func TestPasteCumulativeOffset(t *testing.T) {
	s := NewSession()
	objects := boardFixture()

	s.PointerDown(objects, 50, 50, Pointer{})
	s.PointerUp(objects)
	s.Copy(objects)

	first := s.Paste()
	require.Len(t, first, 1)
	assert.Equal(t, 20.0, first[0].X)

	second := s.Paste()
	require.Len(t, second, 1)
	assert.Equal(t, 40.0, second[0].X)

	third := s.Paste()
	assert.Equal(t, 60.0, third[0].X)
}

func TestDeleteRequiresSelection(t *testing.T) {
	s := NewSession()
	assert.Equal(t, KeyNone, s.KeyDown("Delete", false))

	objects := boardFixture()
	s.PointerDown(objects, 50, 50, Pointer{})
	s.PointerUp(objects)
	assert.Equal(t, KeyDeleteSelection, s.KeyDown("Backspace", false))
}

func TestResizeHandleTransform(t *testing.T) {
	s := NewSession()
	objects := boardFixture()

	s.PointerDown(objects, 50, 50, Pointer{})
	s.PointerUp(objects)

	s.PointerDown(objects, 100, 100, Pointer{Handle: true})
	assert.Equal(t, ModeTransforming, s.Mode())
	s.PointerMove(150, 130)
	result := s.PointerUp(objects)

	require.Len(t, result.Geometry, 1)
	g := result.Geometry[0]
	assert.True(t, g.Resize)
	assert.Equal(t, 150.0, g.Width)
	assert.Equal(t, 130.0, g.Height)
}

func TestBoundsOfLineUsesPoints(t *testing.T) {
	obj := model.BoardObject{
		ID:     "l",
		Type:   model.ObjectLine,
		X:      100,
		Y:      100,
		Points: model.Points{0, 0, 50, -30},
	}

	bounds := BoundsOf(obj)
	assert.Equal(t, 100.0, bounds.X)
	assert.Equal(t, 70.0, bounds.Y)
	assert.Equal(t, 50.0, bounds.Width)
	assert.Equal(t, 30.0, bounds.Height)
}
