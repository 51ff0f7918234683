package canvas

import (
	"collabboard-backend/internal/model"
)

// Mode is the select-tool sub-mode. Panning overlaps any tool and is
// mutually exclusive with marquee selection and object dragging.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMarquee
	ModeDragging
	ModeTransforming
	ModePanning
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeMarquee:
		return "marquee"
	case ModeDragging:
		return "dragging"
	case ModeTransforming:
		return "transforming"
	case ModePanning:
		return "panning"
	default:
		return "unknown"
	}
}

const (
	MinZoom = 0.1
	MaxZoom = 5.0

	duplicateOffset = 20.0
	minObjectSize   = 10.0
)

// Viewport maps world coordinates to screen: screen = world*Zoom + Offset.
type Viewport struct {
	OffsetX float64
	OffsetY float64
	Zoom    float64
}

// Button is the pressed pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Pointer carries the modifiers of a pointer-down event. Handle is set when
// the press landed on a resize handle of an already-selected object.
type Pointer struct {
	Button Button
	Shift  bool
	Handle bool
}

// CreateRequest is the object placement a creation-tool click asks for.
type CreateRequest struct {
	Type model.ObjectType
	X    float64
	Y    float64
}

// GeometryUpdate is the final committed geometry for one object after a
// drag or transform. Only the changed fields are meaningful.
type GeometryUpdate struct {
	ID     string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Resize bool
}

// UpResult is what a pointer release committed: the new selection after a
// marquee, or the final geometry of a drag/transform as one batch.
type UpResult struct {
	Selection []string
	Geometry  []GeometryUpdate
}

// KeyAction is a side effect a key press requests from the caller.
type KeyAction int

const (
	KeyNone KeyAction = iota
	KeyDeleteSelection
	KeyDuplicateSelection
	KeyCopySelection
	KeyPasteClipboard
	KeyOpenPrompt
)

type point struct{ x, y float64 }

// Session is one user's canvas interaction state for a board view. It is
// not safe for concurrent use; each connection owns its own session.
type Session struct {
	tool      Tool
	mode      Mode
	viewport  Viewport
	selection map[string]bool

	spaceHeld bool
	prevTool  Tool

	downAt      point
	pointerAt   point
	dragOrigins map[string]point
	resizeID    string
	resizeFrom  Rect

	clipboard  []model.BoardObject
	pasteCount int
}

// NewSession Session 생성. 기본 도구는 select, 줌 1.0.
func NewSession() *Session {
	return &Session{
		tool:      ToolSelect,
		viewport:  Viewport{Zoom: 1.0},
		selection: make(map[string]bool),
	}
}

func (s *Session) Tool() Tool         { return s.tool }
func (s *Session) Mode() Mode         { return s.mode }
func (s *Session) Viewport() Viewport { return s.viewport }

// Selection returns the selected object ids (unordered).
func (s *Session) Selection() []string {
	ids := make([]string, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	return ids
}

// Selected reports whether the object is in the current selection.
func (s *Session) Selected(id string) bool { return s.selection[id] }

// SetTool switches the active tool and leaves any transient mode.
func (s *Session) SetTool(tool Tool) {
	s.tool = tool
	s.mode = ModeIdle
}

// KeyDown routes a key press. Tool shortcuts switch tools; Escape resets to
// select and clears the selection; clipboard and delete keys return the
// action for the caller to perform against the store.
func (s *Session) KeyDown(key string, ctrlOrCmd bool) KeyAction {
	if ctrlOrCmd {
		switch key {
		case "d", "D":
			return KeyDuplicateSelection
		case "c", "C":
			return KeyCopySelection
		case "v", "V":
			return KeyPasteClipboard
		}
		return KeyNone
	}

	switch key {
	case "Escape":
		s.selection = make(map[string]bool)
		s.SetTool(ToolSelect)
		return KeyNone
	case "Delete", "Backspace":
		if len(s.selection) > 0 {
			return KeyDeleteSelection
		}
		return KeyNone
	case "/":
		return KeyOpenPrompt
	case " ":
		if !s.spaceHeld {
			s.spaceHeld = true
			s.prevTool = s.tool
		}
		return KeyNone
	}

	if tool, ok := ToolForKey(key); ok {
		s.SetTool(tool)
	}
	return KeyNone
}

// KeyUp ends a spacebar-hold pan and restores the previous tool.
func (s *Session) KeyUp(key string) {
	if key == " " && s.spaceHeld {
		s.spaceHeld = false
		s.tool = s.prevTool
		if s.mode == ModePanning {
			s.mode = ModeIdle
		}
	}
}

// PointerDown starts a gesture at world coordinates (x, y). With a creation
// tool it returns the object to create and snaps back to select. Otherwise
// it begins panning, dragging, transforming, or a marquee.
func (s *Session) PointerDown(objects []model.BoardObject, x, y float64, p Pointer) *CreateRequest {
	s.downAt = point{x, y}
	s.pointerAt = s.downAt

	if p.Button == ButtonMiddle || s.spaceHeld || s.tool == ToolHand {
		s.mode = ModePanning
		return nil
	}

	if s.tool.CreatesObject() {
		objType, _ := s.tool.ObjectType()
		req := &CreateRequest{Type: objType, X: x, Y: y}
		// 생성 클릭 후 자동으로 select로 복귀
		s.SetTool(ToolSelect)
		s.selection = make(map[string]bool)
		return req
	}

	hit, ok := hitTest(objects, x, y)
	if !ok {
		if p.Shift {
			s.mode = ModePanning
			return nil
		}
		s.selection = make(map[string]bool)
		s.mode = ModeMarquee
		return nil
	}

	if p.Handle && s.selection[hit.ID] {
		s.mode = ModeTransforming
		s.resizeID = hit.ID
		s.resizeFrom = BoundsOf(hit)
		return nil
	}

	if p.Shift {
		if s.selection[hit.ID] {
			delete(s.selection, hit.ID)
		} else {
			s.selection[hit.ID] = true
		}
	} else if !s.selection[hit.ID] {
		s.selection = map[string]bool{hit.ID: true}
	}

	s.mode = ModeDragging
	s.dragOrigins = make(map[string]point, len(s.selection))
	for _, obj := range objects {
		if s.selection[obj.ID] {
			s.dragOrigins[obj.ID] = point{obj.X, obj.Y}
		}
	}
	return nil
}

// PointerMove advances the active gesture. Panning moves the viewport;
// other modes only track the pointer until release commits the result.
func (s *Session) PointerMove(x, y float64) {
	dx, dy := x-s.pointerAt.x, y-s.pointerAt.y
	s.pointerAt = point{x, y}

	if s.mode == ModePanning {
		s.viewport.OffsetX += dx * s.viewport.Zoom
		s.viewport.OffsetY += dy * s.viewport.Zoom
	}
}

// PointerUp ends the gesture and returns what it committed.
func (s *Session) PointerUp(objects []model.BoardObject) UpResult {
	defer func() {
		s.mode = ModeIdle
		s.dragOrigins = nil
		s.resizeID = ""
	}()

	switch s.mode {
	case ModeMarquee:
		marquee := Rect{
			X:      s.downAt.x,
			Y:      s.downAt.y,
			Width:  s.pointerAt.x - s.downAt.x,
			Height: s.pointerAt.y - s.downAt.y,
		}
		ids := IntersectingIDs(objects, marquee)
		s.selection = make(map[string]bool, len(ids))
		for _, id := range ids {
			s.selection[id] = true
		}
		return UpResult{Selection: ids}

	case ModeDragging:
		dx := s.pointerAt.x - s.downAt.x
		dy := s.pointerAt.y - s.downAt.y
		if dx == 0 && dy == 0 {
			return UpResult{Selection: s.Selection()}
		}
		updates := make([]GeometryUpdate, 0, len(s.dragOrigins))
		for id, origin := range s.dragOrigins {
			updates = append(updates, GeometryUpdate{
				ID: id,
				X:  origin.x + dx,
				Y:  origin.y + dy,
			})
		}
		return UpResult{Selection: s.Selection(), Geometry: updates}

	case ModeTransforming:
		width := s.resizeFrom.Width + (s.pointerAt.x - s.downAt.x)
		height := s.resizeFrom.Height + (s.pointerAt.y - s.downAt.y)
		if width < minObjectSize {
			width = minObjectSize
		}
		if height < minObjectSize {
			height = minObjectSize
		}
		return UpResult{
			Selection: s.Selection(),
			Geometry: []GeometryUpdate{{
				ID:     s.resizeID,
				X:      s.resizeFrom.X,
				Y:      s.resizeFrom.Y,
				Width:  width,
				Height: height,
				Resize: true,
			}},
		}
	}

	return UpResult{Selection: s.Selection()}
}

// ZoomAt applies a zoom step anchored at screen point (px, py): the world
// point under the cursor stays fixed across the step. Zoom is clamped to
// [0.1, 5.0].
func (s *Session) ZoomAt(factor, px, py float64) {
	newZoom := s.viewport.Zoom * factor
	if newZoom < MinZoom {
		newZoom = MinZoom
	}
	if newZoom > MaxZoom {
		newZoom = MaxZoom
	}

	worldX := (px - s.viewport.OffsetX) / s.viewport.Zoom
	worldY := (py - s.viewport.OffsetY) / s.viewport.Zoom
	s.viewport.OffsetX = px - worldX*newZoom
	s.viewport.OffsetY = py - worldY*newZoom
	s.viewport.Zoom = newZoom
}

// Duplicate returns copies of the selected objects, each offset (+20, +20)
// from its source with id and ownership cleared for re-creation.
func (s *Session) Duplicate(objects []model.BoardObject) []model.BoardObject {
	return CopiesOf(objects, s.Selection(), duplicateOffset)
}

// Copy snapshots the selection into the clipboard and resets the paste run.
func (s *Session) Copy(objects []model.BoardObject) {
	s.clipboard = CopiesOf(objects, s.Selection(), 0)
	s.pasteCount = 0
}

// Paste returns clipboard copies with a cumulative offset, so repeated
// pastes cascade instead of stacking.
func (s *Session) Paste() []model.BoardObject {
	if len(s.clipboard) == 0 {
		return nil
	}
	s.pasteCount++
	offset := duplicateOffset * float64(s.pasteCount)

	out := make([]model.BoardObject, 0, len(s.clipboard))
	for _, obj := range s.clipboard {
		dup := obj
		dup.X += offset
		dup.Y += offset
		out = append(out, dup)
	}
	return out
}

// CopiesOf builds creation-ready copies of the named objects at an offset.
func CopiesOf(objects []model.BoardObject, ids []string, offset float64) []model.BoardObject {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	out := make([]model.BoardObject, 0, len(ids))
	for _, obj := range objects {
		if !want[obj.ID] {
			continue
		}
		dup := obj
		dup.ID = ""
		dup.CreatedBy = 0
		dup.X += offset
		dup.Y += offset
		out = append(out, dup)
	}
	return out
}

// hitTest returns the topmost object containing the point. Objects are
// assumed painted in slice order, so the scan runs back to front.
func hitTest(objects []model.BoardObject, x, y float64) (model.BoardObject, bool) {
	for i := len(objects) - 1; i >= 0; i-- {
		if BoundsOf(objects[i]).Contains(x, y) {
			return objects[i], true
		}
	}
	return model.BoardObject{}, false
}
