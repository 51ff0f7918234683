package canvas

import "collabboard-backend/internal/model"

// Tool is the active canvas tool. Select manipulates existing objects, Hand
// pans the viewport, and the rest each create one object type on click.
type Tool int

const (
	ToolSelect Tool = iota
	ToolHand
	ToolStickyNote
	ToolRectangle
	ToolCircle
	ToolLine
	ToolText
	ToolArrow
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolHand:
		return "hand"
	case ToolStickyNote:
		return "sticky-note"
	case ToolRectangle:
		return "rectangle"
	case ToolCircle:
		return "circle"
	case ToolLine:
		return "line"
	case ToolText:
		return "text"
	case ToolArrow:
		return "arrow"
	default:
		return "unknown"
	}
}

// CreatesObject reports whether the tool places a new object on click.
func (t Tool) CreatesObject() bool {
	return t != ToolSelect && t != ToolHand
}

// ObjectType maps a creation tool to the object type it places.
func (t Tool) ObjectType() (model.ObjectType, bool) {
	switch t {
	case ToolStickyNote:
		return model.ObjectStickyNote, true
	case ToolRectangle:
		return model.ObjectRectangle, true
	case ToolCircle:
		return model.ObjectCircle, true
	case ToolLine:
		return model.ObjectLine, true
	case ToolText:
		return model.ObjectText, true
	case ToolArrow:
		return model.ObjectArrow, true
	}
	return "", false
}

// ToolForKey resolves a single-key shortcut to a tool. Callers suppress
// shortcuts while text editing is active.
func ToolForKey(key string) (Tool, bool) {
	switch key {
	case "v", "V":
		return ToolSelect, true
	case "h", "H":
		return ToolHand, true
	case "n", "N":
		return ToolStickyNote, true
	case "r", "R":
		return ToolRectangle, true
	case "c", "C":
		return ToolCircle, true
	case "l", "L":
		return ToolLine, true
	case "t", "T":
		return ToolText, true
	case "a", "A":
		return ToolArrow, true
	}
	return ToolSelect, false
}
