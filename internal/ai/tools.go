package ai

import (
	"errors"
	"fmt"

	"collabboard-backend/internal/model"
)

// ActionName is one of the ten callable board actions exposed to the model.
// The catalogue is closed; anything else in a response is rejected at decode.
type ActionName string

const (
	ActionCreateStickyNote ActionName = "createStickyNote"
	ActionCreateShape      ActionName = "createShape"
	ActionCreateFrame      ActionName = "createFrame"
	ActionCreateText       ActionName = "createText"
	ActionCreateConnector  ActionName = "createConnector"
	ActionMoveObject       ActionName = "moveObject"
	ActionResizeObject     ActionName = "resizeObject"
	ActionUpdateText       ActionName = "updateText"
	ActionChangeColor      ActionName = "changeColor"
	ActionDeleteObject     ActionName = "deleteObject"
)

// Valid 액션 이름이 카탈로그에 속하는지 확인
func (a ActionName) Valid() bool {
	switch a {
	case ActionCreateStickyNote, ActionCreateShape, ActionCreateFrame,
		ActionCreateText, ActionCreateConnector, ActionMoveObject,
		ActionResizeObject, ActionUpdateText, ActionChangeColor,
		ActionDeleteObject:
		return true
	}
	return false
}

// Action is one model-requested board mutation, as returned to clients.
type Action struct {
	Name   ActionName             `json:"action"`
	Params map[string]interface{} `json:"params"`
}

// Mutation is a decoded, validated action ready for execution. Exactly one
// of Create, Update, DeleteID is set.
type Mutation struct {
	Create   *model.BoardObject
	Update   *FieldPatch
	DeleteID string
}

// FieldPatch targets an existing object with a partial field merge.
type FieldPatch struct {
	ObjectID string
	Fields   map[string]interface{}
}

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingParam  = errors.New("missing required parameter")
)

// Decode validates an action against the catalogue and produces the
// mutation it requests. Optional parameters absent from the params map are
// left for the sync layer's defaulting.
func Decode(action Action) (Mutation, error) {
	p := params(action.Params)

	switch action.Name {
	case ActionCreateStickyNote:
		text, ok1 := p.str("text")
		x, ok2 := p.num("x")
		y, ok3 := p.num("y")
		if !ok1 || !ok2 || !ok3 {
			return Mutation{}, fmt.Errorf("%w: createStickyNote needs text, x, y", ErrMissingParam)
		}
		obj := &model.BoardObject{Type: model.ObjectStickyNote, Text: text, X: x, Y: y}
		obj.Color, _ = p.str("color")
		obj.Width, _ = p.num("width")
		obj.Height, _ = p.num("height")
		return Mutation{Create: obj}, nil

	case ActionCreateShape:
		shape, ok1 := p.str("type")
		x, ok2 := p.num("x")
		y, ok3 := p.num("y")
		width, ok4 := p.num("width")
		height, ok5 := p.num("height")
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return Mutation{}, fmt.Errorf("%w: createShape needs type, x, y, width, height", ErrMissingParam)
		}
		objType := model.ObjectType(shape)
		if objType != model.ObjectRectangle && objType != model.ObjectCircle {
			return Mutation{}, fmt.Errorf("createShape: unsupported shape type %q", shape)
		}
		obj := &model.BoardObject{Type: objType, X: x, Y: y, Width: width, Height: height}
		obj.Color, _ = p.str("color")
		return Mutation{Create: obj}, nil

	case ActionCreateFrame:
		title, ok1 := p.str("title")
		x, ok2 := p.num("x")
		y, ok3 := p.num("y")
		width, ok4 := p.num("width")
		height, ok5 := p.num("height")
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return Mutation{}, fmt.Errorf("%w: createFrame needs title, x, y, width, height", ErrMissingParam)
		}
		obj := &model.BoardObject{Type: model.ObjectFrame, Text: title, X: x, Y: y, Width: width, Height: height}
		obj.Color, _ = p.str("color")
		return Mutation{Create: obj}, nil

	case ActionCreateText:
		text, ok1 := p.str("text")
		x, ok2 := p.num("x")
		y, ok3 := p.num("y")
		if !ok1 || !ok2 || !ok3 {
			return Mutation{}, fmt.Errorf("%w: createText needs text, x, y", ErrMissingParam)
		}
		obj := &model.BoardObject{Type: model.ObjectText, Text: text, X: x, Y: y}
		obj.FontSize, _ = p.num("fontSize")
		obj.Color, _ = p.str("color")
		return Mutation{Create: obj}, nil

	case ActionCreateConnector:
		fromID, ok1 := p.str("fromId")
		toID, ok2 := p.str("toId")
		if !ok1 || !ok2 {
			return Mutation{}, fmt.Errorf("%w: createConnector needs fromId, toId", ErrMissingParam)
		}
		obj := &model.BoardObject{Type: model.ObjectConnector, FromID: fromID, ToID: toID}
		obj.Color, _ = p.str("color")
		return Mutation{Create: obj}, nil

	case ActionMoveObject:
		id, ok1 := p.str("objectId")
		x, ok2 := p.num("x")
		y, ok3 := p.num("y")
		if !ok1 || !ok2 || !ok3 {
			return Mutation{}, fmt.Errorf("%w: moveObject needs objectId, x, y", ErrMissingParam)
		}
		return Mutation{Update: &FieldPatch{
			ObjectID: id,
			Fields:   map[string]interface{}{"x": x, "y": y},
		}}, nil

	case ActionResizeObject:
		id, ok1 := p.str("objectId")
		width, ok2 := p.num("width")
		height, ok3 := p.num("height")
		if !ok1 || !ok2 || !ok3 {
			return Mutation{}, fmt.Errorf("%w: resizeObject needs objectId, width, height", ErrMissingParam)
		}
		return Mutation{Update: &FieldPatch{
			ObjectID: id,
			Fields:   map[string]interface{}{"width": width, "height": height},
		}}, nil

	case ActionUpdateText:
		id, ok1 := p.str("objectId")
		text, ok2 := p.str("newText")
		if !ok1 || !ok2 {
			return Mutation{}, fmt.Errorf("%w: updateText needs objectId, newText", ErrMissingParam)
		}
		return Mutation{Update: &FieldPatch{
			ObjectID: id,
			Fields:   map[string]interface{}{"text": text},
		}}, nil

	case ActionChangeColor:
		id, ok1 := p.str("objectId")
		color, ok2 := p.str("color")
		if !ok1 || !ok2 {
			return Mutation{}, fmt.Errorf("%w: changeColor needs objectId, color", ErrMissingParam)
		}
		return Mutation{Update: &FieldPatch{
			ObjectID: id,
			Fields:   map[string]interface{}{"color": color},
		}}, nil

	case ActionDeleteObject:
		id, ok := p.str("objectId")
		if !ok {
			return Mutation{}, fmt.Errorf("%w: deleteObject needs objectId", ErrMissingParam)
		}
		return Mutation{DeleteID: id}, nil
	}

	return Mutation{}, fmt.Errorf("%w: %q", ErrUnknownAction, action.Name)
}

type params map[string]interface{}

func (p params) str(key string) (string, bool) {
	val, ok := p[key].(string)
	return val, ok && val != ""
}

func (p params) num(key string) (float64, bool) {
	switch val := p[key].(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	}
	return 0, false
}
