package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard-backend/internal/model"
)

func TestDecodeCreateStickyNote(t *testing.T) {
	mutation, err := Decode(Action{
		Name: ActionCreateStickyNote,
		Params: map[string]interface{}{
			"text":  "idea",
			"x":     100.0,
			"y":     -50.0,
			"color": "#FF9800",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, mutation.Create)
	assert.Equal(t, model.ObjectStickyNote, mutation.Create.Type)
	assert.Equal(t, "idea", mutation.Create.Text)
	assert.Equal(t, 100.0, mutation.Create.X)
	assert.Equal(t, -50.0, mutation.Create.Y)
	assert.Equal(t, "#FF9800", mutation.Create.Color)
}

func TestDecodeCreateShapeValidatesType(t *testing.T) {
	_, err := Decode(Action{
		Name: ActionCreateShape,
		Params: map[string]interface{}{
			"type": "hexagon", "x": 0.0, "y": 0.0, "width": 100.0, "height": 100.0,
		},
	})
	assert.Error(t, err)

	mutation, err := Decode(Action{
		Name: ActionCreateShape,
		Params: map[string]interface{}{
			"type": "circle", "x": 10.0, "y": 20.0, "width": 100.0, "height": 100.0,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ObjectCircle, mutation.Create.Type)
}

func TestDecodeCreateFrameUsesTitleAsText(t *testing.T) {
	mutation, err := Decode(Action{
		Name: ActionCreateFrame,
		Params: map[string]interface{}{
			"title": "Strengths", "x": 0.0, "y": 0.0, "width": 400.0, "height": 300.0,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ObjectFrame, mutation.Create.Type)
	assert.Equal(t, "Strengths", mutation.Create.Text)
}

func TestDecodeMoveObject(t *testing.T) {
	mutation, err := Decode(Action{
		Name: ActionMoveObject,
		Params: map[string]interface{}{
			"objectId": "obj-1", "x": 5.0, "y": 7.0,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, mutation.Update)
	assert.Equal(t, "obj-1", mutation.Update.ObjectID)
	assert.Equal(t, map[string]interface{}{"x": 5.0, "y": 7.0}, mutation.Update.Fields)
}

func TestDecodeUpdateText(t *testing.T) {
	mutation, err := Decode(Action{
		Name: ActionUpdateText,
		Params: map[string]interface{}{
			"objectId": "obj-1", "newText": "renamed",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"text": "renamed"}, mutation.Update.Fields)
}

func TestDecodeDeleteObject(t *testing.T) {
	mutation, err := Decode(Action{
		Name:   ActionDeleteObject,
		Params: map[string]interface{}{"objectId": "obj-9"},
	})
	require.NoError(t, err)
	assert.Equal(t, "obj-9", mutation.DeleteID)
}

func TestDecodeMissingParams(t *testing.T) {
	_, err := Decode(Action{
		Name:   ActionCreateStickyNote,
		Params: map[string]interface{}{"text": "no position"},
	})
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = Decode(Action{
		Name:   ActionResizeObject,
		Params: map[string]interface{}{"objectId": "obj-1", "width": 10.0},
	})
	assert.ErrorIs(t, err, ErrMissingParam)
}

func TestDecodeUnknownAction(t *testing.T) {
	_, err := Decode(Action{Name: "explodeBoard", Params: map[string]interface{}{}})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.False(t, ActionName("explodeBoard").Valid())
	assert.True(t, ActionCreateConnector.Valid())
}

func TestCatalogueIsClosed(t *testing.T) {
	require.Len(t, boardTools, 10)
	for _, tool := range boardTools {
		assert.True(t, ActionName(tool.Name).Valid(), tool.Name)
	}
}
