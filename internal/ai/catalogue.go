package ai

// toolSchema is one entry of the tool catalogue sent to the model.
type toolSchema struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

func prop(typ, desc string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": desc}
}

func schema(properties map[string]interface{}, required ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// boardTools is the fixed ten-action catalogue. The model may only request
// these; Decode rejects anything else.
var boardTools = []toolSchema{
	{
		Name:        string(ActionCreateStickyNote),
		Description: "Create a sticky note on the board. Use this for adding notes, ideas, or labeled items.",
		InputSchema: schema(map[string]interface{}{
			"text":   prop("string", "Text content of the sticky note"),
			"x":      prop("number", "X position on the board"),
			"y":      prop("number", "Y position on the board"),
			"color":  prop("string", "Color of the sticky note (hex). Common colors: #FFEB3B (yellow), #FF9800 (orange), #E91E63 (pink), #9C27B0 (purple), #3F51B5 (indigo), #03A9F4 (light blue), #009688 (teal), #4CAF50 (green)"),
			"width":  prop("number", "Width of the sticky note (default 200)"),
			"height": prop("number", "Height of the sticky note (default 200)"),
		}, "text", "x", "y"),
	},
	{
		Name:        string(ActionCreateShape),
		Description: "Create a shape (rectangle or circle) on the board.",
		InputSchema: schema(map[string]interface{}{
			"type": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"rectangle", "circle"},
				"description": "Shape type",
			},
			"x":      prop("number", "X position"),
			"y":      prop("number", "Y position"),
			"width":  prop("number", "Width of the shape"),
			"height": prop("number", "Height of the shape"),
			"color":  prop("string", "Fill color (hex)"),
		}, "type", "x", "y", "width", "height"),
	},
	{
		Name:        string(ActionCreateFrame),
		Description: "Create a frame to group and organize content areas on the board.",
		InputSchema: schema(map[string]interface{}{
			"title":  prop("string", "Frame title/label"),
			"x":      prop("number", "X position"),
			"y":      prop("number", "Y position"),
			"width":  prop("number", "Width of the frame"),
			"height": prop("number", "Height of the frame"),
			"color":  prop("string", "Frame border color (hex)"),
		}, "title", "x", "y", "width", "height"),
	},
	{
		Name:        string(ActionCreateText),
		Description: "Create a standalone text element on the board.",
		InputSchema: schema(map[string]interface{}{
			"text":     prop("string", "The text content"),
			"x":        prop("number", "X position"),
			"y":        prop("number", "Y position"),
			"fontSize": prop("number", "Font size (default 20)"),
			"color":    prop("string", "Text color (hex)"),
		}, "text", "x", "y"),
	},
	{
		Name:        string(ActionCreateConnector),
		Description: "Create an arrow/line connecting two objects.",
		InputSchema: schema(map[string]interface{}{
			"fromId": prop("string", "ID of the source object"),
			"toId":   prop("string", "ID of the target object"),
			"color":  prop("string", "Connector color (hex)"),
		}, "fromId", "toId"),
	},
	{
		Name:        string(ActionMoveObject),
		Description: "Move an existing object to a new position.",
		InputSchema: schema(map[string]interface{}{
			"objectId": prop("string", "ID of the object to move"),
			"x":        prop("number", "New X position"),
			"y":        prop("number", "New Y position"),
		}, "objectId", "x", "y"),
	},
	{
		Name:        string(ActionResizeObject),
		Description: "Resize an existing object.",
		InputSchema: schema(map[string]interface{}{
			"objectId": prop("string", "ID of the object to resize"),
			"width":    prop("number", "New width"),
			"height":   prop("number", "New height"),
		}, "objectId", "width", "height"),
	},
	{
		Name:        string(ActionUpdateText),
		Description: "Update the text content of an existing object.",
		InputSchema: schema(map[string]interface{}{
			"objectId": prop("string", "ID of the object"),
			"newText":  prop("string", "New text content"),
		}, "objectId", "newText"),
	},
	{
		Name:        string(ActionChangeColor),
		Description: "Change the color of an existing object.",
		InputSchema: schema(map[string]interface{}{
			"objectId": prop("string", "ID of the object"),
			"color":    prop("string", "New color (hex)"),
		}, "objectId", "color"),
	},
	{
		Name:        string(ActionDeleteObject),
		Description: "Delete an object from the board.",
		InputSchema: schema(map[string]interface{}{
			"objectId": prop("string", "ID of the object to delete"),
		}, "objectId"),
	},
}
