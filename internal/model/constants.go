package model

// ObjectType 객체 타입
type ObjectType string

const (
	ObjectStickyNote ObjectType = "sticky-note"
	ObjectRectangle  ObjectType = "rectangle"
	ObjectCircle     ObjectType = "circle"
	ObjectLine       ObjectType = "line"
	ObjectArrow      ObjectType = "arrow"
	ObjectText       ObjectType = "text"
	ObjectFrame      ObjectType = "frame"
	ObjectConnector  ObjectType = "connector" // legacy
)

// String 메서드
func (t ObjectType) String() string {
	return string(t)
}

// Valid reports whether t is one of the closed set of object types.
func (t ObjectType) Valid() bool {
	switch t {
	case ObjectStickyNote, ObjectRectangle, ObjectCircle, ObjectLine,
		ObjectArrow, ObjectText, ObjectFrame, ObjectConnector:
		return true
	}
	return false
}

// 생성 시 생략된 필드에 적용되는 기본값
const (
	DefaultObjectWidth  = 200.0
	DefaultObjectHeight = 200.0
	DefaultFontSize     = 16.0
)

// defaultColors 타입별 기본 색상
var defaultColors = map[ObjectType]string{
	ObjectStickyNote: "#FFEB3B",
	ObjectRectangle:  "#3F51B5",
	ObjectCircle:     "#009688",
	ObjectLine:       "#333333",
	ObjectArrow:      "#333333",
	ObjectText:       "#333333",
	ObjectFrame:      "#9E9E9E",
	ObjectConnector:  "#757575",
}

// DefaultColor returns the fill color used when a create omits one.
func DefaultColor(t ObjectType) string {
	if c, ok := defaultColors[t]; ok {
		return c
	}
	return "#333333"
}

// userPalette 커서/프레즌스 사용자 색상 팔레트
var userPalette = []string{
	"#E91E63", // pink
	"#9C27B0", // purple
	"#3F51B5", // indigo
	"#03A9F4", // light blue
	"#009688", // teal
	"#4CAF50", // green
	"#FF9800", // orange
	"#795548", // brown
}

// UserColor maps a user id deterministically into the fixed palette.
// Same id always yields the same color, no stored state.
func UserColor(uid string) string {
	var hash uint32
	for _, ch := range uid {
		hash = hash*31 + uint32(ch)
	}
	return userPalette[int(hash%uint32(len(userPalette)))]
}
