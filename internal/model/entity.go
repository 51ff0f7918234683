package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User 사용자
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Nickname     string    `gorm:"type:varchar(100);not null" json:"nickname"`
	ProfileImg   *string   `gorm:"type:text" json:"profile_img,omitempty"`
	Provider     *string   `gorm:"type:varchar(50)" json:"provider,omitempty"`
	ProviderID   *string   `gorm:"type:varchar(255)" json:"provider_id,omitempty"`
	PasswordHash *string   `gorm:"type:varchar(255)" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Boards []BoardMember `gorm:"foreignKey:UserID" json:"boards,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Board 보드
type Board struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	CreatedBy int64     `gorm:"not null" json:"createdBy"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	Creator User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Members []BoardMember `gorm:"foreignKey:BoardID" json:"members,omitempty"`
}

func (Board) TableName() string {
	return "boards"
}

// BoardMember 보드 멤버십 (join-by-id로 증가)
type BoardMember struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BoardID  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_board_user" json:"boardId"`
	UserID   int64     `gorm:"not null;uniqueIndex:idx_board_user" json:"userId"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`

	// Relations
	Board Board `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (BoardMember) TableName() string {
	return "board_members"
}

// Points 선/화살표 기하 정보 (x,y 쌍의 평탄화 배열, jsonb 저장)
type Points []float64

func (p Points) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *Points) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	}
	return fmt.Errorf("unsupported points value type %T", value)
}

// BoardObject 보드 위의 단일 객체 (도형, 노트, 텍스트, 커넥터)
type BoardObject struct {
	ID          string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	BoardID     string     `gorm:"type:varchar(64);not null;index" json:"boardId"`
	Type        ObjectType `gorm:"type:varchar(20);not null" json:"type"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Rotation    float64    `json:"rotation"`
	Text        string     `gorm:"type:text" json:"text,omitempty"`
	Color       string     `gorm:"type:varchar(30)" json:"color"`
	FontSize    float64    `json:"fontSize,omitempty"`
	StrokeWidth float64    `json:"strokeWidth,omitempty"`
	FromID      string     `gorm:"type:varchar(64)" json:"fromId,omitempty"`
	ToID        string     `gorm:"type:varchar(64)" json:"toId,omitempty"`
	Points      Points     `gorm:"type:jsonb" json:"points,omitempty"`
	CreatedBy   int64      `gorm:"not null" json:"createdBy"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (BoardObject) TableName() string {
	return "board_objects"
}

// ApplyUpdate merges named fields into the object. Fields not mentioned are
// untouched (partial merge, not a replace). Unknown field names are ignored.
func ApplyUpdate(o *BoardObject, fields map[string]interface{}) {
	for key, val := range fields {
		switch key {
		case "x":
			if f, ok := toFloat(val); ok {
				o.X = f
			}
		case "y":
			if f, ok := toFloat(val); ok {
				o.Y = f
			}
		case "width":
			if f, ok := toFloat(val); ok {
				o.Width = f
			}
		case "height":
			if f, ok := toFloat(val); ok {
				o.Height = f
			}
		case "rotation":
			if f, ok := toFloat(val); ok {
				o.Rotation = f
			}
		case "text":
			if s, ok := val.(string); ok {
				o.Text = s
			}
		case "color":
			if s, ok := val.(string); ok {
				o.Color = s
			}
		case "fontSize":
			if f, ok := toFloat(val); ok {
				o.FontSize = f
			}
		case "strokeWidth":
			if f, ok := toFloat(val); ok {
				o.StrokeWidth = f
			}
		case "fromId":
			if s, ok := val.(string); ok {
				o.FromID = s
			}
		case "toId":
			if s, ok := val.(string); ok {
				o.ToID = s
			}
		case "points":
			if pts, ok := ToPoints(val); ok {
				o.Points = pts
			}
		case "updatedAt":
			if t, ok := val.(time.Time); ok {
				o.UpdatedAt = t
			}
		}
	}
}

func toFloat(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// ToPoints converts a points value into Points. JSON-decoded input arrives
// as []interface{}, not []float64, so callers validating points must coerce
// through here first.
func ToPoints(val interface{}) (Points, bool) {
	switch v := val.(type) {
	case Points:
		return v, true
	case []float64:
		return Points(v), true
	case []interface{}:
		pts := make(Points, 0, len(v))
		for _, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			pts = append(pts, f)
		}
		return pts, true
	}
	return nil, false
}
