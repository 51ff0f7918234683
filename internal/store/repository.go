package store

import (
	"context"

	"gorm.io/gorm"

	"collabboard-backend/internal/model"
)

// FieldUpdate is one partial update addressed by object id.
type FieldUpdate struct {
	ID     string
	Fields map[string]interface{}
}

// Repository persists board objects. The store owns the in-memory cache and
// fan-out; the repository only talks to durable storage.
type Repository interface {
	LoadBoard(ctx context.Context, boardID string) ([]model.BoardObject, error)
	Insert(ctx context.Context, obj *model.BoardObject) error
	InsertBatch(ctx context.Context, objs []*model.BoardObject) error
	UpdateFields(ctx context.Context, boardID, id string, fields map[string]interface{}) error
	UpdateFieldsBatch(ctx context.Context, boardID string, entries []FieldUpdate) error
	Delete(ctx context.Context, boardID, id string) error
	DeleteBatch(ctx context.Context, boardID string, ids []string) error
}

// fieldColumns wire field name -> DB column. Only named fields are written;
// anything else in an update map is dropped before it reaches the database.
var fieldColumns = map[string]string{
	"x":           "x",
	"y":           "y",
	"width":       "width",
	"height":      "height",
	"rotation":    "rotation",
	"text":        "text",
	"color":       "color",
	"fontSize":    "font_size",
	"strokeWidth": "stroke_width",
	"fromId":      "from_id",
	"toId":        "to_id",
	"points":      "points",
	"updatedAt":   "updated_at",
}

func toColumns(fields map[string]interface{}) map[string]interface{} {
	cols := make(map[string]interface{}, len(fields))
	for key, val := range fields {
		if col, ok := fieldColumns[key]; ok {
			cols[col] = val
		}
	}
	return cols
}

// GormRepository gorm/Postgres 기반 Repository 구현
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository GormRepository 생성
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) LoadBoard(ctx context.Context, boardID string) ([]model.BoardObject, error) {
	var objects []model.BoardObject
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Find(&objects).Error
	return objects, err
}

func (r *GormRepository) Insert(ctx context.Context, obj *model.BoardObject) error {
	return r.db.WithContext(ctx).Create(obj).Error
}

// InsertBatch writes all objects in one transaction so a fresh subscriber
// observes either all of them or none.
func (r *GormRepository) InsertBatch(ctx context.Context, objs []*model.BoardObject) error {
	if len(objs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, obj := range objs {
			if err := tx.Create(obj).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepository) UpdateFields(ctx context.Context, boardID, id string, fields map[string]interface{}) error {
	cols := toColumns(fields)
	if len(cols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.BoardObject{}).
		Where("board_id = ? AND id = ?", boardID, id).
		Updates(cols).Error
}

func (r *GormRepository) UpdateFieldsBatch(ctx context.Context, boardID string, entries []FieldUpdate) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			cols := toColumns(entry.Fields)
			if len(cols) == 0 {
				continue
			}
			if err := tx.Model(&model.BoardObject{}).
				Where("board_id = ? AND id = ?", boardID, entry.ID).
				Updates(cols).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepository) Delete(ctx context.Context, boardID, id string) error {
	return r.db.WithContext(ctx).
		Where("board_id = ? AND id = ?", boardID, id).
		Delete(&model.BoardObject{}).Error
}

func (r *GormRepository) DeleteBatch(ctx context.Context, boardID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("board_id = ? AND id IN ?", boardID, ids).
		Delete(&model.BoardObject{}).Error
}
