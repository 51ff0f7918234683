package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"collabboard-backend/internal/auth"
	"collabboard-backend/internal/canvas"
	"collabboard-backend/internal/model"
	"collabboard-backend/internal/store"
)

// ObjectHandler 보드 객체 핸들러
type ObjectHandler struct {
	store *store.Store
}

// NewObjectHandler ObjectHandler 생성
func NewObjectHandler(s *store.Store) *ObjectHandler {
	return &ObjectHandler{store: s}
}

func objectError(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrInvalidObjectType) || errors.Is(err, store.ErrOddPoints) || errors.Is(err, store.ErrInvalidPoints) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "write failed"})
}

// GetObjects 보드 객체 전체 조회
func (h *ObjectHandler) GetObjects(c *fiber.Ctx) error {
	boardID := c.Params("boardId")

	objects, err := h.store.Objects(c.Context(), boardID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load objects"})
	}

	return c.JSON(fiber.Map{"objects": objects})
}

// CreateObject 객체 생성
func (h *ObjectHandler) CreateObject(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	boardID := c.Params("boardId")

	var partial model.BoardObject
	if err := c.BodyParser(&partial); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	id, err := h.store.Create(c.Context(), boardID, partial, claims.UserID)
	if err != nil {
		return objectError(c, err)
	}

	obj, _ := h.store.Get(boardID, id)
	return c.Status(fiber.StatusCreated).JSON(obj)
}

// BulkCreateRequest 객체 일괄 생성 요청
type BulkCreateRequest struct {
	Objects []model.BoardObject `json:"objects" validate:"required,min=1,max=100"`
}

// CreateObjectsBulk 객체 일괄 생성 (원자적)
func (h *ObjectHandler) CreateObjectsBulk(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	boardID := c.Params("boardId")

	var req BulkCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "objects must contain 1-100 entries"})
	}

	ids, err := h.store.CreateMany(c.Context(), boardID, req.Objects, claims.UserID)
	if err != nil {
		return objectError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ids": ids})
}

// UpdateObject 객체 부분 수정 (명시된 필드만 병합)
func (h *ObjectHandler) UpdateObject(c *fiber.Ctx) error {
	boardID := c.Params("boardId")
	objectID := c.Params("objectId")

	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(fields) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no fields to update"})
	}

	if err := h.store.Update(c.Context(), boardID, objectID, fields); err != nil {
		return objectError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// BulkUpdateRequest 객체 일괄 수정 요청
type BulkUpdateRequest struct {
	Updates []struct {
		ID     string                 `json:"id" validate:"required"`
		Fields map[string]interface{} `json:"fields" validate:"required"`
	} `json:"updates" validate:"required,min=1,max=100,dive"`
}

// UpdateObjectsBulk 객체 일괄 수정 (원자적)
func (h *ObjectHandler) UpdateObjectsBulk(c *fiber.Ctx) error {
	boardID := c.Params("boardId")

	var req BulkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "updates must contain 1-100 entries with id and fields"})
	}

	entries := make([]store.FieldUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		entries = append(entries, store.FieldUpdate{ID: u.ID, Fields: u.Fields})
	}

	if err := h.store.UpdateMany(c.Context(), boardID, entries); err != nil {
		return objectError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteObject 객체 삭제
func (h *ObjectHandler) DeleteObject(c *fiber.Ctx) error {
	boardID := c.Params("boardId")
	objectID := c.Params("objectId")

	if err := h.store.Delete(c.Context(), boardID, objectID); err != nil {
		return objectError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// BulkDeleteRequest 객체 일괄 삭제 요청
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100"`
}

// DeleteObjectsBulk 객체 일괄 삭제 (원자적)
func (h *ObjectHandler) DeleteObjectsBulk(c *fiber.Ctx) error {
	boardID := c.Params("boardId")

	var req BulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ids must contain 1-100 entries"})
	}

	if err := h.store.DeleteMany(c.Context(), boardID, req.IDs); err != nil {
		return objectError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// DuplicateRequest 선택 객체 복제 요청
type DuplicateRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100"`
}

// DuplicateObjects 선택된 객체를 (+20, +20) 오프셋으로 복제
func (h *ObjectHandler) DuplicateObjects(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	boardID := c.Params("boardId")

	var req DuplicateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ids must contain 1-100 entries"})
	}

	objects, err := h.store.Objects(c.Context(), boardID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load objects"})
	}

	copies := canvas.CopiesOf(objects, req.IDs, 20)
	if len(copies) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no matching objects"})
	}

	ids, err := h.store.CreateMany(c.Context(), boardID, copies, claims.UserID)
	if err != nil {
		return objectError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ids": ids})
}

// MarqueeRequest 마키 선택 요청 (월드 좌표 사각형)
type MarqueeRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MarqueeSelect 마키 사각형과 교차하는 객체 id 목록 반환
func (h *ObjectHandler) MarqueeSelect(c *fiber.Ctx) error {
	boardID := c.Params("boardId")

	var req MarqueeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	objects, err := h.store.Objects(c.Context(), boardID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load objects"})
	}

	ids := canvas.IntersectingIDs(objects, canvas.Rect{
		X: req.X, Y: req.Y, Width: req.Width, Height: req.Height,
	})

	return c.JSON(fiber.Map{"ids": ids})
}
