package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"collabboard-backend/internal/auth"
	"collabboard-backend/internal/model"
)

// BoardHandler 보드 핸들러
type BoardHandler struct {
	db *gorm.DB
}

// NewBoardHandler BoardHandler 생성
func NewBoardHandler(db *gorm.DB) *BoardHandler {
	return &BoardHandler{db: db}
}

// CreateBoardRequest 보드 생성 요청
type CreateBoardRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// CreateBoard 보드 생성 (생성자는 자동으로 멤버)
func (h *BoardHandler) CreateBoard(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req CreateBoardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	board := model.Board{
		ID:        uuid.NewString(),
		Title:     req.Title,
		CreatedBy: claims.UserID,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&board).Error; err != nil {
			return err
		}
		return tx.Create(&model.BoardMember{
			BoardID: board.ID,
			UserID:  claims.UserID,
		}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create board"})
	}

	return c.Status(fiber.StatusCreated).JSON(board)
}

// GetMyBoards 내가 속한 보드 목록
func (h *BoardHandler) GetMyBoards(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var boards []model.Board
	err = h.db.
		Joins("JOIN board_members ON board_members.board_id = boards.id").
		Where("board_members.user_id = ?", claims.UserID).
		Order("boards.updated_at DESC").
		Find(&boards).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch boards"})
	}

	return c.JSON(fiber.Map{"boards": boards})
}

// GetBoard 보드 단건 조회 (멤버 목록 포함)
func (h *BoardHandler) GetBoard(c *fiber.Ctx) error {
	boardID := c.Params("id")

	var board model.Board
	err := h.db.Preload("Members").Preload("Members.User").First(&board, "id = ?", boardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "board not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}

	return c.JSON(board)
}

// JoinBoard 보드 참가 (멱등: 이미 멤버면 성공 응답)
func (h *BoardHandler) JoinBoard(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	boardID := c.Params("id")

	var board model.Board
	if err := h.db.First(&board, "id = ?", boardID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "board not found"})
	}

	var existing model.BoardMember
	err = h.db.Where("board_id = ? AND user_id = ?", boardID, claims.UserID).First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{"success": true, "board": board})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
	}

	member := model.BoardMember{BoardID: boardID, UserID: claims.UserID}
	if err := h.db.Create(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to join board"})
	}

	return c.JSON(fiber.Map{"success": true, "board": board})
}
