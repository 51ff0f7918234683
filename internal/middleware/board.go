package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"collabboard-backend/internal/auth"
	"collabboard-backend/internal/model"
)

// BoardMiddleware 보드 권한 미들웨어
type BoardMiddleware struct {
	db *gorm.DB
}

// NewBoardMiddleware BoardMiddleware 생성
func NewBoardMiddleware(db *gorm.DB) *BoardMiddleware {
	return &BoardMiddleware{db: db}
}

// getBoardIDFromContext URL에서 보드 ID 추출
func getBoardIDFromContext(c *fiber.Ctx) string {
	if id := c.Params("boardId"); id != "" {
		return id
	}
	return c.Params("id")
}

// IsBoardMember 보드 멤버 여부 확인
func (m *BoardMiddleware) IsBoardMember(boardID string, userID int64) bool {
	var count int64
	m.db.Model(&model.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Count(&count)
	return count > 0
}

// RequireMembership 보드 멤버 필수
func (m *BoardMiddleware) RequireMembership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := auth.GetClaimsFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		boardID := getBoardIDFromContext(c)
		if boardID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "board ID is required",
			})
		}

		if !m.IsBoardMember(boardID, claims.UserID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "not a board member",
			})
		}

		c.Locals("boardID", boardID)
		return c.Next()
	}
}
