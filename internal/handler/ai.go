package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"collabboard-backend/internal/ai"
	"collabboard-backend/internal/auth"
	"collabboard-backend/internal/middleware"
	"collabboard-backend/internal/model"
	"collabboard-backend/internal/store"
)

// AIHandler 자연어 보드 명령 핸들러
type AIHandler struct {
	client   *ai.Client
	executor *ai.Executor
	store    *store.Store
	boardMw  *middleware.BoardMiddleware
}

// NewAIHandler AIHandler 생성
func NewAIHandler(client *ai.Client, executor *ai.Executor, s *store.Store, boardMw *middleware.BoardMiddleware) *AIHandler {
	return &AIHandler{
		client:   client,
		executor: executor,
		store:    s,
		boardMw:  boardMw,
	}
}

// AICommandRequest 자연어 명령 요청
type AICommandRequest struct {
	BoardID    string              `json:"boardId" validate:"required"`
	Prompt     string              `json:"prompt" validate:"required,min=1,max=2000"`
	BoardState []model.BoardObject `json:"boardState"`
}

// Command 자연어 명령을 보드 액션 시퀀스로 변환 후 실행
func (h *AIHandler) Command(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "unauthorized"})
	}

	if h.client == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"detail": "AI commands are not configured"})
	}

	var req AICommandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "boardId and prompt are required"})
	}

	if !h.boardMw.IsBoardMember(req.BoardID, claims.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "not a board member"})
	}

	// 클라이언트가 스냅샷을 생략하면 서버 측 캐시로 대체
	boardState := req.BoardState
	if boardState == nil {
		boardState, err = h.store.Objects(c.Context(), req.BoardID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "failed to load board state"})
		}
	}

	result, err := h.client.Command(c.Context(), req.Prompt, boardState)
	if err != nil {
		log.Printf("[Board %s] AI command failed: %v", req.BoardID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "AI command failed: " + err.Error(),
		})
	}

	execResult, err := h.executor.Apply(c.Context(), req.BoardID, claims.UserID, result.Actions)
	if err != nil {
		// 이미 적용된 배치는 롤백하지 않는다
		log.Printf("[Board %s] AI action execution failed: %v", req.BoardID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "failed to apply AI actions: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": result.Message,
		"actions": result.Actions,
		"applied": execResult,
	})
}
