package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware JWT 인증 미들웨어
func AuthMiddleware(jwtManager *JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := extractToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			if err == ErrExpiredToken {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "token expired",
					"code":  "TOKEN_EXPIRED",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		// 사용자 정보를 컨텍스트에 저장
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("nickname", claims.Nickname)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// extractToken Authorization 헤더 > 쿠키 > 쿼리 파라미터 순으로 토큰 추출
// (WebSocket 연결은 헤더를 싣지 못하는 클라이언트가 있어 쿼리 허용)
func extractToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", errors.New("invalid authorization header format")
		}
		return parts[1], nil
	}

	if cookie := c.Cookies("access_token"); cookie != "" {
		return cookie, nil
	}

	if token := c.Query("token"); token != "" {
		return token, nil
	}

	return "", errors.New("missing authorization token")
}

// GetClaimsFromContext 컨텍스트에서 클레임 조회
func GetClaimsFromContext(c *fiber.Ctx) (*Claims, error) {
	claims, ok := c.Locals("claims").(*Claims)
	if !ok || claims == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
