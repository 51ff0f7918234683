package handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"collabboard-backend/internal/auth"
	"collabboard-backend/internal/model"
)

var validate = validator.New()

// AuthHandler 인증 핸들러
type AuthHandler struct {
	db           *gorm.DB
	jwtManager   *auth.JWTManager
	googleAuth   *auth.GoogleAuthenticator
	secureCookie bool
}

// NewAuthHandler AuthHandler 생성
func NewAuthHandler(db *gorm.DB, jwtManager *auth.JWTManager, googleAuth *auth.GoogleAuthenticator, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		db:           db,
		jwtManager:   jwtManager,
		googleAuth:   googleAuth,
		secureCookie: secureCookie,
	}
}

// GoogleLoginRequest Google 로그인 요청
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// RegisterRequest 이메일 회원가입 요청
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Nickname string `json:"nickname" validate:"required,min=1,max=100"`
}

// LoginRequest 이메일 로그인 요청
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse 인증 응답
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
}

// UserResponse 사용자 응답
type UserResponse struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	Nickname   string  `json:"nickname"`
	ProfileImg *string `json:"profile_img,omitempty"`
	Provider   *string `json:"provider,omitempty"`
}

func toUserResponse(user model.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Nickname:   user.Nickname,
		ProfileImg: user.ProfileImg,
		Provider:   user.Provider,
	}
}

// GoogleLogin Google OAuth 로그인
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id_token is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	googleUser, err := h.googleAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid google token",
		})
	}

	// 사용자 조회 또는 생성
	var user model.User
	result := h.db.Where("email = ?", googleUser.Email).First(&user)

	provider := "google"
	if result.Error == gorm.ErrRecordNotFound {
		user = model.User{
			Email:      googleUser.Email,
			Nickname:   googleUser.Name,
			ProfileImg: &googleUser.Picture,
			Provider:   &provider,
			ProviderID: &googleUser.ID,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create user",
			})
		}
	} else if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "database error",
		})
	} else {
		user.ProfileImg = &googleUser.Picture
		// local → google 전환 시 provider 갱신
		if user.Provider == nil || *user.Provider != "google" {
			user.Provider = &provider
			user.ProviderID = &googleUser.ID
		}
		h.db.Save(&user)
	}

	return h.issueTokens(c, user)
}

// Register 이메일 회원가입
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email, password (8+ chars) and nickname are required",
		})
	}

	var existing model.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "email already registered",
		})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to hash password",
		})
	}

	provider := "local"
	user := model.User{
		Email:        req.Email,
		Nickname:     req.Nickname,
		Provider:     &provider,
		PasswordHash: &hash,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create user",
		})
	}

	return h.issueTokens(c, user)
}

// Login 이메일 로그인
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email and password are required",
		})
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid email or password",
		})
	}

	if user.PasswordHash == nil || !auth.CheckPassword(*user.PasswordHash, req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid email or password",
		})
	}

	return h.issueTokens(c, user)
}

// RefreshToken 리프레시 토큰으로 액세스 토큰 재발급
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing refresh token",
		})
	}

	userID, err := h.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid refresh token",
		})
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "user not found",
		})
	}

	return h.issueTokens(c, user)
}

// Logout 로그아웃 (쿠키 제거)
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: "Lax",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{"success": true})
}

// GetMe 현재 사용자 조회
func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "user not found",
		})
	}

	return c.JSON(fiber.Map{"user": toUserResponse(user)})
}

// issueTokens 액세스/리프레시 토큰 발급 및 쿠키 설정
func (h *AuthHandler) issueTokens(c *fiber.Ctx, user model.User) error {
	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Nickname)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate token",
		})
	}

	refreshToken, err := h.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate refresh token",
		})
	}

	// HTTP-Only 쿠키로 토큰 설정
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: "Lax",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  time.Now().Add(time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: "Lax",
	})

	return c.JSON(AuthResponse{
		User:        toUserResponse(user),
		AccessToken: accessToken,
		ExpiresIn:   3600,
	})
}
