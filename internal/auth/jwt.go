package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const tokenIssuer = "collabboard-api"

// Claims 액세스 토큰 클레임 (보드 핸들러에서 사용자 식별에 사용)
type Claims struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// JWTManager JWT 토큰 관리자
type JWTManager struct {
	secretKey     []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewJWTManager JWTManager 생성
func NewJWTManager(secretKey string, accessExpiry, refreshExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (m *JWTManager) registered(userID int64, expiry time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(userID, 10),
	}
}

func (m *JWTManager) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

// parse validates the signature, method, and time claims into dst.
func (m *JWTManager) parse(tokenString string, dst jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, dst, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// GenerateAccessToken 액세스 토큰 생성
func (m *JWTManager) GenerateAccessToken(userID int64, email, nickname string) (string, error) {
	return m.sign(&Claims{
		UserID:           userID,
		Email:            email,
		Nickname:         nickname,
		RegisteredClaims: m.registered(userID, m.accessExpiry),
	})
}

// GenerateRefreshToken 리프레시 토큰 생성 (사용자 id만 담는다)
func (m *JWTManager) GenerateRefreshToken(userID int64) (string, error) {
	rc := m.registered(userID, m.refreshExpiry)
	return m.sign(&rc)
}

// ValidateAccessToken 액세스 토큰 검증
func (m *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRefreshToken 리프레시 토큰 검증 후 UserID 반환
func (m *JWTManager) ValidateRefreshToken(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return 0, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
