package auth

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

var (
	ErrInvalidGoogleToken = errors.New("invalid google id token")
	ErrUnverifiedEmail    = errors.New("google account email is not verified")
)

// GoogleUserInfo Google 계정 프로필 (보드 사용자 생성에 필요한 필드만)
type GoogleUserInfo struct {
	ID            string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleAuthenticator Google ID 토큰 검증기
type GoogleAuthenticator struct {
	clientID string
}

// NewGoogleAuthenticator GoogleAuthenticator 생성
func NewGoogleAuthenticator(clientID string) *GoogleAuthenticator {
	return &GoogleAuthenticator{clientID: clientID}
}

// VerifyIDToken Google ID 토큰을 검증하고 프로필을 추출한다.
// 이메일 미검증 계정은 보드 계정과 연결할 수 없다.
func (g *GoogleAuthenticator) VerifyIDToken(ctx context.Context, idTokenString string) (*GoogleUserInfo, error) {
	payload, err := idtoken.Validate(ctx, idTokenString, g.clientID)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}

	verified, _ := payload.Claims["email_verified"].(bool)
	if !verified {
		return nil, ErrUnverifiedEmail
	}

	email := stringClaim(payload.Claims, "email")
	if email == "" {
		return nil, ErrInvalidGoogleToken
	}

	return &GoogleUserInfo{
		ID:            payload.Subject,
		Email:         email,
		EmailVerified: verified,
		Name:          stringClaim(payload.Claims, "name"),
		Picture:       stringClaim(payload.Claims, "picture"),
	}, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}
