package middleware

import (
	"net/http"
	"strings"

	"github.com/ewhamarket/backend/internal/common"
	"github.com/ewhamarket/backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// SessionCookieName 로그인 세션 쿠키 이름
const SessionCookieName = "market_session"

const userIDKey = "userID"

// SessionAuth 세션 쿠키 또는 Bearer 토큰에서 사용자 ID 추출
// 인증 실패해도 요청을 계속 진행 (optional auth)
func SessionAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := manager.Verify(token)
		if err != nil {
			// 만료/위조 쿠키는 지움
			ClearSession(c)
			c.Next()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// sessionToken 쿠키 → Bearer 토큰 순서
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// RequireLogin 로그인하지 않은 요청은 401
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Login required", common.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return ""
	}
	if str, ok := userID.(string); ok {
		return str
	}
	return ""
}

// StartSession 세션 토큰 발급 후 쿠키 설정
func StartSession(c *gin.Context, manager *jwt.Manager, userID string) (string, error) {
	token, err := manager.Generate(userID)
	if err != nil {
		return "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(manager.TTL().Seconds()), "/", "", c.Request.TLS != nil, true)
	c.Set(userIDKey, userID)
	return token, nil
}

// ClearSession 세션 쿠키 삭제
func ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}
