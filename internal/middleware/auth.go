package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/utils"
)

// AuthMiddleware 管理接口JWT认证中间件
type AuthMiddleware struct {
	jwt *utils.JWTManager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwt *utils.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAdmin 需要管理令牌的中间件
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortWithError(c, errors.New(errors.ErrAuthentication, "missing bearer token"))
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			code := errors.ErrTokenInvalid
			if err == utils.ErrExpiredToken {
				code = errors.ErrTokenExpired
			}
			abortWithError(c, errors.Wrap(err, code))
			return
		}

		c.Set("operator", claims.Operator)
		c.Set("tokenID", claims.ID)
		c.Next()
	}
}

// extractToken 从请求中提取令牌
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if bearerToken != "" {
		parts := strings.Split(bearerToken, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if token := c.GetHeader("X-Access-Token"); token != "" {
		return token
	}

	return ""
}

// abortWithError 以统一格式返回错误并终止请求
func abortWithError(c *gin.Context, err *errors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus(), errors.NewErrorResponse(err, GetRequestID(c)))
}

// GetOperator 从上下文获取运维人员名称
func GetOperator(c *gin.Context) (string, bool) {
	if operator, exists := c.Get("operator"); exists {
		if name, ok := operator.(string); ok {
			return name, true
		}
	}
	return "", false
}
