package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/parking-system/internal/entity"
	"github.com/ds124wfegd/parking-system/internal/service"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer"

	UserIDKey   = "userID"
	UserRoleKey = "userRole"
	UsernameKey = "username"
)

// Authenticate проверяет JWT и кладет данные пользователя в контекст запроса
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authorizationHeader)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		fields := strings.Fields(header)
		if len(fields) != 2 || !strings.EqualFold(fields[0], bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := authService.ValidateToken(fields[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)
		c.Set(UsernameKey, claims.Username)

		c.Next()
	}
}

// RequireRole пропускает только пользователей с одной из перечисленных ролей.
// Должен стоять после Authenticate.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(UserRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		role, ok := roleVal.(entity.Role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}

// CurrentUserID возвращает ID аутентифицированного пользователя
func CurrentUserID(c *gin.Context) int64 {
	if id, ok := c.Get(UserIDKey); ok {
		if userID, ok := id.(int64); ok {
			return userID
		}
	}
	return 0
}
