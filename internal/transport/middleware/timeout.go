package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout ограничивает время обработки запроса. Транзакции репозиториев
// получают этот контекст и откатываются при его истечении.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
