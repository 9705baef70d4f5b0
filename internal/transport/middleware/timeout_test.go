package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// TestTimeout_SetsDeadline: обработчик получает контекст с дедлайном
func TestTimeout_SetsDeadline(t *testing.T) {
	router := gin.New()
	router.Use(Timeout(5 * time.Second))

	var hasDeadline bool
	router.GET("/ping", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, hasDeadline)
}

func TestTimeout_ExpiredContext(t *testing.T) {
	router := gin.New()
	router.Use(Timeout(time.Millisecond))

	var ctxErr error
	router.GET("/slow", func(c *gin.Context) {
		time.Sleep(10 * time.Millisecond)
		ctxErr = c.Request.Context().Err()
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Error(t, ctxErr)
}
