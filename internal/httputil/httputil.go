package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RespondError отправляет сообщение об ошибке в едином формате и прекращает обработку запроса.
func RespondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// BindJSON разбирает тело запроса; при ошибке сам отвечает 400 и возвращает false.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid data")
		return false
	}
	return true
}
