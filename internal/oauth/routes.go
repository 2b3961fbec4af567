package oauth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRoutes регистрирует адрес редиректа OAuth.
func SetupRoutes(r gin.IRouter, s *Service, logger *zap.Logger) {
	h := NewHandler(s, logger)
	r.GET("/oauth2callback", h.Callback)
}
