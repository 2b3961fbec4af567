package moderation

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRoutes регистрирует маршруты модерации; группа должна быть закрыта AuthRequired.
func SetupRoutes(r *gin.RouterGroup, wf Workflow, logger *zap.Logger) {
	h := NewHandler(wf, logger)
	r.GET("/pending", h.ListPending)
	r.POST("/approve", h.Approve)
	r.POST("/reject", h.Reject)
}
