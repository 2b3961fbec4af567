package moderation

import (
	"context"
	"net/http"

	"ytg_go/internal/httputil"
	"ytg_go/models"
	"ytg_go/pkg/submission"
	"ytg_go/pkg/youtube"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Workflow — решения по заявкам, доступные через API.
type Workflow interface {
	Approve(ctx context.Context, sourceURL string) (*submission.Outcome, error)
	Reject(ctx context.Context, sourceURL string) (*submission.Outcome, error)
	ListPending(ctx context.Context) ([]models.PendingChannel, error)
}

// Handler обслуживает API модерации заявок.
type Handler struct {
	Workflow Workflow
	Logger   *zap.Logger
}

func NewHandler(wf Workflow, logger *zap.Logger) *Handler {
	return &Handler{Workflow: wf, Logger: logger}
}

type decisionRequest struct {
	YouTubeURL string `json:"youtube_url" binding:"required"`
}

// ListPending возвращает очередь заявок.
func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.Workflow.ListPending(c.Request.Context())
	if err != nil {
		h.Logger.Error("не удалось получить заявки", zap.Error(err))
		httputil.RespondError(c, http.StatusInternalServerError, "db error")
		return
	}
	if list == nil {
		list = []models.PendingChannel{}
	}
	c.JSON(http.StatusOK, gin.H{"pending": list})
}

func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, "approve", h.Workflow.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, "reject", h.Workflow.Reject)
}

func (h *Handler) decide(c *gin.Context, action string, fn func(context.Context, string) (*submission.Outcome, error)) {
	var req decisionRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	sourceURL := req.YouTubeURL
	if id, ok := youtube.ParseChannelID(sourceURL); ok {
		sourceURL = youtube.ChannelURL(id)
	}

	out, err := fn(c.Request.Context(), sourceURL)
	if err != nil {
		h.Logger.Error("ошибка модерации", zap.String("action", action), zap.String("youtube_url", sourceURL), zap.Error(err))
		httputil.RespondError(c, http.StatusInternalServerError, "db error")
		return
	}
	c.JSON(statusCode(out.Status), gin.H{"status": out.Status.String(), "message": out.Message})
}

func statusCode(s submission.Status) int {
	switch s {
	case submission.StatusNotFound:
		return http.StatusNotFound
	case submission.StatusAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}
