package oauth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	Service *Service
	Logger  *zap.Logger
}

func NewHandler(s *Service, logger *zap.Logger) *Handler {
	return &Handler{Service: s, Logger: logger}
}

// Callback принимает редирект Google после согласия пользователя.
func (h *Handler) Callback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		h.Logger.Info("пользователь отклонил авторизацию", zap.String("reason", reason))
		c.String(http.StatusBadRequest, "Ошибка авторизации.")
		return
	}
	code, state := c.Query("code"), c.Query("state")
	if code == "" || state == "" {
		c.String(http.StatusBadRequest, "Ошибка авторизации.")
		return
	}

	chatID, err := h.Service.Complete(c.Request.Context(), state, code)
	switch {
	case err == nil:
		c.String(http.StatusOK, "Авторизация успешна! Вы можете закрыть это окно.")
	case errors.Is(err, ErrBusy):
		c.String(http.StatusOK, "Поиск уже выполняется. Результат придёт в Telegram.")
	default:
		h.Logger.Warn("ошибка авторизации", zap.Int64("chat_id", chatID), zap.Error(err))
		c.String(http.StatusBadRequest, "Ошибка авторизации. Запросите новую ссылку в боте.")
	}
}
