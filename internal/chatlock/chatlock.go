package chatlock

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrBusy — в этом чате уже идёт поиск.
var ErrBusy = errors.New("chat is busy")

// Guard не даёт запустить второй поиск подписок из того же чата, пока идёт первый.
// Хранит только занятые чаты: запись удаляется при освобождении.
type Guard struct {
	mu     sync.Mutex
	locked map[int64]struct{}
	logger *zap.Logger
}

func New(logger *zap.Logger) *Guard {
	return &Guard{
		locked: make(map[int64]struct{}),
		logger: logger,
	}
}

// lockedIDs возвращает занятые чаты. Вызывается под g.mu.
func (g *Guard) lockedIDs() []int64 {
	ids := make([]int64, 0, len(g.locked))
	for id := range g.locked {
		ids = append(ids, id)
	}
	return ids
}

// Lock пытается занять чат; ErrBusy, если он уже занят.
func (g *Guard) Lock(chatID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.locked[chatID]; busy {
		g.logger.Debug("чат занят", zap.Int64("chat_id", chatID), zap.Int64s("locked", g.lockedIDs()))
		return ErrBusy
	}
	g.locked[chatID] = struct{}{}
	return nil
}

// Unlock освобождает чат. Повторный вызов ничего не делает.
func (g *Guard) Unlock(chatID int64) {
	g.mu.Lock()
	delete(g.locked, chatID)
	g.mu.Unlock()
}
