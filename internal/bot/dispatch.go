package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// dispatcher раздаёт обновления по горутинам так, что обновления одного чата
// обрабатываются строго по очереди и в порядке поступления, а разные чаты
// обрабатываются параллельно.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64][]tgbotapi.Update
	wg     sync.WaitGroup
	handle func(tgbotapi.Update)
}

func newDispatcher(handle func(tgbotapi.Update)) *dispatcher {
	return &dispatcher{
		queues: make(map[int64][]tgbotapi.Update),
		handle: handle,
	}
}

// Dispatch ставит обновление в очередь его чата. Если у чата нет обработчика,
// запускается новый; он завершается, когда очередь опустеет.
func (d *dispatcher) Dispatch(u tgbotapi.Update) {
	chatID, ok := updateChatID(u)
	if !ok {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.handle(u)
		}()
		return
	}

	d.mu.Lock()
	q, running := d.queues[chatID]
	d.queues[chatID] = append(q, u)
	d.mu.Unlock()
	if running {
		return
	}

	d.wg.Add(1)
	go d.drain(chatID)
}

// drain обрабатывает очередь чата до опустошения. Запись чата удаляется
// под тем же мьютексом, под которым Dispatch решает, нужен ли новый обработчик.
func (d *dispatcher) drain(chatID int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[chatID]
		if len(q) == 0 {
			delete(d.queues, chatID)
			d.mu.Unlock()
			return
		}
		u := q[0]
		d.queues[chatID] = q[1:]
		d.mu.Unlock()

		d.handle(u)
	}
}

// Wait дожидается обработки всех поставленных обновлений.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}

// updateChatID возвращает чат, к которому относится обновление.
func updateChatID(u tgbotapi.Update) (int64, bool) {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return u.Message.Chat.ID, true
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		return u.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}
