package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier отправляет уведомления пользователям через telegram.
// Реализует контракт service.Notifier.
type Notifier struct {
	api *tgbotapi.BotAPI
}

// NewNotifier создаёт канал уведомлений поверх telegram-клиента.
func NewNotifier(api *tgbotapi.BotAPI) *Notifier {
	return &Notifier{api: api}
}

// NotifyUser отправляет пользователю текстовое сообщение.
func (n *Notifier) NotifyUser(ctx context.Context, userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}
