// Package bot реализует telegram-транспорт: приём сообщений и нажатий кнопок,
// клавиатуры и исходящие уведомления.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/streampromo-bot/internal/dialog"
	"github.com/mmeshcher/streampromo-bot/internal/service"
)

// Изображения разделов меню.
const (
	welcomePhotoURL = "https://example.com/welcome_image.jpg"
	orderPhotoURL   = "https://example.com/order_image.jpg"
	profilePhotoURL = "https://example.com/profile_image.jpg"
	supportPhotoURL = "https://example.com/support_image.jpg"
	adminPhotoURL   = "https://example.com/admin_image.jpg"
)

// errorReportLimit ограничивает длину текста ошибки в отчёте администраторам.
const errorReportLimit = 3000

// Bot связывает telegram-обновления с бизнес-логикой сервиса.
type Bot struct {
	api     *tgbotapi.BotAPI
	svc     *service.Service
	dialogs *dialog.Manager
	logger  *zap.Logger
}

// New создаёт бота поверх подключённого telegram-клиента.
func New(api *tgbotapi.BotAPI, svc *service.Service, dialogs *dialog.Manager, logger *zap.Logger) *Bot {
	return &Bot{
		api:     api,
		svc:     svc,
		dialogs: dialogs,
		logger:  logger,
	}
}

// Run запускает цикл получения обновлений. Блокируется до отмены контекста.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.safeHandle(ctx, update)
		}
	}
}

// safeHandle обрабатывает одно обновление, перехватывая панику обработчика:
// ошибка логируется, администраторы получают усечённый отчёт, цикл продолжается.
func (b *Bot) safeHandle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("update handler panicked", zap.Any("panic", r))
			b.reportToAdmins(fmt.Sprintf("%v", r))
		}
	}()

	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) reportToAdmins(errText string) {
	if len(errText) > errorReportLimit {
		errText = errText[:errorReportLimit]
	}
	for _, adminID := range b.svc.AdminIDs() {
		msg := tgbotapi.NewMessage(adminID, "⚠️ Произошла ошибка в боте:\n\n"+errText)
		_, _ = b.api.Send(msg)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("send message failed", zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	b.send(msg)
}

func (b *Bot) sendPhoto(chatID int64, photoURL, caption string, markup interface{}) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
	photo.Caption = caption
	if markup != nil {
		photo.ReplyMarkup = markup
	}
	b.send(photo)
}
