package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/streampromo-bot/internal/dialog"
	"github.com/mmeshcher/streampromo-bot/internal/service"
	"github.com/mmeshcher/streampromo-bot/internal/validation"
)

const recentOrdersLimit = 10

const noAdminAccessText = "У вас нет доступа к админ-панели."

func (b *Bot) showAdminPanel(chatID, userID int64) {
	if !b.svc.IsAdmin(userID) {
		b.sendText(chatID, noAdminAccessText, nil)
		return
	}
	b.dialogs.Clear(userID)
	b.sendPhoto(chatID, adminPhotoURL, "👑 Админ-панель", adminKeyboard())
}

func (b *Bot) handleAdminButton(ctx context.Context, chatID, userID int64, text string) {
	if !b.svc.IsAdmin(userID) {
		b.sendText(chatID, noAdminAccessText, nil)
		return
	}

	switch text {
	case btnAdminStats:
		b.sendText(chatID, formatStats(b.svc.GetStats()), backKeyboard())

	case btnAdminOrders:
		orders := b.svc.RecentOrders(recentOrdersLimit)
		if len(orders) == 0 {
			b.sendText(chatID, "Нет заказов для управления.", backKeyboard())
			return
		}
		b.dialogs.Set(userID, dialog.State{Step: dialog.StepAdminManagingOrders})
		b.sendText(chatID, "Выберите заказ для управления:", ordersListKeyboard(orders))

	case btnAdminAddAdmin:
		b.dialogs.Set(userID, dialog.State{Step: dialog.StepAdminAddingAdmin})
		b.sendText(chatID, "Введите ID пользователя, которого хотите назначить админом:", backKeyboard())

	case btnAdminRemoveAdmin:
		admins := b.svc.AdminIDs()
		if len(admins) <= 1 {
			b.sendText(chatID, "Нельзя снять последнего админа!", backKeyboard())
			return
		}
		b.dialogs.Set(userID, dialog.State{Step: dialog.StepAdminRemovingAdmin})
		b.sendText(chatID, "Выберите ID админа, которого хотите снять:", adminListKeyboard(admins, userID))

	case btnAdminChangeBalance:
		b.dialogs.Set(userID, dialog.State{Step: dialog.StepAdminChangingBalance})
		b.sendText(chatID,
			"Введите ID пользователя и сумму через пробел (например, '123456 500' для пополнения или '123456 -500' для списания):",
			backKeyboard())
	}
}

func (b *Bot) handleAdminDialogInput(ctx context.Context, chatID, userID int64, text string, st dialog.State) {
	if !b.svc.IsAdmin(userID) {
		b.dialogs.Clear(userID)
		b.sendText(chatID, noAdminAccessText, nil)
		return
	}

	switch st.Step {
	case dialog.StepAdminAddingAdmin:
		newAdminID, ok := validation.ParseUserID(text)
		if !ok {
			b.sendText(chatID, "Введите числовой ID пользователя:", backKeyboard())
			return
		}
		if err := b.svc.AddAdmin(ctx, newAdminID); err != nil {
			if errors.Is(err, service.ErrAlreadyAdmin) {
				b.sendText(chatID, "Этот пользователь уже является админом.", backKeyboard())
				return
			}
			b.logger.Error("add admin", zap.Error(err))
			b.sendText(chatID, "Не удалось назначить админа.", backKeyboard())
			return
		}
		b.dialogs.Clear(userID)
		b.sendText(chatID, fmt.Sprintf("Пользователь %d назначен админом.", newAdminID), adminKeyboard())

	case dialog.StepAdminRemovingAdmin:
		adminID, ok := validation.ParseUserID(text)
		if !ok {
			b.sendText(chatID, "Введите числовой ID админа:", backKeyboard())
			return
		}
		if err := b.svc.RemoveAdmin(ctx, userID, adminID); err != nil {
			switch {
			case errors.Is(err, service.ErrNotAdmin):
				b.sendText(chatID, "Этот пользователь не является админом.", backKeyboard())
			case errors.Is(err, service.ErrSelfRemoval):
				b.sendText(chatID, "Вы не можете снять себя. Обратитесь к другому админу.", backKeyboard())
			case errors.Is(err, service.ErrLastAdmin):
				b.sendText(chatID, "Нельзя снять последнего админа!", backKeyboard())
			default:
				b.logger.Error("remove admin", zap.Error(err))
				b.sendText(chatID, "Не удалось снять админа.", backKeyboard())
			}
			return
		}
		b.dialogs.Clear(userID)
		b.sendText(chatID, fmt.Sprintf("Пользователь %d больше не админ.", adminID), adminKeyboard())

	case dialog.StepAdminChangingBalance:
		targetID, delta, ok := validation.ParseBalanceChange(text)
		if !ok {
			b.sendText(chatID,
				"Введите ID пользователя и сумму через пробел (например, '123456 500'):",
				backKeyboard())
			return
		}
		change, err := b.svc.ChangeBalance(ctx, targetID, delta)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				b.sendText(chatID, "Пользователь не найден.", backKeyboard())
			case errors.Is(err, service.ErrNegativeBalance):
				b.sendText(chatID, "Нельзя установить отрицательный баланс.", backKeyboard())
			default:
				b.logger.Error("change balance", zap.Error(err))
				b.sendText(chatID, "Не удалось изменить баланс.", backKeyboard())
			}
			return
		}
		b.dialogs.Clear(userID)
		b.sendText(chatID, formatBalanceChange(change), adminKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID

	if !b.svc.IsAdmin(userID) {
		b.answerCallback(cb.ID, noAdminAccessText)
		return
	}
	if cb.Message == nil {
		b.answerCallback(cb.ID, "")
		return
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	data := cb.Data

	switch {
	case data == "back_to_orders":
		orders := b.svc.RecentOrders(recentOrdersLimit)
		b.editMessage(chatID, messageID, "Выберите заказ для управления:", ordersListKeyboard(orders))
		b.answerCallback(cb.ID, "")

	case strings.HasPrefix(data, "order_"):
		orderID, err := strconv.ParseInt(strings.TrimPrefix(data, "order_"), 10, 64)
		if err != nil {
			b.answerCallback(cb.ID, "Заказ не найден!")
			return
		}
		card, err := b.svc.GetOrder(orderID)
		if err != nil {
			b.answerCallback(cb.ID, "Заказ не найден!")
			return
		}
		b.editMessage(chatID, messageID, formatOrderCard(card), orderCardKeyboard(orderID))
		b.answerCallback(cb.ID, "")

	case strings.HasPrefix(data, "confirm_"), strings.HasPrefix(data, "reject_"), strings.HasPrefix(data, "process_"):
		b.handleOrderAction(ctx, cb, chatID, messageID, data)

	default:
		b.answerCallback(cb.ID, "")
	}
}

// callbackActions сопоставляет префиксы callback-данных действиям над заказом.
var callbackActions = map[string]service.AdminAction{
	"confirm": service.ActionConfirm,
	"reject":  service.ActionReject,
	"process": service.ActionProcess,
}

func (b *Bot) handleOrderAction(ctx context.Context, cb *tgbotapi.CallbackQuery, chatID int64, messageID int, data string) {
	name, idPart, ok := strings.Cut(data, "_")
	if !ok {
		b.answerCallback(cb.ID, "")
		return
	}
	orderID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		b.answerCallback(cb.ID, "Заказ не найден!")
		return
	}

	status, err := b.svc.TransitionOrder(ctx, orderID, callbackActions[name])
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			b.answerCallback(cb.ID, "Заказ не найден!")
		case errors.Is(err, service.ErrInvalidTransition):
			b.answerCallback(cb.ID, "Недопустимый переход статуса заказа.")
		default:
			b.logger.Error("order transition", zap.Int64("orderID", orderID), zap.Error(err))
			b.answerCallback(cb.ID, "Не удалось изменить статус заказа.")
		}
		return
	}

	b.answerCallback(cb.ID, fmt.Sprintf("Статус заказа #%d изменен на %s", orderID, status))

	if card, err := b.svc.GetOrder(orderID); err == nil {
		b.editMessage(chatID, messageID, formatOrderCard(card), orderCardKeyboard(orderID))
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Warn("answer callback failed", zap.Error(err))
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("edit message failed", zap.Error(err))
	}
}
