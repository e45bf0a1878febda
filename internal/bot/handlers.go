package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/streampromo-bot/internal/dialog"
	"github.com/mmeshcher/streampromo-bot/internal/model"
	"github.com/mmeshcher/streampromo-bot/internal/service"
	"github.com/mmeshcher/streampromo-bot/internal/validation"
)

const (
	invoiceFailedText = "Произошла ошибка при создании счета. Попробуйте позже или выберите другой способ оплаты."
	useButtonsText    = "Пожалуйста, используйте кнопки для взаимодействия."
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := msg.Text

	if _, err := b.svc.RegisterUser(ctx, userID, msg.From.UserName); err != nil {
		b.logger.Error("register user", zap.Int64("userID", userID), zap.Error(err))
	}

	switch text {
	case "/start":
		b.dialogs.Clear(userID)
		b.sendPhoto(chatID, welcomePhotoURL,
			"👋 Добро пожаловать в бота для продвижения стримов!",
			mainKeyboard(b.svc.IsAdmin(userID)))
		return

	case btnBack:
		b.dialogs.Clear(userID)
		b.sendText(chatID, "Главное меню:", mainKeyboard(b.svc.IsAdmin(userID)))
		return

	case btnOrder:
		b.dialogs.Set(userID, dialog.State{Step: dialog.StepChoosingPlatform})
		b.sendPhoto(chatID, orderPhotoURL, "Выберите платформу:", platformKeyboard())
		return

	case btnProfile:
		b.showProfile(chatID, userID)
		return

	case btnSupport:
		b.sendPhoto(chatID, supportPhotoURL, supportText, backKeyboard())
		return

	case btnTopUp:
		b.dialogs.Set(userID, dialog.State{Step: dialog.StepTopUpAmount})
		b.sendText(chatID, "Введите сумму пополнения в рублях (минимум 100 руб):", backKeyboard())
		return

	case btnPayCard:
		b.sendText(chatID,
			"Для оплаты картой напишите в поддержку: @support_username",
			backKeyboard())
		return

	case btnPayCrypto:
		b.handleCryptoPayment(ctx, chatID, userID)
		return

	case btnAdmin:
		b.showAdminPanel(chatID, userID)
		return

	case btnAdminStats, btnAdminOrders, btnAdminAddAdmin, btnAdminRemoveAdmin, btnAdminChangeBalance:
		b.handleAdminButton(ctx, chatID, userID, text)
		return
	}

	st, ok := b.dialogs.Get(userID)
	if !ok {
		b.sendText(chatID, useButtonsText, mainKeyboard(b.svc.IsAdmin(userID)))
		return
	}

	b.handleDialogInput(ctx, chatID, userID, text, st)
}

// handleDialogInput продвигает диалог пользователя. Ввод, не соответствующий
// ожидаемой форме текущего шага, не продвигает автомат: пользователю повторно
// отправляется подсказка.
func (b *Bot) handleDialogInput(ctx context.Context, chatID, userID int64, text string, st dialog.State) {
	switch st.Step {
	case dialog.StepChoosingPlatform:
		platform, ok := platformButtons[text]
		if !ok {
			b.sendText(chatID, "Выберите платформу кнопкой ниже:", platformKeyboard())
			return
		}
		st.Platform = platform
		st.Step = dialog.StepChoosingService
		b.dialogs.Set(userID, st)
		b.sendText(chatID,
			fmt.Sprintf("Выбрана платформа: %s\n\nВыберите услугу:", platform),
			serviceKeyboard())

	case dialog.StepChoosingService:
		info, ok := model.Services[text]
		if !ok {
			b.sendText(chatID, "Выберите услугу кнопкой ниже:", serviceKeyboard())
			return
		}
		st.Service = text
		st.Step = dialog.StepChoosingDate
		b.dialogs.Set(userID, st)
		b.sendText(chatID,
			fmt.Sprintf("Услуга: %s\nЦена: %d руб/%s\n\nВведите дату стрима в формате ДД.ММ (например, 15.06):",
				text, info.Price, info.Unit),
			backKeyboard())

	case dialog.StepChoosingDate:
		if !validation.IsValidDate(text) {
			b.sendText(chatID, "Введите дату стрима в формате ДД.ММ (например, 15.06):", backKeyboard())
			return
		}
		st.Date = text
		st.Step = dialog.StepChoosingTime
		b.dialogs.Set(userID, st)
		b.sendText(chatID, "Введите время начала стрима в формате ЧЧ:ММ (например, 14:00):", backKeyboard())

	case dialog.StepChoosingTime:
		if !validation.IsValidTime(text) {
			b.sendText(chatID, "Введите время начала стрима в формате ЧЧ:ММ (например, 14:00):", backKeyboard())
			return
		}
		st.Time = text
		st.Step = dialog.StepEnteringChannel
		b.dialogs.Set(userID, st)
		b.sendText(chatID, "Введите название вашего канала (например, 'MyCoolChannel'):", backKeyboard())

	case dialog.StepEnteringChannel:
		if strings.TrimSpace(text) == "" {
			b.sendText(chatID, "Введите название вашего канала (например, 'MyCoolChannel'):", backKeyboard())
			return
		}
		st.Channel = text
		st.Step = dialog.StepConfirmation
		b.dialogs.Set(userID, st)
		b.sendText(chatID, formatConfirmation(st), confirmKeyboard())

	case dialog.StepConfirmation:
		b.handleOrderConfirmation(ctx, chatID, userID, text, st)

	case dialog.StepTopUpAmount:
		b.handleTopUpAmount(chatID, userID, text, st)

	case dialog.StepTopUpMethod:
		b.sendText(chatID, "Выберите способ оплаты кнопкой ниже:", payMethodKeyboard())

	case dialog.StepAdminAddingAdmin, dialog.StepAdminRemovingAdmin, dialog.StepAdminChangingBalance:
		b.handleAdminDialogInput(ctx, chatID, userID, text, st)

	default:
		b.sendText(chatID, useButtonsText, mainKeyboard(b.svc.IsAdmin(userID)))
	}
}

func (b *Bot) handleOrderConfirmation(ctx context.Context, chatID, userID int64, text string, st dialog.State) {
	switch text {
	case btnConfirm:
		orderID, _, err := b.svc.CreateOrder(ctx, userID, st.Platform, st.Service, st.Date, st.Time, st.Channel)
		if err != nil {
			b.logger.Error("create order", zap.Int64("userID", userID), zap.Error(err))
			b.sendText(chatID, "Не удалось создать заказ. Попробуйте позже.", mainKeyboard(b.svc.IsAdmin(userID)))
			b.dialogs.Clear(userID)
			return
		}
		b.dialogs.Clear(userID)
		b.sendText(chatID,
			fmt.Sprintf("Заказ #%d создан! Выберите способ оплаты:", orderID),
			payMethodKeyboard())

	case btnCancel:
		b.dialogs.Clear(userID)
		b.sendText(chatID, "Заказ отменен.", mainKeyboard(b.svc.IsAdmin(userID)))

	default:
		b.sendText(chatID, formatConfirmation(st), confirmKeyboard())
	}
}

func (b *Bot) handleTopUpAmount(chatID, userID int64, text string, st dialog.State) {
	amount, ok := validation.ParseAmount(text)
	if !ok {
		b.sendText(chatID, "Введите сумму пополнения в рублях (минимум 100 руб):", backKeyboard())
		return
	}
	if amount < service.MinTopUpAmount {
		b.sendText(chatID, "Минимальная сумма пополнения - 100 руб. Введите другую сумму:", backKeyboard())
		return
	}

	st.TopUpAmount = amount
	st.Step = dialog.StepTopUpMethod
	b.dialogs.Set(userID, st)
	b.sendText(chatID,
		fmt.Sprintf("Сумма пополнения: %d руб\n\nВыберите способ оплаты:", amount),
		payMethodKeyboard())
}

// handleCryptoPayment выставляет инвойс: на пополнение, если пользователь
// находится на шаге выбора способа оплаты пополнения, иначе на последний
// заказ, ожидающий оплаты.
func (b *Bot) handleCryptoPayment(ctx context.Context, chatID, userID int64) {
	if st, ok := b.dialogs.Get(userID); ok && st.Step == dialog.StepTopUpMethod {
		link, err := b.svc.TopUp(ctx, userID, st.TopUpAmount)
		if err != nil {
			b.logger.Error("top-up invoice", zap.Int64("userID", userID), zap.Error(err))
			b.sendText(chatID, invoiceFailedText, backKeyboard())
			return
		}
		b.dialogs.Clear(userID)
		b.sendText(chatID,
			formatPaymentLink(link, "После оплаты баланс будет пополнен автоматически."),
			backKeyboard())
		return
	}

	link, err := b.svc.PayLatestOrder(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNoPendingOrders) {
			b.sendText(chatID, "У вас нет заказов для оплаты.", mainKeyboard(b.svc.IsAdmin(userID)))
			return
		}
		b.logger.Error("order invoice", zap.Int64("userID", userID), zap.Error(err))
		b.sendText(chatID, invoiceFailedText, backKeyboard())
		return
	}
	b.sendText(chatID,
		formatPaymentLink(link, "После оплаты бот автоматически подтвердит ваш заказ."),
		backKeyboard())
}

func (b *Bot) showProfile(chatID, userID int64) {
	p, err := b.svc.GetProfile(userID)
	if err != nil {
		b.sendText(chatID, "Профиль не найден. Начните с команды /start", nil)
		return
	}
	b.sendPhoto(chatID, profilePhotoURL, formatProfile(userID, p), profileKeyboard())
}
