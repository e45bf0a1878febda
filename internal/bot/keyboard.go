package bot

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mmeshcher/streampromo-bot/internal/model"
	"github.com/mmeshcher/streampromo-bot/internal/service"
)

// Тексты кнопок главного меню и диалогов.
const (
	btnBack      = "🔙 Назад"
	btnOrder     = "🛍️ Заказать услугу"
	btnProfile   = "👤 Профиль"
	btnSupport   = "🆘 Поддержка"
	btnAdmin     = "👑 Админ"
	btnTopUp     = "💳 Пополнить баланс"
	btnPayCard   = "💳 Оплатить картой"
	btnPayCrypto = "💰 Оплатить CryptoBot"
	btnConfirm   = "✅ Подтвердить"
	btnCancel    = "❌ Отменить"
)

// Тексты кнопок админ-панели.
const (
	btnAdminStats         = "📊 Статистика бота"
	btnAdminOrders        = "📦 Управление заказами"
	btnAdminAddAdmin      = "👥 Назначить админа"
	btnAdminRemoveAdmin   = "👥 Снять админа"
	btnAdminChangeBalance = "💰 Изменить баланс"
)

// platformButtons сопоставляет кнопки выбора платформы доменным значениям.
var platformButtons = map[string]model.Platform{
	"🎮 Kick":    model.PlatformKick,
	"📺 YouTube": model.PlatformYouTube,
	"🟣 Twitch":  model.PlatformTwitch,
}

func mainKeyboard(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnOrder),
			tgbotapi.NewKeyboardButton(btnProfile),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSupport),
		),
	}
	if isAdmin {
		rows[1] = append(rows[1], tgbotapi.NewKeyboardButton(btnAdmin))
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}

func backKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
}

func platformKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🎮 Kick"),
			tgbotapi.NewKeyboardButton("📺 YouTube"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🟣 Twitch"),
			tgbotapi.NewKeyboardButton(btnBack),
		),
	)
}

func serviceKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(model.ServiceNames)/2+1)
	row := make([]tgbotapi.KeyboardButton, 0, 2)
	for _, name := range model.ServiceNames {
		row = append(row, tgbotapi.NewKeyboardButton(name))
		if len(row) == 2 {
			rows = append(rows, row)
			row = make([]tgbotapi.KeyboardButton, 0, 2)
		}
	}
	row = append(row, tgbotapi.NewKeyboardButton(btnBack))
	rows = append(rows, row)
	return tgbotapi.NewReplyKeyboard(rows...)
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
}

func payMethodKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnPayCard),
			tgbotapi.NewKeyboardButton(btnPayCrypto),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)),
	)
}

func profileKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnTopUp),
			tgbotapi.NewKeyboardButton(btnBack),
		),
	)
}

func adminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminStats),
			tgbotapi.NewKeyboardButton(btnAdminOrders),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminAddAdmin),
			tgbotapi.NewKeyboardButton(btnAdminRemoveAdmin),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminChangeBalance),
			tgbotapi.NewKeyboardButton(btnBack),
		),
	)
}

func adminListKeyboard(admins []int64, exceptID int64) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(admins)+1)
	for _, adminID := range admins {
		if adminID == exceptID {
			continue
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(strconv.FormatInt(adminID, 10)),
		))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBack)))
	return tgbotapi.NewReplyKeyboard(rows...)
}

func ordersListKeyboard(orders []service.OrderSummary) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(orders))
	for _, o := range orders {
		label := "#" + strconv.FormatInt(o.ID, 10) + " - " + string(o.Status)
		data := "order_" + strconv.FormatInt(o.ID, 10)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func orderCardKeyboard(orderID int64) tgbotapi.InlineKeyboardMarkup {
	id := strconv.FormatInt(orderID, 10)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", "confirm_"+id),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", "reject_"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 В процессе", "process_"+id),
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "back_to_orders"),
		),
	)
}
