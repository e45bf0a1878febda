package bot

import (
	"fmt"
	"time"

	"github.com/mmeshcher/streampromo-bot/internal/dialog"
	"github.com/mmeshcher/streampromo-bot/internal/model"
	"github.com/mmeshcher/streampromo-bot/internal/service"
)

const timeLayout = "2006-01-02 15:04:05"

const supportText = "🆘 Поддержка\n\n" +
	"Этот бот предназначен для заказа услуг продвижения ваших стримов на различных платформах.\n\n" +
	"📌 Как это работает:\n" +
	"1. Вы выбираете платформу и услугу\n" +
	"2. Указываете детали заказа\n" +
	"3. Оплачиваете удобным способом\n" +
	"4. Мы выполняем ваш заказ в указанное время\n\n" +
	"❓ Если у вас возникли вопросы или проблемы:\n" +
	"• Напишите нам в поддержку: @support_username\n" +
	"• Или на email: support@example.com\n\n" +
	"⏳ Время ответа: обычно в течение 1 часа в рабочее время (10:00-20:00 МСК)"

func formatConfirmation(st dialog.State) string {
	info := model.Services[st.Service]
	return fmt.Sprintf(
		"Подтвердите заказ:\n\n"+
			"1. Платформа: %s\n"+
			"2. Услуга: %s - %d руб/%s\n"+
			"3. Канал: %s\n"+
			"4. Дата стрима: %s\n"+
			"5. Время начала: %s\n\n"+
			"Сумма к оплате: %d руб",
		st.Platform, st.Service, info.Price, info.Unit,
		st.Channel, st.Date, st.Time, info.Price,
	)
}

func formatProfile(userID int64, p *service.Profile) string {
	return fmt.Sprintf(
		"👤 Ваш профиль:\n\n"+
			"📅 Дата регистрации: %s\n"+
			"💰 Баланс: %d руб\n\n"+
			"📊 Статистика заказов:\n"+
			"• Всего заказов: %d\n"+
			"• Оплаченных: %d\n\n"+
			"🆔 Ваш ID: %d",
		p.RegistrationDate.Format(timeLayout), p.Balance,
		p.OrdersTotal, p.OrdersPaid, userID,
	)
}

func formatStats(s *service.Stats) string {
	return fmt.Sprintf(
		"📊 Статистика бота:\n\n"+
			"👥 Пользователей: %d\n"+
			"📦 Всего заказов: %d\n"+
			"💰 Оплаченных заказов: %d\n"+
			"💵 Общая выручка: %d руб\n\n"+
			"🔄 Последнее обновление: %s",
		s.TotalUsers, s.TotalOrders, s.PaidOrders, s.TotalRevenue,
		time.Now().Format(timeLayout),
	)
}

func formatOrderCard(c *service.OrderCard) string {
	return fmt.Sprintf(
		"📦 Заказ #%d\n\n"+
			"👤 Пользователь: @%s (ID: %d)\n"+
			"🛒 Услуга: %s\n"+
			"🖥 Платформа: %s\n"+
			"📺 Канал: %s\n"+
			"📅 Дата: %s\n"+
			"⏰ Время: %s\n"+
			"💰 Сумма: %d руб\n"+
			"📌 Статус: %s\n"+
			"🕒 Создан: %s",
		c.ID, c.Username, c.Order.UserID,
		c.Order.Service, c.Order.Platform, c.Order.Channel,
		c.Order.Date, c.Order.Time, c.Order.Amount, c.Order.Status,
		c.Order.CreatedAt.Format(timeLayout),
	)
}

func formatPaymentLink(p *service.PaymentLink, afterPayment string) string {
	return fmt.Sprintf(
		"Сумма к оплате: %d руб (~%.2f USDT)\n\n"+
			"Оплатите по ссылке: %s\n\n%s",
		p.Amount, p.ApproxUSDT(), p.PayURL, afterPayment,
	)
}

func formatBalanceChange(c *service.BalanceChange) string {
	sign := ""
	if c.Delta >= 0 {
		sign = "+"
	}
	return fmt.Sprintf(
		"Баланс пользователя %d изменен.\n"+
			"Старый баланс: %d руб\n"+
			"Изменение: %s%d руб\n"+
			"Новый баланс: %d руб",
		c.UserID, c.OldBalance, sign, c.Delta, c.NewBalance,
	)
}
