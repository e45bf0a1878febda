package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/mmeshcher/streampromo-bot/internal/dialog"
	"github.com/mmeshcher/streampromo-bot/internal/model"
	"github.com/mmeshcher/streampromo-bot/internal/service"
)

func TestFormatConfirmation(t *testing.T) {
	st := dialog.State{
		Platform: model.PlatformKick,
		Service:  "Подписчики",
		Channel:  "MyCoolChannel",
		Date:     "15.06",
		Time:     "14:00",
	}

	got := formatConfirmation(st)

	for _, want := range []string{
		"Платформа: Kick",
		"Услуга: Подписчики - 20 руб/шт",
		"Канал: MyCoolChannel",
		"Дата стрима: 15.06",
		"Время начала: 14:00",
		"Сумма к оплате: 20 руб",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("confirmation missing %q:\n%s", want, got)
		}
	}
}

func TestFormatProfile(t *testing.T) {
	p := &service.Profile{
		Balance:          350,
		OrdersTotal:      5,
		OrdersPaid:       2,
		RegistrationDate: time.Date(2026, 6, 15, 14, 0, 0, 0, time.UTC),
	}

	got := formatProfile(12345, p)

	for _, want := range []string{
		"Дата регистрации: 2026-06-15 14:00:00",
		"Баланс: 350 руб",
		"Всего заказов: 5",
		"Оплаченных: 2",
		"Ваш ID: 12345",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("profile missing %q:\n%s", want, got)
		}
	}
}

func TestFormatOrderCard(t *testing.T) {
	card := &service.OrderCard{
		ID:       7,
		Username: "streamer",
		Order: model.Order{
			UserID:    10,
			Platform:  model.PlatformTwitch,
			Service:   "Живой чат RU",
			Channel:   "ch",
			Date:      "15.06",
			Time:      "14:00",
			Amount:    319,
			Status:    model.OrderStatusPaid,
			CreatedAt: time.Date(2026, 6, 14, 12, 30, 0, 0, time.UTC),
		},
	}

	got := formatOrderCard(card)

	for _, want := range []string{
		"Заказ #7",
		"@streamer (ID: 10)",
		"Услуга: Живой чат RU",
		"Платформа: Twitch",
		"Сумма: 319 руб",
		"Статус: paid",
		"Создан: 2026-06-14 12:30:00",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("order card missing %q:\n%s", want, got)
		}
	}
}

func TestFormatPaymentLink(t *testing.T) {
	link := &service.PaymentLink{OrderID: 1, Amount: 150, PayURL: "https://pay.test/1"}

	got := formatPaymentLink(link, "После оплаты заказ будет принят в обработку.")

	for _, want := range []string{
		"Сумма к оплате: 150 руб (~2.00 USDT)",
		"Оплатите по ссылке: https://pay.test/1",
		"После оплаты заказ будет принят в обработку.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("payment link missing %q:\n%s", want, got)
		}
	}
}

func TestFormatBalanceChange(t *testing.T) {
	got := formatBalanceChange(&service.BalanceChange{
		UserID:     10,
		Delta:      -50,
		OldBalance: 200,
		NewBalance: 150,
	})

	for _, want := range []string{
		"Баланс пользователя 10 изменен.",
		"Старый баланс: 200 руб",
		"Изменение: -50 руб",
		"Новый баланс: 150 руб",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("balance change missing %q:\n%s", want, got)
		}
	}

	got = formatBalanceChange(&service.BalanceChange{UserID: 10, Delta: 50, OldBalance: 0, NewBalance: 50})
	if !strings.Contains(got, "Изменение: +50 руб") {
		t.Errorf("positive delta missing sign:\n%s", got)
	}
}
