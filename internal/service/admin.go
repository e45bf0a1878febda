package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/streampromo-bot/internal/model"
)

// AdminAction — действие администратора над заказом.
type AdminAction string

const (
	ActionConfirm AdminAction = "confirm"
	ActionReject  AdminAction = "reject"
	ActionProcess AdminAction = "process"
)

// actionTargets сопоставляет действия администратора целевым статусам заказа.
var actionTargets = map[AdminAction]model.OrderStatus{
	ActionConfirm: model.OrderStatusCompleted,
	ActionReject:  model.OrderStatusRejected,
	ActionProcess: model.OrderStatusInProgress,
}

// statusNotifications — тексты уведомлений пользователю о смене статуса заказа.
var statusNotifications = map[model.OrderStatus]string{
	model.OrderStatusCompleted:  "✅ Ваш заказ #%d выполнен!",
	model.OrderStatusRejected:   "❌ Ваш заказ #%d отклонен. Для уточнений обратитесь в поддержку.",
	model.OrderStatusInProgress: "🔄 Ваш заказ #%d взят в работу.",
}

// TransitionOrder выполняет админский переход статуса заказа по замкнутому
// графу. Переход из терминального или неоплаченного статуса отклоняется без
// изменения состояния. Успешный переход записывается в хранилище и сопровождается
// ровно одним best-effort уведомлением владельцу заказа; отклонение заказа
// дополнительно останавливает активную задачу сверки его инвойса.
func (s *Service) TransitionOrder(ctx context.Context, orderID int64, action AdminAction) (model.OrderStatus, error) {
	target, ok := actionTargets[action]
	if !ok {
		return "", fmt.Errorf("unknown admin action %q", action)
	}

	var ownerID int64
	var invoiceID int64
	err := s.storage.Mutate(func(st *model.State) error {
		o, ok := st.Order(orderID)
		if !ok {
			return ErrOrderNotFound
		}
		if !o.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
		}
		o.Status = target
		ownerID = o.UserID
		invoiceID = o.InvoiceID
		return nil
	})
	if err != nil {
		return "", err
	}

	if action == ActionReject && invoiceID != 0 {
		// Отклонённый заказ не должен автоматически оплатиться позже.
		s.CancelReconciliation(invoiceID)
	}

	s.logger.Info("order status changed",
		zap.Int64("orderID", orderID),
		zap.String("status", string(target)),
	)

	s.notify(ctx, ownerID, fmt.Sprintf(statusNotifications[target], orderID))

	return target, nil
}

// Stats содержит сводную статистику бота.
type Stats struct {
	TotalUsers   int
	TotalOrders  int
	PaidOrders   int
	TotalRevenue int64
}

// GetStats возвращает сводную статистику: выручка считается по заказам,
// прошедшим оплату, включая взятые в работу и выполненные.
func (s *Service) GetStats() *Stats {
	st := s.storage.Snapshot()

	stats := &Stats{
		TotalUsers:  len(st.Users),
		TotalOrders: len(st.Orders),
	}
	for _, o := range st.Orders {
		switch o.Status {
		case model.OrderStatusPaid, model.OrderStatusInProgress, model.OrderStatusCompleted:
			stats.PaidOrders++
			stats.TotalRevenue += o.Amount
		}
	}
	return stats
}

// OrderSummary — краткая строка списка заказов для админ-панели.
type OrderSummary struct {
	ID     int64
	Status model.OrderStatus
}

// RecentOrders возвращает последние n заказов в порядке убывания идентификатора.
func (s *Service) RecentOrders(n int) []OrderSummary {
	st := s.storage.Snapshot()

	ids := make([]int64, 0, len(st.Orders))
	for i := int64(1); i < st.NextOrderID; i++ {
		if _, ok := st.Order(i); ok {
			ids = append(ids, i)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	if len(ids) > n {
		ids = ids[:n]
	}

	res := make([]OrderSummary, 0, len(ids))
	for _, id := range ids {
		o, _ := st.Order(id)
		res = append(res, OrderSummary{ID: id, Status: o.Status})
	}
	return res
}

// OrderCard — карточка заказа для админ-панели.
type OrderCard struct {
	ID       int64
	Order    model.Order
	Username string
}

// GetOrder возвращает карточку заказа с именем владельца.
func (s *Service) GetOrder(orderID int64) (*OrderCard, error) {
	st := s.storage.Snapshot()

	o, ok := st.Order(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}

	card := &OrderCard{ID: orderID, Order: *o}
	if u, ok := st.User(o.UserID); ok {
		card.Username = u.Username
	}
	return card, nil
}

// AdminIDs возвращает текущий список администраторов.
func (s *Service) AdminIDs() []int64 {
	return s.storage.Snapshot().Admins
}

// AddAdmin назначает пользователя администратором.
func (s *Service) AddAdmin(ctx context.Context, newAdminID int64) error {
	return s.storage.Mutate(func(st *model.State) error {
		if st.IsAdmin(newAdminID) {
			return ErrAlreadyAdmin
		}
		st.Admins = append(st.Admins, newAdminID)
		return nil
	})
}

// RemoveAdmin снимает пользователя с роли администратора. Снять последнего
// администратора или самого себя нельзя.
func (s *Service) RemoveAdmin(ctx context.Context, actorID, adminID int64) error {
	return s.storage.Mutate(func(st *model.State) error {
		if !st.IsAdmin(adminID) {
			return ErrNotAdmin
		}
		if len(st.Admins) <= 1 {
			return ErrLastAdmin
		}
		if adminID == actorID {
			return ErrSelfRemoval
		}
		filtered := st.Admins[:0]
		for _, a := range st.Admins {
			if a != adminID {
				filtered = append(filtered, a)
			}
		}
		st.Admins = filtered
		return nil
	})
}

// BalanceChange описывает результат изменения баланса администратором.
type BalanceChange struct {
	UserID     int64
	Delta      int64
	OldBalance int64
	NewBalance int64
}

// ChangeBalance изменяет баланс пользователя на указанную величину.
// Изменение, делающее баланс отрицательным, отклоняется без мутации.
// Пользователь уведомляется best-effort.
func (s *Service) ChangeBalance(ctx context.Context, userID, delta int64) (*BalanceChange, error) {
	change := &BalanceChange{UserID: userID, Delta: delta}

	err := s.storage.Mutate(func(st *model.State) error {
		u, ok := st.User(userID)
		if !ok {
			return ErrUserNotFound
		}
		if u.Balance+delta < 0 {
			return ErrNegativeBalance
		}
		change.OldBalance = u.Balance
		u.Balance += delta
		change.NewBalance = u.Balance
		return nil
	})
	if err != nil {
		return nil, err
	}

	sign := ""
	if delta >= 0 {
		sign = "+"
	}
	s.notify(ctx, userID, fmt.Sprintf(
		"Ваш баланс был изменен администратором.\nИзменение: %s%d руб\nНовый баланс: %d руб",
		sign, delta, change.NewBalance))

	return change, nil
}

// StartKeepAlive периодически отправляет первому администратору сообщение,
// поддерживающее процесс активным на хостинге.
func (s *Service) StartKeepAlive(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				admins := s.AdminIDs()
				if len(admins) > 0 {
					s.notify(ctx, admins[0], "🤖 Бот активен!")
				}
			}
		}
	}()
}
