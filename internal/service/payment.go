package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/mmeshcher/streampromo-bot/internal/cryptopay"
	"github.com/mmeshcher/streampromo-bot/internal/model"
	"github.com/mmeshcher/streampromo-bot/internal/store"
)

const expiredPaymentText = "Время на оплату истекло. Если вы произвели оплату, обратитесь в поддержку."

// PaymentLink описывает выставленный инвойс для показа пользователю.
type PaymentLink struct {
	OrderID int64
	Amount  int64
	PayURL  string
}

// ApproxUSDT возвращает примерную сумму инвойса в USDT по фиксированному курсу.
func (p *PaymentLink) ApproxUSDT() float64 {
	return float64(p.Amount) / RubPerUSDT
}

// PayLatestOrder выставляет инвойс на последний заказ пользователя, ожидающий
// оплаты, и запускает фоновую сверку. Если инвойс по заказу уже выставлен,
// повторный не создаётся: возвращается сохранённая ссылка, а сверка
// перезапускается, только если её задача больше не активна.
func (s *Service) PayLatestOrder(ctx context.Context, userID int64) (*PaymentLink, error) {
	st := s.storage.Snapshot()

	u, ok := st.User(userID)
	if !ok {
		return nil, ErrUserNotFound
	}

	var orderID int64
	var order *model.Order
	for _, id := range u.Orders {
		o, ok := st.Order(id)
		if ok && o.Status == model.OrderStatusPendingPayment {
			orderID = id
			order = o
		}
	}
	if order == nil {
		return nil, ErrNoPendingOrders
	}

	if order.InvoiceID != 0 {
		// Инвойс уже выставлен и не переназначается.
		s.startOrderReconciliation(order.InvoiceID, orderID, userID)
		return &PaymentLink{OrderID: orderID, Amount: order.Amount, PayURL: order.PayURL}, nil
	}

	invoice, err := s.provider.CreateInvoice(ctx,
		order.Amount,
		fmt.Sprintf("Оплата заказа #%d", orderID),
		fmt.Sprintf("Оплата заказа %d", orderID),
		model.Key(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	err = s.storage.Mutate(func(st *model.State) error {
		o, ok := st.Order(orderID)
		if !ok {
			return ErrOrderNotFound
		}
		if o.InvoiceID != 0 {
			return store.ErrNoChange
		}
		o.InvoiceID = invoice.InvoiceID
		o.PayURL = invoice.PayURL
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("attach invoice: %w", err)
	}

	s.startOrderReconciliation(invoice.InvoiceID, orderID, userID)

	return &PaymentLink{OrderID: orderID, Amount: order.Amount, PayURL: invoice.PayURL}, nil
}

// TopUp выставляет инвойс на пополнение баланса и запускает фоновую сверку.
// Сумма меньше минимальной отклоняется до обращения к провайдеру.
func (s *Service) TopUp(ctx context.Context, userID int64, amount int64) (*PaymentLink, error) {
	if amount < MinTopUpAmount {
		return nil, ErrTopUpBelowMinimum
	}

	if _, ok := s.storage.Snapshot().User(userID); !ok {
		return nil, ErrUserNotFound
	}

	invoice, err := s.provider.CreateInvoice(ctx,
		amount,
		fmt.Sprintf("Пополнение баланса на %d руб", amount),
		fmt.Sprintf("Пополнение баланса пользователя %d", userID),
		fmt.Sprintf("deposit_%d", userID),
	)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.startTopUpReconciliation(invoice.InvoiceID, userID, amount)

	return &PaymentLink{Amount: amount, PayURL: invoice.PayURL}, nil
}

// startOrderReconciliation запускает сверку оплаты заказа.
func (s *Service) startOrderReconciliation(invoiceID, orderID, userID int64) {
	s.startReconciliation(invoiceID, userID, func(ctx context.Context) {
		s.finalizeOrderPayment(ctx, orderID, invoiceID)
	})
}

// startTopUpReconciliation запускает сверку оплаты пополнения.
func (s *Service) startTopUpReconciliation(invoiceID, userID, amount int64) {
	s.startReconciliation(invoiceID, userID, func(ctx context.Context) {
		s.finalizeTopUp(ctx, userID, invoiceID, amount)
	})
}

// startReconciliation регистрирует фоновую задачу сверки для инвойса.
// Реестр задач исключает второй поллер на тот же инвойс.
func (s *Service) startReconciliation(invoiceID, userID int64, onPaid func(ctx context.Context)) {
	s.mu.Lock()
	if _, running := s.tasks[invoiceID]; running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.tasks[invoiceID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.removeTask(invoiceID)
		s.reconcile(ctx, invoiceID, userID, onPaid)
	}()
}

func (s *Service) removeTask(invoiceID int64) {
	s.mu.Lock()
	if cancel, ok := s.tasks[invoiceID]; ok {
		cancel()
		delete(s.tasks, invoiceID)
	}
	s.mu.Unlock()
}

// CancelReconciliation останавливает задачу сверки указанного инвойса, если
// она активна. Сигнал отмены проверяется на каждой итерации опроса.
func (s *Service) CancelReconciliation(invoiceID int64) {
	s.removeTask(invoiceID)
}

var errInvoiceNotPaid = errors.New("invoice not paid yet")

// reconcile опрашивает провайдера с фиксированным интервалом в пределах
// бюджета попыток. Оплата применяет onPaid ровно один раз; исчерпание
// бюджета отправляет пользователю уведомление об истечении окна оплаты
// без изменения финансового состояния. Временные ошибки провайдера
// логируются и не считаются терминальными.
func (s *Service) reconcile(ctx context.Context, invoiceID, userID int64, onPaid func(ctx context.Context)) {
	backoff := retry.WithMaxRetries(uint64(s.pollAttempts-1), retry.NewConstant(s.pollInterval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		invoice, err := s.provider.GetInvoice(ctx, invoiceID)
		if err != nil {
			s.logger.Warn("invoice status check failed",
				zap.Int64("invoiceID", invoiceID),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		if invoice.Status == cryptopay.StatusPaid {
			return nil
		}
		return retry.RetryableError(errInvoiceNotPaid)
	})

	if ctx.Err() != nil {
		// Задача отменена (заказ отклонён или процесс останавливается).
		s.logger.Info("reconciliation cancelled", zap.Int64("invoiceID", invoiceID))
		return
	}

	if err != nil {
		s.logger.Info("payment window expired", zap.Int64("invoiceID", invoiceID))
		s.notify(ctx, userID, expiredPaymentText)
		return
	}

	onPaid(ctx)
}

// finalizeOrderPayment переводит заказ в paid и рассылает уведомления.
// Проверка статуса и соответствия инвойса выполняется внутри одной мутации,
// поэтому конкурирующая задача сверки того же инвойса не зачислит оплату
// повторно.
func (s *Service) finalizeOrderPayment(ctx context.Context, orderID, invoiceID int64) {
	applied := false
	var ownerID int64
	var ownerName string
	var admins []int64

	err := s.storage.Mutate(func(st *model.State) error {
		o, ok := st.Order(orderID)
		if !ok {
			return store.ErrNoChange
		}
		if o.Status != model.OrderStatusPendingPayment || o.InvoiceID != invoiceID {
			return store.ErrNoChange
		}

		now := time.Now()
		o.Status = model.OrderStatusPaid
		o.PaidAt = &now

		ownerID = o.UserID
		if u, ok := st.User(o.UserID); ok {
			ownerName = u.Username
		}
		admins = append([]int64(nil), st.Admins...)
		applied = true
		return nil
	})
	if err != nil {
		s.logger.Error("finalize order payment", zap.Int64("orderID", orderID), zap.Error(err))
		return
	}
	if !applied {
		return
	}

	s.logger.Info("order paid", zap.Int64("orderID", orderID), zap.Int64("invoiceID", invoiceID))

	s.notify(ctx, ownerID, "✅ Оплата прошла успешно! Ваш заказ принят в обработку.")
	s.notifyAdmins(ctx, admins,
		fmt.Sprintf("Новый оплаченный заказ #%d от пользователя @%s", orderID, ownerName))
}

// finalizeTopUp зачисляет пополнение на баланс пользователя. Идентификатор
// инвойса записывается в документ вместе с зачислением, поэтому повторная
// финализация того же инвойса не изменит баланс.
func (s *Service) finalizeTopUp(ctx context.Context, userID, invoiceID, amount int64) {
	applied := false

	err := s.storage.Mutate(func(st *model.State) error {
		if st.Settings.InvoiceCredited(invoiceID) {
			return store.ErrNoChange
		}
		u, ok := st.User(userID)
		if !ok {
			return ErrUserNotFound
		}
		u.Balance += amount
		st.Settings.CreditedInvoices = append(st.Settings.CreditedInvoices, invoiceID)
		applied = true
		return nil
	})
	if err != nil {
		s.logger.Error("finalize top-up", zap.Int64("userID", userID), zap.Error(err))
		return
	}
	if !applied {
		return
	}

	s.logger.Info("balance credited",
		zap.Int64("userID", userID),
		zap.Int64("invoiceID", invoiceID),
		zap.Int64("amount", amount),
	)

	s.notify(ctx, userID, fmt.Sprintf("✅ Баланс успешно пополнен на %d руб!", amount))
}
