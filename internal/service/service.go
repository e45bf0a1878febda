// Package service реализует бизнес-логику бота: заказы, платежи,
// сверку оплат и действия администраторов.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/streampromo-bot/internal/cryptopay"
	"github.com/mmeshcher/streampromo-bot/internal/model"
	"github.com/mmeshcher/streampromo-bot/internal/store"
)

// MinTopUpAmount — минимальная сумма пополнения баланса в рублях.
const MinTopUpAmount = 100

// RubPerUSDT — курс для отображения примерной суммы в USDT.
const RubPerUSDT = 75

var (
	// ErrUnknownService возвращается при заказе услуги, отсутствующей в прайс-листе.
	ErrUnknownService = errors.New("unknown service")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrOrderNotFound возвращается, если заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition возвращается при недопустимом переходе статуса заказа.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrNoPendingOrders возвращается, если у пользователя нет заказов, ожидающих оплаты.
	ErrNoPendingOrders = errors.New("no orders pending payment")
	// ErrTopUpBelowMinimum возвращается при пополнении меньше минимальной суммы.
	ErrTopUpBelowMinimum = errors.New("top-up amount below minimum")
	// ErrAlreadyAdmin возвращается при повторном назначении администратора.
	ErrAlreadyAdmin = errors.New("user is already an admin")
	// ErrNotAdmin возвращается при снятии пользователя, не являющегося администратором.
	ErrNotAdmin = errors.New("user is not an admin")
	// ErrLastAdmin возвращается при попытке снять последнего администратора.
	ErrLastAdmin = errors.New("cannot remove the last admin")
	// ErrSelfRemoval возвращается при попытке администратора снять самого себя.
	ErrSelfRemoval = errors.New("admin cannot remove themselves")
	// ErrNegativeBalance возвращается, если изменение сделало бы баланс отрицательным.
	ErrNegativeBalance = errors.New("balance cannot become negative")
)

// Storage описывает контракт доступа к документу состояния, используемый сервисом.
type Storage interface {
	Snapshot() *model.State
	Mutate(fn func(st *model.State) error) error
}

// PaymentProvider описывает контракт платёжного провайдера.
type PaymentProvider interface {
	CreateInvoice(ctx context.Context, amount int64, description, hiddenMessage, payload string) (*cryptopay.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID int64) (*cryptopay.Invoice, error)
}

// Notifier описывает контракт исходящих уведомлений. Доставка best-effort:
// сервис никогда не полагается на успех отправки.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, text string) error
}

// Service содержит бизнес-логику бота.
type Service struct {
	storage  Storage
	provider PaymentProvider
	notifier Notifier
	logger   *zap.Logger

	pollInterval time.Duration
	pollAttempts int

	mu    sync.Mutex
	tasks map[int64]context.CancelFunc
	wg    sync.WaitGroup
}

// NewService создаёт сервис с указанными хранилищем, платёжным провайдером
// и каналом уведомлений.
func NewService(storage Storage, provider PaymentProvider, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		storage:      storage,
		provider:     provider,
		notifier:     notifier,
		logger:       logger,
		pollInterval: 30 * time.Second,
		pollAttempts: 30,
		tasks:        make(map[int64]context.CancelFunc),
	}
}

// Close останавливает все фоновые задачи сверки и дожидается их завершения.
func (s *Service) Close() error {
	s.mu.Lock()
	for id, cancel := range s.tasks {
		cancel()
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// RegisterUser создаёт пользователя при первом обращении.
// Возвращает true, если пользователь был создан.
func (s *Service) RegisterUser(ctx context.Context, userID int64, username string) (bool, error) {
	created := false
	err := s.storage.Mutate(func(st *model.State) error {
		if _, ok := st.User(userID); ok {
			return store.ErrNoChange
		}
		st.Users[model.Key(userID)] = &model.User{
			Balance:          0,
			Orders:           []int64{},
			RegistrationDate: time.Now(),
			Username:         username,
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("register user: %w", err)
	}
	return created, nil
}

// IsAdmin сообщает, является ли пользователь администратором.
func (s *Service) IsAdmin(userID int64) bool {
	return s.storage.Snapshot().IsAdmin(userID)
}

// Profile содержит данные профиля пользователя.
type Profile struct {
	RegistrationDate time.Time
	Balance          int64
	OrdersTotal      int
	OrdersPaid       int
}

// GetProfile возвращает профиль пользователя со статистикой заказов.
// Оплаченными считаются заказы, прошедшие статус paid, включая взятые
// в работу и выполненные.
func (s *Service) GetProfile(userID int64) (*Profile, error) {
	st := s.storage.Snapshot()

	u, ok := st.User(userID)
	if !ok {
		return nil, ErrUserNotFound
	}

	paid := 0
	for _, orderID := range u.Orders {
		o, ok := st.Order(orderID)
		if !ok {
			continue
		}
		switch o.Status {
		case model.OrderStatusPaid, model.OrderStatusInProgress, model.OrderStatusCompleted:
			paid++
		}
	}

	return &Profile{
		RegistrationDate: u.RegistrationDate,
		Balance:          u.Balance,
		OrdersTotal:      len(u.Orders),
		OrdersPaid:       paid,
	}, nil
}

// CreateOrder создаёт заказ со статусом pending_payment. Сумма фиксируется
// из прайс-листа в момент создания; идентификатор берётся из монотонного
// счётчика документа. Запись заказа и добавление его в список пользователя
// выполняются одной мутацией.
func (s *Service) CreateOrder(ctx context.Context, userID int64, platform model.Platform, serviceName, date, startTime, channel string) (int64, int64, error) {
	info, ok := model.Services[serviceName]
	if !ok {
		return 0, 0, ErrUnknownService
	}

	var orderID int64
	err := s.storage.Mutate(func(st *model.State) error {
		u, ok := st.User(userID)
		if !ok {
			return ErrUserNotFound
		}

		orderID = st.NextOrderID
		st.NextOrderID++

		st.Orders[model.Key(orderID)] = &model.Order{
			UserID:    userID,
			Platform:  platform,
			Service:   serviceName,
			Channel:   channel,
			Date:      date,
			Time:      startTime,
			Amount:    info.Price,
			Status:    model.OrderStatusPendingPayment,
			CreatedAt: time.Now(),
		}
		u.Orders = append(u.Orders, orderID)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		zap.Int64("orderID", orderID),
		zap.Int64("userID", userID),
		zap.String("service", serviceName),
		zap.Int64("amount", info.Price),
	)

	return orderID, info.Price, nil
}

func (s *Service) notify(ctx context.Context, userID int64, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyUser(ctx, userID, text); err != nil {
		s.logger.Warn("notification failed", zap.Int64("userID", userID), zap.Error(err))
	}
}

func (s *Service) notifyAdmins(ctx context.Context, admins []int64, text string) {
	for _, adminID := range admins {
		s.notify(ctx, adminID, text)
	}
}
