// Package dialog хранит эфемерное состояние диалогов: на каждого пользователя
// один шаг конечного автомата и частично собранные поля заказа или пополнения.
package dialog

import (
	"context"
	"sync"
	"time"

	"github.com/mmeshcher/streampromo-bot/internal/model"
)

// Step — имя текущего шага диалога.
type Step string

// Шаги оформления заказа.
const (
	StepChoosingPlatform Step = "choosing_platform"
	StepChoosingService  Step = "choosing_service"
	StepChoosingDate     Step = "choosing_date"
	StepChoosingTime     Step = "choosing_time"
	StepEnteringChannel  Step = "entering_channel"
	StepConfirmation     Step = "confirmation"
)

// Шаги пополнения баланса.
const (
	StepTopUpAmount Step = "choosing_amount"
	StepTopUpMethod Step = "confirmation_of_payment_method"
)

// Шаги админ-панели.
const (
	StepAdminManagingOrders  Step = "managing_orders"
	StepAdminAddingAdmin     Step = "adding_admin"
	StepAdminRemovingAdmin   Step = "removing_admin"
	StepAdminChangingBalance Step = "changing_balance"
)

// State — накопленные данные одного диалога.
type State struct {
	Step        Step
	Platform    model.Platform
	Service     string
	Date        string
	Time        string
	Channel     string
	TopUpAmount int64
	UpdatedAt   time.Time
}

// Manager хранит состояния диалогов по идентификатору пользователя.
// Состояние живёт не дольше одного завершённого или прерванного диалога;
// брошенные диалоги выметаются по тайм-ауту неактивности.
type Manager struct {
	mu     sync.Mutex
	states map[int64]*State
	ttl    time.Duration
}

// NewManager создаёт менеджер диалогов с указанным тайм-аутом неактивности.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		states: make(map[int64]*State),
		ttl:    ttl,
	}
}

// Get возвращает копию состояния диалога пользователя.
func (m *Manager) Get(userID int64) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[userID]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Set сохраняет состояние диалога пользователя.
func (m *Manager) Set(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st.UpdatedAt = time.Now()
	m.states[userID] = &st
}

// Clear удаляет состояние диалога пользователя.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

// Sweep удаляет диалоги, неактивные дольше тайм-аута, и возвращает их число.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	swept := 0
	for id, st := range m.states {
		if now.Sub(st.UpdatedAt) > m.ttl {
			delete(m.states, id)
			swept++
		}
	}
	return swept
}

// StartSweeper запускает фоновую очистку брошенных диалогов.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep(time.Now())
			}
		}
	}()
}
