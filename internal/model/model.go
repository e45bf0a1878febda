// Package model содержит доменные сущности бота продвижения стримов.
package model

import (
	"strconv"
	"time"
)

// Platform — стриминговая платформа, на которой выполняется продвижение.
type Platform string

const (
	PlatformKick    Platform = "Kick"
	PlatformYouTube Platform = "YouTube"
	PlatformTwitch  Platform = "Twitch"
)

// Platforms перечисляет поддерживаемые платформы в порядке отображения.
var Platforms = []Platform{PlatformKick, PlatformYouTube, PlatformTwitch}

// ParsePlatform возвращает платформу по её названию.
func ParsePlatform(s string) (Platform, bool) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// ServiceInfo описывает услугу продвижения: цена за единицу, минимальный объём
// и единица измерения.
type ServiceInfo struct {
	Price int64
	Min   int
	Unit  string
}

// ServiceNames перечисляет услуги в порядке отображения в меню.
var ServiceNames = []string{"Подписчики", "Живой чат RU", "Живой чат ENG", "Зрители"}

// Services — прайс-лист услуг. Цены в рублях за единицу.
var Services = map[string]ServiceInfo{
	"Подписчики":    {Price: 20, Min: 10, Unit: "шт"},
	"Живой чат RU":  {Price: 319, Min: 1, Unit: "час"},
	"Живой чат ENG": {Price: 419, Min: 1, Unit: "час"},
	"Зрители":       {Price: 1, Min: 10, Unit: "шт"},
}

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusInProgress     OrderStatus = "in_progress"
	OrderStatusRejected       OrderStatus = "rejected"
	OrderStatusCompleted      OrderStatus = "completed"
)

// transitions задаёт замкнутый граф переходов статусов заказа.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingPayment: {OrderStatusPaid},
	OrderStatusPaid:           {OrderStatusInProgress, OrderStatusRejected, OrderStatusCompleted},
	OrderStatusInProgress:     {OrderStatusCompleted},
}

// CanTransitionTo сообщает, допустим ли переход из текущего статуса в указанный.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// User представляет пользователя бота. Ключом записи служит telegram-идентификатор.
type User struct {
	Balance          int64     `json:"balance"`
	Orders           []int64   `json:"orders"`
	RegistrationDate time.Time `json:"registration_date"`
	Username         string    `json:"username"`
}

// Order описывает заказ услуги продвижения. Сумма фиксируется при создании
// и далее не меняется; invoice_id, будучи установленным, не переназначается.
type Order struct {
	UserID    int64       `json:"user_id"`
	Platform  Platform    `json:"platform"`
	Service   string      `json:"service"`
	Channel   string      `json:"channel"`
	Date      string      `json:"date"`
	Time      string      `json:"time"`
	Amount    int64       `json:"amount"`
	Status    OrderStatus `json:"status"`
	InvoiceID int64       `json:"invoice_id,omitempty"`
	PayURL    string      `json:"pay_url,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	PaidAt    *time.Time  `json:"paid_at,omitempty"`
}

// Settings содержит служебные данные документа состояния.
type Settings struct {
	// CreditedInvoices — идентификаторы инвойсов, по которым уже зачислено
	// пополнение баланса. Защита от повторного зачисления.
	CreditedInvoices []int64 `json:"credited_invoices,omitempty"`
}

// InvoiceCredited сообщает, было ли уже зачисление по указанному инвойсу.
func (s *Settings) InvoiceCredited(invoiceID int64) bool {
	for _, id := range s.CreditedInvoices {
		if id == invoiceID {
			return true
		}
	}
	return false
}

// State — полный документ состояния бота.
type State struct {
	Users       map[string]*User  `json:"users"`
	Orders      map[string]*Order `json:"orders"`
	Admins      []int64           `json:"admins"`
	Settings    Settings          `json:"settings"`
	NextOrderID int64             `json:"next_order_id"`
}

// NewState создаёт пустое состояние с указанным списком администраторов.
func NewState(admins []int64) *State {
	return &State{
		Users:       make(map[string]*User),
		Orders:      make(map[string]*Order),
		Admins:      append([]int64(nil), admins...),
		NextOrderID: 1,
	}
}

// Key возвращает строковый ключ документа для числового идентификатора.
func Key(id int64) string {
	return strconv.FormatInt(id, 10)
}

// User возвращает пользователя по идентификатору.
func (s *State) User(id int64) (*User, bool) {
	u, ok := s.Users[Key(id)]
	return u, ok
}

// Order возвращает заказ по идентификатору.
func (s *State) Order(id int64) (*Order, bool) {
	o, ok := s.Orders[Key(id)]
	return o, ok
}

// IsAdmin сообщает, входит ли пользователь в список администраторов.
func (s *State) IsAdmin(id int64) bool {
	for _, a := range s.Admins {
		if a == id {
			return true
		}
	}
	return false
}

// Clone возвращает глубокую копию состояния.
func (s *State) Clone() *State {
	c := &State{
		Users:       make(map[string]*User, len(s.Users)),
		Orders:      make(map[string]*Order, len(s.Orders)),
		Admins:      append([]int64(nil), s.Admins...),
		NextOrderID: s.NextOrderID,
	}
	c.Settings.CreditedInvoices = append([]int64(nil), s.Settings.CreditedInvoices...)
	for k, u := range s.Users {
		cu := *u
		cu.Orders = append([]int64(nil), u.Orders...)
		c.Users[k] = &cu
	}
	for k, o := range s.Orders {
		co := *o
		if o.PaidAt != nil {
			t := *o.PaidAt
			co.PaidAt = &t
		}
		c.Orders[k] = &co
	}
	return c
}
