// Package validation содержит функции валидации пользовательского ввода.
package validation

import (
	"strconv"
	"strings"
)

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// IsValidDate проверяет дату стрима в формате ДД.ММ.
// Проверяется только форма записи, не календарная корректность.
func IsValidDate(s string) bool {
	return len(s) == 5 && s[2] == '.' && allDigits(s[:2]) && allDigits(s[3:])
}

// IsValidTime проверяет время начала стрима в формате ЧЧ:ММ.
// Проверяется только форма записи, не календарная корректность.
func IsValidTime(s string) bool {
	return len(s) == 5 && s[2] == ':' && allDigits(s[:2]) && allDigits(s[3:])
}

// ParseAmount разбирает положительную целую сумму в рублях.
func ParseAmount(s string) (int64, bool) {
	if !allDigits(s) {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ParseUserID разбирает telegram-идентификатор пользователя.
func ParseUserID(s string) (int64, bool) {
	if !allDigits(s) {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// ParseBalanceChange разбирает строку вида "<id> <±сумма>" для изменения
// баланса администратором.
func ParseBalanceChange(s string) (userID int64, delta int64, ok bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, false
	}

	userID, ok = ParseUserID(fields[0])
	if !ok {
		return 0, 0, false
	}

	raw := fields[1]
	if strings.HasPrefix(raw, "-") {
		v, valid := ParseAmount(raw[1:])
		if !valid {
			return 0, 0, false
		}
		return userID, -v, true
	}

	delta, ok = ParseAmount(raw)
	if !ok {
		return 0, 0, false
	}
	return userID, delta, true
}
