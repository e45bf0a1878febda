package validation

import "testing"

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"15.06", true},
		{"01.01", true},
		{"99.99", true}, // только форма записи, без календарной проверки
		{"15-06", false},
		{"15.6", false},
		{"5.06", false},
		{"15.066", false},
		{"", false},
		{"ab.cd", false},
	}

	for _, tt := range tests {
		if got := IsValidDate(tt.input); got != tt.want {
			t.Errorf("IsValidDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsValidTime(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"14:00", true},
		{"00:00", true},
		{"14.00", false},
		{"4:00", false},
		{"14:0", false},
		{"", false},
		{"aa:bb", false},
	}

	for _, tt := range tests {
		if got := IsValidTime(tt.input); got != tt.want {
			t.Errorf("IsValidTime(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"100", 100, true},
		{"1", 1, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"12.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseAmount(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseAmount(%q) = %d, %v, want %d, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseBalanceChange(t *testing.T) {
	tests := []struct {
		input  string
		userID int64
		delta  int64
		ok     bool
	}{
		{"123456 500", 123456, 500, true},
		{"123456 -500", 123456, -500, true},
		{"123456", 0, 0, false},
		{"123456 500 7", 0, 0, false},
		{"abc 500", 0, 0, false},
		{"123456 abc", 0, 0, false},
		{"123456 -0", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		userID, delta, ok := ParseBalanceChange(tt.input)
		if userID != tt.userID || delta != tt.delta || ok != tt.ok {
			t.Errorf("ParseBalanceChange(%q) = %d, %d, %v, want %d, %d, %v",
				tt.input, userID, delta, ok, tt.userID, tt.delta, tt.ok)
		}
	}
}
