package key

import "testing"

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyNone, "None"},
		{KeyEscape, "Escape"},
		{KeyBackspace, "Backspace"},
		{KeyLeft, "Left"},
		{KeyF12, "F12"},
		{KeyRune, "Rune"},
		{Key(999), "Key(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyIsNavigationKey(t *testing.T) {
	tests := []struct {
		key  Key
		want bool
	}{
		{KeyUp, true},
		{KeyDown, true},
		{KeyLeft, true},
		{KeyRight, true},
		{KeyHome, true},
		{KeyEnd, true},
		{KeyPageUp, true},
		{KeyPageDown, true},
		{KeyBackspace, false},
		{KeyEnter, false},
		{KeyF1, false},
		{KeyRune, false},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			if got := tt.key.IsNavigationKey(); got != tt.want {
				t.Errorf("Key.IsNavigationKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyFromName(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"Enter", KeyEnter},
		{"return", KeyEnter},
		{"BS", KeyBackspace},
		{"backspace", KeyBackspace},
		{"pgdn", KeyPageDown},
		{"ArrowLeft", KeyLeft},
		{"f5", KeyF5},
		{"rune", KeyNone},
		{"nonsense", KeyNone},
		{"", KeyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyFromName(tt.name); got != tt.want {
				t.Errorf("KeyFromName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
