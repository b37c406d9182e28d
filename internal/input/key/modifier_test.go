package key

import "testing"

func TestModifierString(t *testing.T) {
	tests := []struct {
		mod  Modifier
		want string
	}{
		{ModNone, ""},
		{ModCtrl, "Ctrl"},
		{ModCtrl | ModShift, "Ctrl+Shift"},
		{ModMeta | ModAlt, "Alt+Meta"},
	}

	for _, tt := range tests {
		if got := tt.mod.String(); got != tt.want {
			t.Errorf("Modifier(%d).String() = %q, want %q", tt.mod, got, tt.want)
		}
	}
}

func TestModifierFromName(t *testing.T) {
	tests := []struct {
		name string
		want Modifier
	}{
		{"Ctrl", ModCtrl},
		{"control", ModCtrl},
		{"cmd", ModMeta},
		{"D", ModMeta},
		{"option", ModAlt},
		{"s", ModShift},
		{"hyper", ModNone},
	}

	for _, tt := range tests {
		if got := ModifierFromName(tt.name); got != tt.want {
			t.Errorf("ModifierFromName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestModifierWith(t *testing.T) {
	m := ModNone.With(ModCtrl).With(ModShift)
	if !m.HasCtrl() || !m.HasShift() {
		t.Errorf("expected Ctrl and Shift, got %v", m)
	}
	if m.HasAlt() || m.HasMeta() {
		t.Errorf("unexpected Alt or Meta in %v", m)
	}
}
