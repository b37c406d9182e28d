package key

import "testing"

func TestFromDOM(t *testing.T) {
	tests := []struct {
		name string
		mods Modifier
		want Event
	}{
		{"a", ModNone, Event{Key: KeyRune, Rune: 'a'}},
		{"V", ModCtrl, Event{Key: KeyRune, Rune: 'V', Modifiers: ModCtrl}},
		{"e\u0301", ModNone, Event{Key: KeyRune, Rune: 'e'}},
		{"\u00e9", ModNone, Event{Key: KeyRune, Rune: '\u00e9'}},
		{"ab", ModNone, Event{Key: KeyNone}},
		{"ArrowLeft", ModNone, Event{Key: KeyLeft}},
		{"Backspace", ModNone, Event{Key: KeyBackspace}},
		{"Insert", ModShift, Event{Key: KeyInsert, Modifiers: ModShift}},
		{"Shift", ModShift, Event{Key: KeyNone, Modifiers: ModShift}},
		{"Unidentified", ModNone, Event{Key: KeyNone}},
		{"", ModNone, Event{Key: KeyNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDOM(tt.name, tt.mods)
			if !sameKey(got, tt.want) {
				t.Errorf("FromDOM(%q) = %#v, want %#v", tt.name, got, tt.want)
			}
		})
	}
}
