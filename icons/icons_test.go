package icons

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		key  string
		want Icon
	}{
		{"database", Database},
		{"  DB ", Database},
		{"gear", Settings},
		{"", Default},
		{"no-such-icon", Default},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := Lookup(tt.key); got != tt.want {
				t.Errorf("Lookup(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestCanonicalKeysRoundTrip(t *testing.T) {
	seen := map[rune]Icon{}
	for _, icon := range All {
		if icon != Default && Lookup(icon.String()) != icon {
			t.Errorf("Lookup(%q) did not return %v", icon.String(), icon)
		}
		if prev, ok := seen[icon.Glyph()]; ok {
			t.Errorf("%v and %v share glyph %q", prev, icon, icon.Glyph())
		}
		seen[icon.Glyph()] = icon
	}
}

func TestKnown(t *testing.T) {
	if !Known("") || !Known("mail") || Known("unicorn") {
		t.Error("Known returned an unexpected result")
	}
}
