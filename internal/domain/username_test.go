package domain

import "testing"

func TestValidUsername(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"alice.01", true},
		{"bob", true},
		{"a_b", true},
		{"ABC123", true},
		{"abcdefghij1234567890", true}, // exactly 20

		{"", false},
		{"ab", false},                    // too short
		{"a..b", false},                  // doubled separator
		{"a__b", false},                  // doubled separator
		{"a._b", false},                  // mixed doubled separator
		{"_abc", false},                  // leading separator
		{".abc", false},                  // leading separator
		{"abc_", false},                  // trailing separator
		{"abc.", false},                  // trailing separator
		{"has space", false},             // illegal character
		{"hyphen-name", false},           // illegal character
		{"abcdefghij1234567890x", false}, // 21 chars
	}

	for _, tc := range cases {
		if got := ValidUsername(tc.name); got != tc.want {
			t.Errorf("ValidUsername(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
