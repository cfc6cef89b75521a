package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"eng", "en"},
		{"English", "en"},
		{"  EN  ", "en"},
		{"fre", "fr"},
		{"fra", "fr"},
		{"japanese", "ja"},
		{"xx", "xx"}, // unknown two-letter codes pass through
		{"klingon", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisplay(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"en", "English"},
		{"deu", "German"},
		{"chinese", "Chinese"},
		{"xx", "XX"},
		{"", "Unknown"},
	}
	for _, tc := range cases {
		if got := Display(tc.in); got != tc.want {
			t.Errorf("Display(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
