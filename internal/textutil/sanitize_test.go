package textutil_test

import (
	"testing"

	"sublate/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"lecture 01.mp4", "lecture 01.mp4"},
		{"a/b\\c:d", "a-b-c-d"},
		{"what?.mkv", "what.mkv"},
		{"  <quoted>\"name\"|  ", "quotedname"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"PT-br", "pt-br"},
		{"zh Hans", "zh_hans"},
		{"", "unknown"},
		{"__", "unknown"},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
