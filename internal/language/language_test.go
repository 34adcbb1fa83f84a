package language

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"vi", "vi"},
		{"vie", "vi"},
		{"zh", "zh"},
		{"en-US", "en"},
		{"vietnamese", "vi"},
		{"English", "en"},
	}
	for _, tc := range tests {
		got, err := Normalize(tc.input)
		if err != nil {
			t.Errorf("Normalize(%q): %v", tc.input, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "not-a-language-at-all-xx"} {
		if _, err := Normalize(input); err == nil {
			t.Errorf("Normalize(%q) succeeded, want error", input)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("vi"); got != "Vietnamese" {
		t.Errorf("DisplayName(vi) = %q, want Vietnamese", got)
	}
	if got := DisplayName("en"); got != "English" {
		t.Errorf("DisplayName(en) = %q, want English", got)
	}
}

func TestDetect(t *testing.T) {
	code, ok := Detect("the quick brown fox jumps over the lazy dog near the river bank")
	if !ok || code != "en" {
		t.Errorf("Detect(english sample) = %q, %v; want en, true", code, ok)
	}
	if _, ok := Detect("   "); ok {
		t.Error("Detect(blank) should report no result")
	}
}
