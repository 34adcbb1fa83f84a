package language

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Normalize parses any recognized language identifier (ISO 639-1, ISO 639-2,
// BCP 47 tag, or an English language name) and returns the canonical
// two-letter code.
func Normalize(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("empty language code")
	}
	tag, err := xlang.Parse(code)
	if err != nil {
		if byName, ok := parseEnglishName(code); ok {
			return byName, nil
		}
		return "", fmt.Errorf("unrecognized language %q: %w", code, err)
	}
	base, confidence := tag.Base()
	if confidence == xlang.No {
		return "", fmt.Errorf("unrecognized language %q", code)
	}
	return base.String(), nil
}

// DisplayName returns the English display name for a language code, or the
// input unchanged when it cannot be resolved.
func DisplayName(code string) string {
	tag, err := xlang.Parse(strings.TrimSpace(code))
	if err != nil {
		return code
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// parseEnglishName resolves full English names ("vietnamese") that the BCP 47
// parser rejects.
func parseEnglishName(name string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, lang := range detectableLanguages {
		if strings.ToLower(lang.String()) == want {
			return strings.ToLower(lang.IsoCode639_1().String()), true
		}
	}
	return "", false
}

// detectableLanguages bounds the detector's search space to the languages the
// recognition and translation models actually cover.
var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.Vietnamese,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Russian,
	lingua.Italian,
	lingua.Thai,
	lingua.Indonesian,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Detect guesses the language of a text sample and returns its two-letter
// code. Returns false when no language can be determined with confidence.
func Detect(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			Build()
	})
	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
