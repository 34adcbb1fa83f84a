// Package scoring evaluates generated subtitle tracks against reference
// tracks using word error rate and smoothed unigram BLEU.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"sublate/internal/subtitle"
)

// Metrics holds the evaluation result for one subtitle track pair.
type Metrics struct {
	WER  float64 `json:"wer"`
	BLEU float64 `json:"bleu"`
}

// Evaluate compares a generated track against a reference track.
func Evaluate(referencePath, hypothesisPath string) (Metrics, error) {
	refText, err := trackText(referencePath)
	if err != nil {
		return Metrics{}, fmt.Errorf("reference: %w", err)
	}
	hypText, err := trackText(hypothesisPath)
	if err != nil {
		return Metrics{}, fmt.Errorf("hypothesis: %w", err)
	}
	refTokens := Tokenize(refText)
	hypTokens := Tokenize(hypText)
	return Metrics{
		WER:  WER(refTokens, hypTokens),
		BLEU: BLEU1(refTokens, hypTokens),
	}, nil
}

// trackText extracts the plain cue text from a subtitle file, joining all
// cues into one space-separated string.
func trackText(path string) (string, error) {
	cues, err := subtitle.ReadTrack(path)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(cues))
	for _, cue := range cues {
		parts = append(parts, strings.ReplaceAll(cue.Text, "\n", " "))
	}
	return strings.Join(parts, " "), nil
}

// Tokenize lowercases, strips punctuation, and splits text on whitespace.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

// WER computes word error rate as token-level edit distance over the
// reference length. An empty reference scores zero.
func WER(reference, hypothesis []string) float64 {
	if len(reference) == 0 {
		return 0
	}
	return float64(editDistance(reference, hypothesis)) / float64(len(reference))
}

// editDistance is the Levenshtein distance between token sequences, using a
// two-row rolling table.
func editDistance(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min3(prev[j-1], prev[j], curr[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// BLEU1 computes smoothed unigram BLEU with a brevity penalty. Counts are
// clipped against the reference so repeated hypothesis tokens cannot inflate
// precision, and zero-match hypotheses receive a small smoothed score
// instead of a hard zero.
func BLEU1(reference, hypothesis []string) float64 {
	if len(hypothesis) == 0 {
		return 0
	}

	refCounts := make(map[string]int, len(reference))
	for _, token := range reference {
		refCounts[token]++
	}
	matches := 0
	for _, token := range hypothesis {
		if refCounts[token] > 0 {
			refCounts[token]--
			matches++
		}
	}

	var precision float64
	if matches == 0 {
		precision = 1 / float64(2*len(hypothesis))
	} else {
		precision = float64(matches) / float64(len(hypothesis))
	}

	return brevityPenalty(len(reference), len(hypothesis)) * precision
}

func brevityPenalty(refLen, hypLen int) float64 {
	if hypLen >= refLen || refLen == 0 {
		return 1
	}
	return math.Exp(1 - float64(refLen)/float64(hypLen))
}
