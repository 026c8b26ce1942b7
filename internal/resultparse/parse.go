// Package resultparse turns the free-text answer of a suitability
// prediction into structured parts for rendering.
package resultparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Band classifies a score.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Score names.
const (
	Confidence  = "confidence"
	Suitability = "suitability"
)

const alternativesMarker = "Suggested Alternatives:"

// Score is one percentage extracted from the text.
type Score struct {
	Name  string
	Value float64
	Band  Band
	Found bool
}

// StructuredResult is the parsed form of a text answer.
type StructuredResult struct {
	Raw          string
	Scores       []Score // confidence then suitability, only those found
	Negative     bool
	Alternatives []string
	Lines        []string
}

// Empty reports whether the answer had no text at all.
func (r StructuredResult) Empty() bool {
	return strings.TrimSpace(r.Raw) == ""
}

// Score returns the named score; Found is false when the text had none.
func (r StructuredResult) Score(name string) Score {
	for _, s := range r.Scores {
		if s.Name == name {
			return s
		}
	}
	return Score{Name: name, Band: BandLow}
}

var numberRE = regexp.MustCompile(`\d+(?:\.\d+)?`)

// BandFor classifies a percentage.
func BandFor(v float64) Band {
	switch {
	case v > 60:
		return BandHigh
	case v > 35:
		return BandMedium
	default:
		return BandLow
	}
}

// Parse splits text into scores, the negative flag, alternatives and the
// remaining lines. It never fails.
func Parse(text string) StructuredResult {
	res := StructuredResult{Raw: text}
	seen := map[string]bool{}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.Contains(line, "NOT") {
			res.Negative = true
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, alternativesMarker) {
			res.Alternatives = append(res.Alternatives, splitAlternatives(strings.TrimPrefix(trimmed, alternativesMarker))...)
			continue
		}

		if name, ok := scoreMarker(line); ok {
			if !seen[name] {
				seen[name] = true
				v := firstNumber(line)
				res.Scores = append(res.Scores, Score{Name: name, Value: v, Band: BandFor(v), Found: true})
			}
			continue
		}

		res.Lines = append(res.Lines, line)
	}

	// Stable order regardless of which marker appeared first.
	if len(res.Scores) == 2 && res.Scores[0].Name == Suitability {
		res.Scores[0], res.Scores[1] = res.Scores[1], res.Scores[0]
	}
	return res
}

// scoreMarker names the score a line carries. A line mentioning both
// markers, such as "Suitability confidence: 80%", counts as confidence
// only; one line holds one number.
func scoreMarker(line string) (string, bool) {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, Confidence):
		return Confidence, true
	case strings.Contains(lower, Suitability):
		return Suitability, true
	default:
		return "", false
	}
}

func firstNumber(line string) float64 {
	m := numberRE.FindString(line)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

func splitAlternatives(rest string) []string {
	var out []string
	for _, part := range strings.Split(rest, ",") {
		p := strings.TrimSuffix(strings.TrimSpace(part), ".")
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
