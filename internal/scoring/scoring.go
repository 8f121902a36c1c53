// Package scoring grades interview answers against a question's keywords and
// summarizes completed interviews.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/tinytelemetry/mockview/internal/model"
)

const (
	strongThreshold = 70
	decentThreshold = 40

	maxLengthBonus = 10
	wordsPerPoint  = 10

	// shortest keyword eligible for fuzzy matching
	fuzzyMinRunes = 5
)

// NoAnswerFeedback is returned for empty answers.
const NoAnswerFeedback = "No answer provided. ❌"

// Scorer grades answers. The zero value matches keywords exactly.
type Scorer struct {
	// FuzzyDistance is the largest Levenshtein distance at which a single-word
	// keyword still matches an answer word. Zero disables fuzzy matching.
	FuzzyDistance int
}

// Keywords splits a comma-separated keyword list, trimming and lowercasing
// each entry and dropping empty ones.
func Keywords(raw string) []string {
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Score grades answer against q.
func (s Scorer) Score(q model.Question, answer string) model.Feedback {
	if strings.TrimSpace(answer) == "" {
		return model.Feedback{Score: 0, Feedback: NoAnswerFeedback}
	}

	keywords := Keywords(q.Keywords)
	lower := strings.ToLower(answer)
	words := strings.Fields(answer)

	var matched, missing []string
	for _, kw := range keywords {
		if s.matches(kw, lower, words) {
			matched = append(matched, kw)
		} else {
			missing = append(missing, kw)
		}
	}

	var keywordScore float64
	if len(keywords) > 0 {
		keywordScore = float64(len(matched)) / float64(len(keywords)) * 100
	}
	lengthBonus := math.Min(maxLengthBonus, float64(len(words))/wordsPerPoint)
	final := math.Min(100, keywordScore+lengthBonus)

	return model.Feedback{
		Score:    Round2(final),
		Feedback: feedbackText(final, matched, missing),
		Matched:  matched,
		Missing:  missing,
	}
}

func (s Scorer) matches(kw, lowerAnswer string, words []string) bool {
	if strings.Contains(lowerAnswer, kw) {
		return true
	}
	if s.FuzzyDistance <= 0 || strings.ContainsFunc(kw, unicode.IsSpace) || utf8.RuneCountInString(kw) < fuzzyMinRunes {
		return false
	}
	for _, w := range words {
		w = strings.ToLower(strings.TrimFunc(w, isEdgePunct))
		if w == "" {
			continue
		}
		if levenshtein.ComputeDistance(kw, w) <= s.FuzzyDistance {
			return true
		}
	}
	return false
}

func isEdgePunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func feedbackText(score float64, matched, missing []string) string {
	switch {
	case score >= strongThreshold:
		text := "Strong answer! ✅ You covered the key concepts well."
		if len(matched) > 0 {
			text += fmt.Sprintf(" Keywords covered: %s.", strings.Join(matched, ", "))
		}
		return text
	case score >= decentThreshold:
		text := "Decent answer, but could be improved. "
		if len(missing) > 0 {
			text += fmt.Sprintf("Consider mentioning: %s.", strings.Join(firstN(missing, 3), ", "))
		}
		return text
	default:
		text := "Weak answer. ❌ This concept needs more attention. "
		if len(missing) > 0 {
			text += fmt.Sprintf("Important topics to study: %s.", strings.Join(firstN(missing, 5), ", "))
		}
		return text
	}
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Round2 rounds to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Average returns the mean of scores rounded to two decimals, or 0 for none.
func Average(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return Round2(sum / float64(len(scores)))
}
