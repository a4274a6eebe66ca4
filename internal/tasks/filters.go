package tasks

import (
	"regexp"
	"strings"
)

// Thinking models wrap their reasoning in <think>...</think>; partial
// responses can carry a closing tag with no opener.
var (
	thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)
	thinkTailRe  = regexp.MustCompile(`(?s)^.*?</think>\s*`)

	answerLetterRe = regexp.MustCompile(`\b([A-Da-d])\b`)
	answerDigitRe  = regexp.MustCompile(`\b([1-4])\b`)
)

var digitToLetter = map[string]string{"1": "A", "2": "B", "3": "C", "4": "D"}
var letterToDigit = map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"}

// StripThinkingTags removes <think>...</think> blocks and orphan
// closing tags from a model response.
func StripThinkingTags(s string) string {
	s = thinkBlockRe.ReplaceAllString(s, "")
	s = thinkTailRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractAnswerLetter pulls a single A-D answer out of a response,
// accepting a 1-4 digit as a fallback. Returns "" when no answer is
// found.
func ExtractAnswerLetter(s string) string {
	clean := StripThinkingTags(s)

	if m := answerLetterRe.FindStringSubmatch(clean); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := answerDigitRe.FindStringSubmatch(clean); m != nil {
		if letter, ok := digitToLetter[m[1]]; ok {
			return letter
		}
	}
	return ""
}

// ExtractAnswerDigit pulls a single 1-4 answer out of a response,
// accepting an A-D letter as a fallback.
func ExtractAnswerDigit(s string) string {
	clean := StripThinkingTags(s)

	if m := answerDigitRe.FindStringSubmatch(clean); m != nil {
		return m[1]
	}
	if m := answerLetterRe.FindStringSubmatch(clean); m != nil {
		if digit, ok := letterToDigit[strings.ToUpper(m[1])]; ok {
			return digit
		}
	}
	return ""
}
