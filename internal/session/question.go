package session

import (
	"strings"
	"unicode"
)

// ExtractNextQuestion returns the tutor message's final sentence when that
// sentence is a question. Text after the last terminator is ignored.
func ExtractNextQuestion(message string) (string, bool) {
	sentences := splitSentences(message)
	if len(sentences) == 0 {
		return "", false
	}
	last := sentences[len(sentences)-1]
	if !strings.HasSuffix(last, "?") {
		return "", false
	}
	return last, true
}

// splitSentences cuts text into sentences ending in runs of . ! or ?.
// A full stop between two digits is a decimal point, not a terminator.
func splitSentences(text string) []string {
	rs := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(rs); i++ {
		if !isTerminator(rs, i) {
			continue
		}
		end := i + 1
		for end < len(rs) && isTerminator(rs, end) {
			end++
		}
		if s := normalizeSpace(string(rs[start:end])); strings.TrimFunc(s, isPunct) != "" {
			out = append(out, s)
		}
		start = end
		i = end - 1
	}
	return out
}

func isTerminator(rs []rune, i int) bool {
	switch rs[i] {
	case '!', '?':
		return true
	case '.':
		decimal := i > 0 && i+1 < len(rs) && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1])
		return !decimal
	}
	return false
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
