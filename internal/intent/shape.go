package intent

import (
	"regexp"
	"strings"
)

// answerLeadIns are hedges students put in front of a direct answer.
var answerLeadIns = regexp.MustCompile(`^((so|um+|uh+|er+m?|maybe|perhaps|then|ok|okay)\s*,?\s+)*((is|would|could)\s+it\s+(be\s+)?|it'?s\s+|it\s+is\s+|is\s+the\s+answer\s+|the\s+answer\s+is\s+|answer\s*(is|:)?\s*|i\s+think\s+(it'?s\s+|it\s+is\s+)?|i\s+got\s+|i\s+get\s+|=\s*)`)

var shortAnswerShapes = []*regexp.Regexp{
	// integers and decimals, optionally with a unit or percent
	regexp.MustCompile(`^[-+]?\d[\d,]*(\.\d+)?\s*(%|[a-z]{1,4}(\^?[23])?)?$`),
	// fractions and ratios
	regexp.MustCompile(`^[-+]?\d+\s*[/:]\s*\d+$`),
	// powers, roots and standard form
	regexp.MustCompile(`^[-+]?\d+(\.\d+)?\s*(\^|\*\*|x\s*10\^?)\s*[-+]?\d+$`),
	// one or more assignments: "x = 2", "x = 2 or x = 3", "x=4, y=-1"
	regexp.MustCompile(`^[a-z]\s*=\s*[-+]?[\d./]+(\s*(or|and|,|&)\s*[a-z]\s*=\s*[-+]?[\d./]+)*$`),
	// multiple choice letter
	regexp.MustCompile(`^\(?[a-e]\)?$`),
}

var (
	expressionChars = regexp.MustCompile(`^[-+()\d\sa-z^*/.=]{1,24}$`)
	expressionOps   = regexp.MustCompile(`[\d^*/=+]`)
)

var questionOpeners = regexp.MustCompile(`^(what|why|how|when|where|which|who|whose|can|could|would|should|do|does|did|is|are|am|will|shall|was|were)\b`)

// IsShortAnswer reports whether bare (lowercased, trailing punctuation
// removed) reads as a direct answer rather than a sentence: a number,
// expression, assignment, choice letter or a phrase of at most two words.
func IsShortAnswer(bare string) bool {
	s := strings.TrimSpace(answerLeadIns.ReplaceAllString(bare, ""))
	if s == "" {
		return false
	}
	for _, p := range shortAnswerShapes {
		if p.MatchString(s) && !questionOpeners.MatchString(s) {
			return true
		}
	}
	if expressionChars.MatchString(s) && expressionOps.MatchString(s) && !questionOpeners.MatchString(s) {
		return true
	}
	words := strings.Fields(s)
	if len(words) > 2 || len(s) > 30 {
		return false
	}
	return !questionOpeners.MatchString(s)
}
