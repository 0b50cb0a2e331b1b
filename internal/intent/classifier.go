package intent

import (
	"regexp"
	"strings"
)

// MinExplanationLength is the trimmed length a message must exceed before it
// can be read as an explanation of working.
const MinExplanationLength = 20

// Message is a student utterance with the normalized forms the rules match on.
type Message struct {
	Raw     string
	Trimmed string // whitespace trimmed, original case
	Lower   string // Trimmed, lowercased, typographic apostrophes folded
	Bare    string // Lower without trailing punctuation
}

// NewMessage normalizes raw text for classification.
func NewMessage(raw string) *Message {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	lower = strings.NewReplacer("’", "'", "‘", "'", "`", "'").Replace(lower)
	lower = wsRun.ReplaceAllString(lower, " ")
	return &Message{
		Raw:     raw,
		Trimmed: trimmed,
		Lower:   lower,
		Bare:    strings.TrimRight(lower, "?!.,;: …"),
	}
}

// Rule is one step of the classification cascade.
// Match reports whether the rule claims the message.
type Rule interface {
	Name() string
	Intent() Intent
	Match(m *Message) bool
}

// DefaultRules returns the cascade in priority order. Uncertainty outranks
// skip and question so that "not sure?" is never graded.
func DefaultRules() []Rule {
	return []Rule{
		&emptyRule{},
		&uncertaintyRule{},
		&skipRule{},
		&questionRule{},
		&metaRule{},
		&explanationRule{},
	}
}

// Run executes rules in order and returns the first match. Messages no rule
// claims are solutions.
func Run(rules []Rule, m *Message) (Intent, string) {
	for _, r := range rules {
		if r.Match(m) {
			return r.Intent(), r.Name()
		}
	}
	return Solution, "default"
}

var defaultRules = DefaultRules()

// Classify returns the intent of a student message. It is deterministic and
// does no I/O.
func Classify(message string) Intent {
	i, _ := Run(defaultRules, NewMessage(message))
	return i
}

var wsRun = regexp.MustCompile(`\s+`)

type emptyRule struct{}

func (emptyRule) Name() string          { return "empty" }
func (emptyRule) Intent() Intent        { return Uncertainty }
func (emptyRule) Match(m *Message) bool { return m.Trimmed == "" }

var uncertaintyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\?+$`),
	regexp.MustCompile(`^(i\s*)?(really\s+|honestly\s+)?(don'?t|dont|do\s+not|dnt)\s+(really\s+)?(know|understand|get\s+(it|this))\b`),
	regexp.MustCompile(`^(idk|dunno|unsure|stuck|lost|confused|no\s+clue|no\s+idea|not\s+a\s+clue)$`),
	regexp.MustCompile(`^i'?m\s+(so\s+|really\s+|completely\s+)?(stuck|lost|confused|unsure)\b`),
	regexp.MustCompile(`\bnot\s+(really\s+|too\s+|totally\s+|entirely\s+)?sure\b`),
	regexp.MustCompile(`\bno\s+(idea|clue)\b`),
	regexp.MustCompile(`\bhaven'?t\s+(got\s+)?a\s+clue\b`),
	regexp.MustCompile(`\b(i\s+)?(can'?t|cannot)\s+(remember|work\s+(it|this)\s+out|do\s+(it|this))\b`),
}

type uncertaintyRule struct{}

func (uncertaintyRule) Name() string   { return "uncertainty" }
func (uncertaintyRule) Intent() Intent { return Uncertainty }
func (uncertaintyRule) Match(m *Message) bool {
	if m.Bare == "" {
		// Only punctuation left, e.g. "?" or "??".
		return strings.Trim(m.Lower, "?") == ""
	}
	return matchAny(uncertaintyPatterns, m.Bare)
}

var skipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(skip|pass|next|next\s+one|next\s+question|another\s+one|new\s+question)$`),
	regexp.MustCompile(`^(please\s+|can\s+we\s+|can\s+i\s+|let'?s\s+)?skip\b`),
	regexp.MustCompile(`\bmove\s+on\b`),
	regexp.MustCompile(`\btry\s+(something|a\s+different\s+(one|question)|another\s+(one|question))\b`),
	regexp.MustCompile(`\b(something|a\s+question)\s+(else|different)\b`),
	regexp.MustCompile(`\bgive\s+me\s+(another|a\s+different)\s+(one|question)\b`),
}

type skipRule struct{}

func (skipRule) Name() string          { return "skip" }
func (skipRule) Intent() Intent        { return Skip }
func (skipRule) Match(m *Message) bool { return matchAny(skipPatterns, m.Bare) }

var clarificationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(why|how|what|huh|sorry|pardon|eh|what\s+now)$`),
	regexp.MustCompile(`\bwhat\s+(do|did)\s+you\s+mean\b`),
	regexp.MustCompile(`\bwhat\s+(does|do)\s+.+\s+mean\b`),
	regexp.MustCompile(`\b(can|could|would)\s+you\s+(please\s+)?(explain|repeat|clarify|show|rephrase|give\s+me\s+a\s+hint)\b`),
	regexp.MustCompile(`\bhow\s+(do|does|would|should|can)\s+(i|you|we|it|this)\b`),
	regexp.MustCompile(`\bwhy\s+(is|does|do|did|would|are|can'?t)\b`),
	regexp.MustCompile(`\bwhat\s+(is|are)\s+(a|an|the)\s+\w+`),
	regexp.MustCompile(`\bwhat\s+should\s+i\b`),
	regexp.MustCompile(`\bwhich\s+(formula|method|equation|rule|one)\b`),
	regexp.MustCompile(`\b(is\s+there\s+a|any)\s+(hints?|tips?|clues?)\b`),
	regexp.MustCompile(`\bwhere\s+(do|does|did)\b`),
}

type questionRule struct{}

func (questionRule) Name() string   { return "question" }
func (questionRule) Intent() Intent { return Question }
func (questionRule) Match(m *Message) bool {
	if !strings.HasSuffix(m.Trimmed, "?") {
		return false
	}
	if matchAny(clarificationPatterns, m.Bare) {
		return true
	}
	return !IsShortAnswer(m.Bare)
}

var metaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(hi|hello|hey|hiya|yo|sup|heya|howdy)(\s+there)?$`),
	regexp.MustCompile(`^good\s+(morning|afternoon|evening)$`),
	regexp.MustCompile(`^(thanks|thank\s+you|thx|ty|cheers|ta)(\s+(so\s+much|a\s+lot|very\s+much))?$`),
	// Bare yes/no are left out: they answer true/false questions.
	regexp.MustCompile(`^(ok|okay|k|kk|cool|nice|great|awesome|alright|sure|got\s+it|i\s+see|makes\s+sense|fair\s+enough)$`),
	regexp.MustCompile(`^(lol|lmao|haha+|hehe+|omg|wow|bruh)$`),
	regexp.MustCompile(`^(bye|goodbye|see\s+you|see\s+ya|gtg|got\s+to\s+go)$`),
	regexp.MustCompile(`^(how\s+are\s+you|who\s+are\s+you|what\s+are\s+you|are\s+you\s+(a\s+)?(bot|robot|ai|human|real))$`),
}

type metaRule struct{}

func (metaRule) Name() string          { return "meta" }
func (metaRule) Intent() Intent        { return Meta }
func (metaRule) Match(m *Message) bool { return matchAny(metaPatterns, m.Bare) }

var connectivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(because|cos|cause|since|so\s+that|therefore|thus|hence)\b`),
	regexp.MustCompile(`\b(which|this|that|it)\s+means\b`),
	regexp.MustCompile(`\b(due\s+to|as\s+a\s+result|in\s+order\s+to|the\s+reason)\b`),
	regexp.MustCompile(`\bif\b.+\bthen\b`),
	regexp.MustCompile(`\b(first(ly)?|then|next|after\s+that|finally|step)\b`),
	regexp.MustCompile(`\b(substitut|rearrang|factori[sz]|expand|simplif|multipl|divid|subtract|cancel|balanc|isolat)\w*`),
	regexp.MustCompile(`\b(added|adding|add)\b`),
}

type explanationRule struct{}

func (explanationRule) Name() string   { return "explanation" }
func (explanationRule) Intent() Intent { return Explanation }
func (explanationRule) Match(m *Message) bool {
	if len(m.Trimmed) <= MinExplanationLength {
		return false
	}
	if IsShortAnswer(m.Bare) {
		return false
	}
	return matchAny(connectivePatterns, m.Lower)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
