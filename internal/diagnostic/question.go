package diagnostic

// Difficulty is the curriculum tier of a diagnostic probe.
type Difficulty string

const (
	Foundation Difficulty = "foundation"
	Core       Difficulty = "core"
	Higher     Difficulty = "higher"
)

// Tiers returns the difficulty tiers in ascending order.
func Tiers() []Difficulty {
	return []Difficulty{Foundation, Core, Higher}
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case Foundation, Core, Higher:
		return true
	}
	return false
}

// Question is a single diagnostic probe.
type Question struct {
	ID         string     `yaml:"id" json:"id"`
	Text       string     `yaml:"text" json:"question_text"`
	TopicArea  string     `yaml:"topic_area" json:"topic_area"`
	Difficulty Difficulty `yaml:"difficulty" json:"difficulty"`
}

// DefaultSetSize is the number of probes in a diagnostic pass.
const DefaultSetSize = 3

// FallbackPrompt is asked once the stratified order is exhausted.
const FallbackPrompt = "Tell me about a part of this topic you feel least confident with, and we'll start there."

// genericSet is used for subjects the bank does not know.
var genericSet = []Question{
	{
		ID:         "generic-1",
		Text:       "On a scale of 1 to 5, how confident do you feel about this topic right now?",
		TopicArea:  "Self-assessment",
		Difficulty: Foundation,
	},
	{
		ID:         "generic-2",
		Text:       "Can you describe, in your own words, one key idea from this topic?",
		TopicArea:  "Self-assessment",
		Difficulty: Core,
	},
	{
		ID:         "generic-3",
		Text:       "What kind of exam question on this topic do you find hardest?",
		TopicArea:  "Self-assessment",
		Difficulty: Higher,
	},
}

// GenericSet returns a copy of the self-assessment fallback set.
func GenericSet() []Question {
	out := make([]Question, len(genericSet))
	copy(out, genericSet)
	return out
}
