package diagnostic

import (
	"math/rand/v2"
	"sync"
)

// Selector picks diagnostic probes from a bank. Random fill uses its own
// source so tests can seed it.
type Selector struct {
	bank *Bank

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector over bank. A nil src seeds from the
// runtime's random source.
func NewSelector(bank *Bank, src rand.Source) *Selector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Selector{bank: bank, rng: rand.New(src)}
}

// Bank returns the underlying question bank.
func (s *Selector) Bank() *Bank { return s.bank }

// SelectSet returns count distinct questions for a subject. One question is
// drawn from each available tier in ascending order before the remaining
// slots are filled uniformly at random from unused questions. Unknown
// subjects get the generic self-assessment set.
func (s *Selector) SelectSet(subjectCode string, count int) []Question {
	if count <= 0 {
		count = DefaultSetSize
	}
	qs, ok := s.bank.Questions(subjectCode)
	if !ok {
		g := GenericSet()
		if count < len(g) {
			g = g[:count]
		}
		return g
	}
	if count > len(qs) {
		count = len(qs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	used := make([]bool, len(qs))
	out := make([]Question, 0, count)

	for _, tier := range Tiers() {
		if len(out) == count {
			break
		}
		var idx []int
		for i, q := range qs {
			if q.Difficulty == tier {
				idx = append(idx, i)
			}
		}
		if len(idx) == 0 {
			continue
		}
		pick := idx[s.rng.IntN(len(idx))]
		used[pick] = true
		out = append(out, qs[pick])
	}

	for _, i := range s.rng.Perm(len(qs)) {
		if len(out) == count {
			break
		}
		if used[i] {
			continue
		}
		used[i] = true
		out = append(out, qs[i])
	}
	return out
}

// NextQuestion returns the probe text for the askedIndex'th diagnostic turn
// (zero-based). The order is deterministic: the first question of each tier,
// then the rest in bank order. An index past the end yields FallbackPrompt.
func (s *Selector) NextQuestion(subjectCode string, askedIndex int) string {
	qs, ok := s.bank.Questions(subjectCode)
	if !ok {
		qs = GenericSet()
	}
	order := stratifiedOrder(qs)
	if askedIndex < 0 || askedIndex >= len(order) {
		return FallbackPrompt
	}
	return order[askedIndex].Text
}

// SetSize is the number of probes a diagnostic pass for subjectCode asks,
// capped by what the bank holds.
func (s *Selector) SetSize(subjectCode string) int {
	qs, ok := s.bank.Questions(subjectCode)
	if !ok {
		return len(genericSet)
	}
	return min(DefaultSetSize, len(qs))
}

func stratifiedOrder(qs []Question) []Question {
	out := make([]Question, 0, len(qs))
	taken := make([]bool, len(qs))
	for _, tier := range Tiers() {
		for i, q := range qs {
			if q.Difficulty == tier {
				out = append(out, q)
				taken[i] = true
				break
			}
		}
	}
	for i, q := range qs {
		if !taken[i] {
			out = append(out, q)
		}
	}
	return out
}
