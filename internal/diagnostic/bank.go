package diagnostic

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var embeddedBank []byte

// Subject is one subject's entry in the bank.
type Subject struct {
	Code      string     `yaml:"code"`
	Name      string     `yaml:"name"`
	Aliases   []string   `yaml:"aliases"`
	Questions []Question `yaml:"questions"`
}

type bankFile struct {
	Subjects []Subject `yaml:"subjects"`
}

// Bank is a read-only set of diagnostic questions keyed by subject code.
// It is built once and never mutated, so it is safe to share.
type Bank struct {
	subjects map[string]*Subject
	aliases  map[string]string
}

// DefaultBank parses the embedded question bank.
func DefaultBank() (*Bank, error) {
	return ParseBank(embeddedBank)
}

// MustDefaultBank is DefaultBank for callers that cannot recover from a
// broken embedded bank.
func MustDefaultBank() *Bank {
	b, err := DefaultBank()
	if err != nil {
		panic(err)
	}
	return b
}

// LoadBank reads a bank from a YAML file on disk.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read diagnostic bank: %w", err)
	}
	return ParseBank(data)
}

// ParseBank decodes and validates a YAML bank.
func ParseBank(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode diagnostic bank: %w", err)
	}
	if err := validateSubjects(f.Subjects); err != nil {
		return nil, err
	}

	b := &Bank{
		subjects: make(map[string]*Subject, len(f.Subjects)),
		aliases:  make(map[string]string),
	}
	for i := range f.Subjects {
		s := &f.Subjects[i]
		code := normalizeCode(s.Code)
		s.Code = code
		b.subjects[code] = s
		for _, a := range s.Aliases {
			b.aliases[normalizeCode(a)] = code
		}
	}
	return b, nil
}

// Subjects returns the known subject codes in sorted order.
func (b *Bank) Subjects() []string {
	codes := make([]string, 0, len(b.subjects))
	for code := range b.subjects {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Subject looks up a subject by code or alias.
func (b *Bank) Subject(code string) (Subject, bool) {
	s := b.lookup(code)
	if s == nil {
		return Subject{}, false
	}
	out := *s
	out.Questions = slices.Clone(s.Questions)
	return out, true
}

// Questions returns a copy of a subject's questions in bank order.
func (b *Bank) Questions(code string) ([]Question, bool) {
	s := b.lookup(code)
	if s == nil {
		return nil, false
	}
	return slices.Clone(s.Questions), true
}

func (b *Bank) lookup(code string) *Subject {
	if b == nil {
		return nil
	}
	c := normalizeCode(code)
	if s, ok := b.subjects[c]; ok {
		return s
	}
	if canon, ok := b.aliases[c]; ok {
		return b.subjects[canon]
	}
	return nil
}

func normalizeCode(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	c = strings.NewReplacer(" ", "_", "-", "_").Replace(c)
	return c
}
