package diagnostic

import (
	"fmt"
	"strings"
)

// validateSubjects performs the structural checks on a decoded bank.
// Returns a combined error describing all problems found, or nil if valid.
func validateSubjects(subjects []Subject) error {
	var errs []string

	if len(subjects) == 0 {
		errs = append(errs, "bank has no subjects")
	}

	codes := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		code := normalizeCode(s.Code)
		if code == "" {
			errs = append(errs, "subject with empty code")
			continue
		}
		if codes[code] {
			errs = append(errs, fmt.Sprintf("duplicate subject code: %q", code))
		}
		codes[code] = true
	}

	// Aliases must not shadow a real code or each other.
	aliases := make(map[string]string)
	for _, s := range subjects {
		for _, a := range s.Aliases {
			alias := normalizeCode(a)
			if codes[alias] {
				errs = append(errs, fmt.Sprintf("subject %q alias %q collides with a subject code", s.Code, a))
			}
			if owner, ok := aliases[alias]; ok && owner != s.Code {
				errs = append(errs, fmt.Sprintf("alias %q claimed by both %q and %q", a, owner, s.Code))
			}
			aliases[alias] = s.Code
		}
	}

	for _, s := range subjects {
		if len(s.Questions) == 0 {
			errs = append(errs, fmt.Sprintf("subject %q has no questions", s.Code))
			continue
		}
		ids := make(map[string]bool, len(s.Questions))
		for i, q := range s.Questions {
			prefix := fmt.Sprintf("subject %q question %d", s.Code, i)
			if q.ID == "" {
				errs = append(errs, prefix+": empty id")
			} else if ids[q.ID] {
				errs = append(errs, fmt.Sprintf("%s: duplicate id %q", prefix, q.ID))
			}
			ids[q.ID] = true
			if strings.TrimSpace(q.Text) == "" {
				errs = append(errs, prefix+": empty text")
			}
			if !q.Difficulty.Valid() {
				errs = append(errs, fmt.Sprintf("%s: unknown difficulty %q", prefix, q.Difficulty))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("diagnostic bank validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
