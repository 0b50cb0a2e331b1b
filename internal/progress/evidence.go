package progress

import (
	"slices"
	"time"

	"github.com/abhisek/gcsetutor/internal/session"
)

// UnderstandingState is the mastery label for one topic.
type UnderstandingState string

const (
	Building      UnderstandingState = "building"
	Strengthening UnderstandingState = "strengthening"
	Secure        UnderstandingState = "secure"
)

// StateFor derives the understanding label from a correct-answer count.
func StateFor(correctCount int) UnderstandingState {
	switch {
	case correctCount >= 2:
		return Secure
	case correctCount == 1:
		return Strengthening
	default:
		return Building
	}
}

// ModeSet is a sorted, duplicate-free set of delivery technique tags.
type ModeSet []string

// NewModeSet builds a set from tags, dropping blanks and duplicates.
func NewModeSet(modes ...string) ModeSet {
	var out ModeSet
	for _, m := range modes {
		if m == "" {
			continue
		}
		if i, found := slices.BinarySearch(out, m); !found {
			out = slices.Insert(out, i, m)
		}
	}
	return out
}

// Union returns the set union of s and other.
func (s ModeSet) Union(other ModeSet) ModeSet {
	all := make([]string, 0, len(s)+len(other))
	all = append(all, s...)
	all = append(all, other...)
	return NewModeSet(all...)
}

// Contains reports whether mode is in the set.
func (s ModeSet) Contains(mode string) bool {
	_, found := slices.BinarySearch(s, mode)
	return found
}

// Key identifies one evidence row.
type Key struct {
	StudentID string
	SessionID string
	TopicID   string
}

// Evidence is the running tally for one student, session and topic.
type Evidence struct {
	Key
	SubjectID string

	Attempts       int
	CorrectCount   int
	IncorrectCount int
	PartialCount   int

	LastEvaluation     session.Evaluation
	UnderstandingState UnderstandingState
	DeliveryModesUsed  ModeSet
	LastInteractionAt  time.Time
}

// Update is one judged turn to fold into evidence.
type Update struct {
	Key        Key
	SubjectID  string
	Evaluation session.Evaluation
	Techniques []string
	At         time.Time
}

// Record folds an update into existing evidence, or starts a new row when
// existing is nil. It returns false without changes when the evaluation is
// not a real judgement.
func Record(existing *Evidence, u Update) (Evidence, bool) {
	if !u.Evaluation.Judged() {
		if existing != nil {
			return *existing, false
		}
		return Evidence{}, false
	}

	var ev Evidence
	if existing != nil {
		ev = *existing
		ev.DeliveryModesUsed = slices.Clone(existing.DeliveryModesUsed)
	} else {
		ev = Evidence{Key: u.Key}
	}
	if ev.SubjectID == "" {
		ev.SubjectID = u.SubjectID
	}

	ev.Attempts++
	switch u.Evaluation {
	case session.Correct:
		ev.CorrectCount++
	case session.Incorrect:
		ev.IncorrectCount++
	case session.Partial:
		ev.PartialCount++
	}
	ev.LastEvaluation = u.Evaluation
	ev.UnderstandingState = StateFor(ev.CorrectCount)
	ev.DeliveryModesUsed = ev.DeliveryModesUsed.Union(NewModeSet(u.Techniques...))
	ev.LastInteractionAt = u.At
	return ev, true
}
