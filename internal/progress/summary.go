package progress

import (
	"math"
	"slices"
	"strings"
	"time"
)

// SubjectSummary is the read-side rollup of evidence for one subject.
type SubjectSummary struct {
	SubjectID          string             `json:"subject_id"`
	TopicCount         int                `json:"topic_count"`
	Secure             int                `json:"secure"`
	Strengthening      int                `json:"strengthening"`
	Building           int                `json:"building"`
	ProgressPercentage int                `json:"progress_percentage"`
	Label              UnderstandingState `json:"label"`
	LastInteractionAt  time.Time          `json:"last_interaction_at"`
}

// AggregateBySubject folds raw evidence rows into per-subject summaries.
// Rows for the same topic (from different sessions) collapse to the most
// recently touched one. Results are sorted by subject id.
func AggregateBySubject(rows []Evidence) []SubjectSummary {
	latest := make(map[string]map[string]Evidence)
	for _, r := range rows {
		topics, ok := latest[r.SubjectID]
		if !ok {
			topics = make(map[string]Evidence)
			latest[r.SubjectID] = topics
		}
		if prev, seen := topics[r.TopicID]; !seen || r.LastInteractionAt.After(prev.LastInteractionAt) {
			topics[r.TopicID] = r
		}
	}

	out := make([]SubjectSummary, 0, len(latest))
	for subjectID, topics := range latest {
		sum := SubjectSummary{SubjectID: subjectID, TopicCount: len(topics)}
		for _, ev := range topics {
			switch ev.UnderstandingState {
			case Secure:
				sum.Secure++
			case Strengthening:
				sum.Strengthening++
			default:
				sum.Building++
			}
			if ev.LastInteractionAt.After(sum.LastInteractionAt) {
				sum.LastInteractionAt = ev.LastInteractionAt
			}
		}
		if sum.TopicCount > 0 {
			sum.ProgressPercentage = int(math.Round(float64(sum.Secure) / float64(sum.TopicCount) * 100))
		}
		sum.Label = majorityLabel(sum.Secure, sum.Strengthening, sum.Building)
		out = append(out, sum)
	}
	slices.SortFunc(out, func(a, b SubjectSummary) int {
		return strings.Compare(a.SubjectID, b.SubjectID)
	})
	return out
}

func majorityLabel(secure, strengthening, building int) UnderstandingState {
	switch {
	case secure > strengthening && secure > building:
		return Secure
	case strengthening >= building:
		return Strengthening
	default:
		return Building
	}
}
