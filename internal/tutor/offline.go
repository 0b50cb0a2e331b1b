package tutor

import (
	"encoding/json"

	"github.com/abhisek/gcsetutor/internal/llm"
)

// OfflineResponse answers tutor requests without a model. It is installed
// as the mock provider's responder so the server and chat commands work
// with no API key configured.
func OfflineResponse(llm.Request) llm.MockResponse {
	out := turnOutput{
		Evaluation: "unknown",
		Action:     "explain",
		Message:    "I'm running in offline mode, so I can't check answers right now. Talk me through your first step. What do you already know about this question?",
		Techniques: []string{TechniqueSocratic},
	}
	content, _ := json.Marshal(out)
	return llm.MockResponse{Content: content}
}
