package session

import "testing"

func TestExtractNextQuestion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"single question", "What is 2 + 2?", "What is 2 + 2?", true},
		{"question after praise", "Nice work! Now, what is the gradient of y = 3x + 1?", "Now, what is the gradient of y = 3x + 1?", true},
		{"ends with statement", "What is x? Have a think.", "", false},
		{"no terminator", "Let's keep going", "", false},
		{"trailing fragment ignored", "Can you factorise x^2 + 5x + 6? then", "Can you factorise x^2 + 5x + 6?", true},
		{"decimal point", "Good. Is 2.5 bigger than 2.45?", "Is 2.5 bigger than 2.45?", true},
		{"multiline", "Great.\n\nWhat does\nthe mitochondria do?", "What does the mitochondria do?", true},
		{"repeated marks", "Really?! Why do you think so??", "Why do you think so??", true},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractNextQuestion(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ExtractNextQuestion(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
