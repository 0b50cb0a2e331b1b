package llm

// modelAliases lets config name a model family instead of a dated id.
// Anything not listed is passed to the provider untouched.
var modelAliases = map[string]map[string]string{
	ProviderAnthropic: {
		"claude-sonnet": "claude-sonnet-4-5",
		"claude-haiku":  "claude-haiku-4-5",
	},
	ProviderOpenAI: {
		"gpt-mini": "gpt-4.1-mini",
		"gpt":      "gpt-4.1",
	},
	ProviderGemini: {
		"gemini-flash": "gemini-2.5-flash",
		"gemini-pro":   "gemini-2.5-pro",
	},
}

// resolveModel maps an alias for provider to a concrete model id.
func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}
