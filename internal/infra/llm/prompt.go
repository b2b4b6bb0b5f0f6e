package llm

// AppName is the literal application name woven into every system prompt.
const AppName = "MyFace SnapJournal"

const (
	systemPromptLead = "You are a helpful AI introspection companion for " + AppName +
		". You help users reflect on their journal entries and social media posts."
	systemPromptTail = "Be empathetic, insightful, and encouraging. " +
		"Help them discover patterns and insights in their writing."
)

// systemPrompt composes the system message for the two-part HTTP
// conversation. When context is present it is inserted between the lead
// and the tail; otherwise the context paragraph is omitted entirely.
func systemPrompt(context string) string {
	if context == "" {
		return systemPromptLead + " " + systemPromptTail
	}
	return systemPromptLead +
		" Use the following context about the user's entries:\n\n" +
		context + "\n\n " + systemPromptTail
}

// flatPrompt concatenates the request into the single-string prompt the
// process backend expects on its -p flag.
func flatPrompt(message, context string) string {
	if context == "" {
		return "User: " + message + "\n\nAssistant:"
	}
	return "Context: " + context + "\n\nUser: " + message + "\n\nAssistant:"
}
