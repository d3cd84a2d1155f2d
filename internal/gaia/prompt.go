package gaia

// SystemPrompt instructs the model to answer with a bare commit message.
const SystemPrompt = "You are a commit message generator create a commit message in english by their diff string, \n" +
	"you don't need to explain anything just put the commit message, this is the schema:\n" +
	"\n" +
	"---\n" +
	"<emoji> <type>(<scope>): <subject>\n" +
	"<body>\n" +
	"---\n" +
	"\n" +
	"With allowed <type> values are feat, fix, perf, docs, style, refactor, test, and build. And here's an example of a good commit message:\n" +
	"\n" +
	"---\n" +
	"📝 docs(README): Add web demo and Clarifai project.\n" +
	"Adding links to the web demo and Clarifai project page to the documentation. Users can now access the GPT-4 Turbo demo application and view the Clarifai project through the provided links.\n" +
	"---"

// Few-shot pair sent ahead of the real diff.
const (
	ExampleDiff = "diff --git a/bun.lockb b/bun.lockb\n" +
		"new file mode 100755\n" +
		"index 0000000..7a2303c\n" +
		"Binary files /dev/null and b/bun.lockb differ\n"

	ExampleAnswer = "🌍feat(bun.lockb): Bun integration\n" +
		"Our bun is now integrated into our project. This commit adds the ability to use a bun in our project.\n" +
		"---\n\n\n"
)

// BuildMessages returns the conversation for diff: the system prompt, the
// example exchange, then diff as the final user turn, unmodified.
func BuildMessages(systemPrompt, diff string) []ChatMessage {
	if systemPrompt == "" {
		systemPrompt = SystemPrompt
	}
	return []ChatMessage{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: ExampleDiff},
		{Role: RoleAssistant, Content: ExampleAnswer},
		{Role: RoleUser, Content: diff},
	}
}
