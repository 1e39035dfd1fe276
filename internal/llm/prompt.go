package llm

import (
	openai "github.com/sashabaranov/go-openai"
)

// SystemInstruction is sent ahead of every code prompt. The code prompt itself already
// carries the task, so this only pins down the reply format.
const SystemInstruction = "You are an expert software engineer. " +
	"Answer with the requested implementation in a single fenced code block. " +
	"Do not repeat the existing code and keep explanations outside the code block short."

// ConstructMessages wraps a built code prompt into the chat messages sent to the model.
func ConstructMessages(codePrompt string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: SystemInstruction,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: codePrompt,
		},
	}
}
