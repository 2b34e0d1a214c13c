// File: internal/services/chat/prompt.go
package chat

import (
	"github.com/mahluminnovations/gymengine/internal/domain"
	"github.com/mahluminnovations/gymengine/internal/services/ai"
)

// reportMarker is the token the model emits to request a downloadable
// report. Post-processing strips it and mints a report link in its place.
const reportMarker = "download://report.docx"

// systemInstruction describes output conventions, including the report
// marker the model may emit.
const systemInstruction = "You are an AI assistant that can produce downloadable reports in Markdown link format. " +
	"If asked for a report, produce `" + reportMarker + "`. Use Markdown formatting."

// assemblePrompt builds the full completion request, in order: the fixed
// system instruction, the ingestion context notes, the session's prior
// messages in original order, and the current user message last.
func assemblePrompt(session *domain.ChatSession, contextNotes []string, userMessage string) []ai.Message {
	messages := make([]ai.Message, 0, len(contextNotes)+len(session.Messages)+2)

	messages = append(messages, ai.Message{Role: domain.RoleSystem, Content: systemInstruction})
	for _, note := range contextNotes {
		messages = append(messages, ai.Message{Role: domain.RoleSystem, Content: note})
	}
	for _, m := range session.Messages {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, ai.Message{Role: domain.RoleUser, Content: userMessage})

	return messages
}
