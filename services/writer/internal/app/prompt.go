package app

import (
	"fmt"
	"strings"

	"mailcraft/pkg/domain"
)

const promptTemplate = `You are an expert email writer. Transform the following raw thoughts into a well-crafted email with a %[1]s tone.

Raw thoughts: "%[2]s"%[3]s

Instructions:
- Write a complete, professional email body
- Use a %[1]s tone throughout
- Make it clear, engaging, and well-structured
- Ensure proper email etiquette
- Do not include a subject line

Please respond in %[4]s language.

Respond with ONLY the email body content. Do not include any explanations or additional text outside of the email.`

// BuildPrompt renders the instruction sent to the model. It is a pure
// function of the draft.
func BuildPrompt(d domain.Draft) string {
	return fmt.Sprintf(promptTemplate, d.Tone, d.Thoughts, contextBlock(d), d.Locale)
}

func contextBlock(d domain.Draft) string {
	if !d.HasContext() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nContext - I am responding to this email:\n\"")
	sb.WriteString(d.Context)
	sb.WriteString("\"\n\n")
	return sb.String()
}
