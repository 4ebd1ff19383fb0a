package answer

import (
	"strings"

	"github.com/mediqa/mediqa/core"
)

// RefusalMessage is the fixed reply the model is instructed to give for
// questions outside the healthcare domain.
const RefusalMessage = "I'm designed to answer healthcare-related questions only."

const systemPrompt = `You are a professional AI healthcare assistant trained exclusively in medicine, nutrition, diagnostics, and wellness.

Rules:
1. Only respond to healthcare-related questions.
2. If the query is unrelated (e.g., sports, politics, technology, etc.), reply:
   "I'm designed to answer healthcare-related questions only."
3. If the context is insufficient, respond:
   "I don't have enough medical information to answer confidently."
4. Never fabricate or guess - rely only on verified data.
5. Keep tone factual, calm, and empathetic.
6. Never include disclaimers - one is already displayed to the user.`

const (
	conciseStyleNote = "Provide a medically accurate response of about 80-120 words. " +
		"Avoid fluff; focus only on relevant and practical facts."
	detailedStyleNote = "Write a structured, detailed explanation of about 200-300 words. " +
		"Include definition, causes, treatments, and prevention tips when appropriate."
)

func styleNote(mode core.ResponseMode) string {
	if mode == core.ModeConcise {
		return conciseStyleNote
	}
	return detailedStyleNote
}

// buildUserPrompt assembles the grounded prompt: retrieved context, the
// question, the length/style directive, the citation list, and the
// refuse-or-answer instruction block.
func buildUserPrompt(query, context string, mode core.ResponseMode, sources []string) string {
	if strings.TrimSpace(context) == "" {
		context = "No relevant context available."
	}

	var b strings.Builder
	b.WriteString("### Context:\n")
	b.WriteString(context)
	b.WriteString("\n\n### User Question:\n")
	b.WriteString(query)
	b.WriteString("\n\n### Response Guidelines:\n")
	b.WriteString(styleNote(mode))
	if len(sources) > 0 {
		b.WriteString("\n\nRelevant Sources: ")
		b.WriteString(strings.Join(sources, ", "))
	}
	b.WriteString("\n\n### Instructions:\n")
	b.WriteString("- If healthcare-related, give factual, clear info.\n")
	b.WriteString("- If unrelated, politely refuse.\n")
	b.WriteString("- If context insufficient, say so directly.\n")
	b.WriteString("- Keep language simple and structured.")
	return b.String()
}
