// Package answer generates grounded healthcare answers from retrieved
// context. The Generator builds domain-restricted prompts, maps model
// failures onto fixed user-facing messages, and performs a bounded
// self-correction pass via web search when the model reports that the
// provided context is insufficient.
package answer
