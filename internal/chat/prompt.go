package chat

import (
	"github.com/solace-platform/solace/internal/llm"
	"github.com/solace-platform/solace/internal/session"
)

// systemPrompt frames every completion. It is never exposed to clients and
// user input cannot alter it.
const systemPrompt = "You are Solace, a warm and supportive companion for people " +
	"working through difficult emotions. Listen carefully, validate feelings, and " +
	"respond with empathy in two to four short paragraphs. Gently suggest grounding " +
	"techniques or small next steps when they fit. You are not a therapist and do " +
	"not diagnose, prescribe, or give medical advice; encourage professional support " +
	"when distress seems persistent. If the user mentions wanting to harm themselves " +
	"or others, respond with care and point them to the 988 Suicide & Crisis Lifeline."

// moodContext maps a reported mood to a framing sentence appended to the
// system prompt.
var moodContext = map[string]string{
	"calm":     "The user reports feeling calm right now.",
	"happy":    "The user reports feeling happy right now.",
	"sad":      "The user reports feeling sad right now; be especially gentle.",
	"anxious":  "The user reports feeling anxious right now; keep your tone steady and grounding.",
	"stressed": "The user reports feeling stressed right now; help them slow down.",
	"angry":    "The user reports feeling angry right now; acknowledge the anger without judgment.",
	"tired":    "The user reports feeling tired right now; keep your reply short and kind.",
	"hopeful":  "The user reports feeling hopeful right now; build on that hope.",
}

// BuildPrompt assembles the completion request: system framing, recent
// history oldest-first, then the current message.
func BuildPrompt(history []session.Message, mood, userMessage string) []llm.Message {
	system := systemPrompt
	if ctx, ok := moodContext[mood]; ok {
		system += " " + ctx
	}

	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: system})

	for _, h := range history {
		role := llm.RoleUser
		if h.Role == session.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: h.Content})
	}

	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: userMessage})
	return msgs
}
