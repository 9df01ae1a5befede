package ai

import "fmt"

// ContentParams are the typed knobs the admin form exposes.
type ContentParams struct {
	ContentType string // newsletter, announcement, event_description, thank_you
	Topic       string
	Length      string // short, medium, long
	Style       string // friendly, formal, playful
}

var lengthHints = map[string]string{
	"short":  "Keep it under 100 words.",
	"medium": "Aim for 150 to 300 words.",
	"long":   "Write 400 to 600 words.",
}

var styleHints = map[string]string{
	"friendly": "warm and conversational",
	"formal":   "polished and professional",
	"playful":  "upbeat and fun, suitable for families",
}

// BuildContentPrompt assembles the system and user prompts for a content
// generation request.
func BuildContentPrompt(p ContentParams) (system string, user string) {
	style, ok := styleHints[p.Style]
	if !ok {
		style = styleHints["friendly"]
	}
	length, ok := lengthHints[p.Length]
	if !ok {
		length = lengthHints["medium"]
	}

	system = fmt.Sprintf(
		"You are a writing assistant for a parent-teacher organization. "+
			"Write in a %s tone. %s Return only the finished text, no preamble.",
		style, length,
	)
	user = fmt.Sprintf("Write a %s about: %s", p.ContentType, p.Topic)
	return system, user
}
