package tutor

import "strings"

const (
	// MaxTokens is the completion budget of every tutor reply.
	MaxTokens = 500

	TemperatureExam    float32 = 0.3
	TemperatureDefault float32 = 0.7
)

var builtinTemplates = map[Mode]string{
	ModeChat: `You are a friendly, grandmother-like tutor who explains concepts in {language}. ` +
		`Use simple, comforting language mixed with local expressions like "beta" and "baccha". ` +
		`Explain in Hinglish if needed. Be warm and supportive.`,
	ModeStudy: `You are a detailed academic tutor for class {class} {subject}. ` +
		`Provide comprehensive explanations with examples from the curriculum. ` +
		`Be thorough but clear. Answer in {language}.`,
	ModeExam: `You are a strict exam-focused tutor. Provide practice questions, MCQs, and exam-style explanations. ` +
		`Be concise and focused on scoring marks. Answer in {language}.`,
	ModeCoding: `You are a programming tutor. Explain code concepts, provide examples, and help debug problems. ` +
		`Use practical examples and best practices. Answer in {language}.`,
}

// Selector maps a PromptRequest to a system prompt. The zero value is not usable; use NewSelector.
type Selector struct {
	templates map[Mode]string
}

// NewSelector builds a selector from the built-in personas, replacing the templates named in overrides.
func NewSelector(overrides ...Persona) *Selector {
	t := make(map[Mode]string, len(builtinTemplates))
	for m, s := range builtinTemplates {
		t[m] = s
	}
	for _, p := range overrides {
		if p.Mode.Known() && strings.TrimSpace(p.Template) != "" {
			t[p.Mode] = p.Template
		}
	}
	return &Selector{templates: t}
}

var defaultSelector = NewSelector()

// SelectPrompt renders the built-in persona for req.
func SelectPrompt(req PromptRequest) string {
	return defaultSelector.Select(req)
}

// Select returns the system prompt for req. Unknown modes use the chat template.
func (s *Selector) Select(req PromptRequest) string {
	tpl := s.templates[ParseMode(string(req.Mode))]
	return strings.NewReplacer(
		"{language}", orDefault(req.Language, DefaultLanguage),
		"{class}", orDefault(req.Class, "any"),
		"{subject}", orDefault(req.Subject, "general studies"),
	).Replace(tpl)
}

// Temperature is low for exam mode (concise, repeatable) and higher for everything else.
func Temperature(m Mode) float32 {
	if ParseMode(string(m)) == ModeExam {
		return TemperatureExam
	}
	return TemperatureDefault
}

// UserMessage embeds the scanned context and the student's message verbatim.
func UserMessage(context, message string) string {
	return "Context from textbook: " + context + "\n\nStudent's question: " + message
}

// ChatInput is a fully assembled model request.
type ChatInput struct {
	System      string  `json:"system"`
	User        string  `json:"user"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Build assembles the model request for a student's message.
func (s *Selector) Build(req PromptRequest, context, message string) ChatInput {
	return ChatInput{
		System:      s.Select(req),
		User:        UserMessage(context, message),
		Temperature: Temperature(req.Mode),
		MaxTokens:   MaxTokens,
	}
}

// BuildChat is Build on the built-in personas.
func BuildChat(req PromptRequest, context, message string) ChatInput {
	return defaultSelector.Build(req, context, message)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
