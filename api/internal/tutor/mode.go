package tutor

import "strings"

// Mode selects the tutor persona and the reply style.
type Mode string

const (
	ModeChat   Mode = "chat"
	ModeStudy  Mode = "study"
	ModeExam   Mode = "exam"
	ModeCoding Mode = "coding"
)

// Modes lists the known modes in display order.
var Modes = []Mode{ModeChat, ModeStudy, ModeExam, ModeCoding}

const DefaultLanguage = "hinglish"

// ParseMode maps user input to a known mode; anything unrecognised becomes ModeChat.
func ParseMode(s string) Mode {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m.Known() {
		return m
	}
	return ModeChat
}

func (m Mode) Known() bool {
	switch m {
	case ModeChat, ModeStudy, ModeExam, ModeCoding:
		return true
	}
	return false
}

// Label is the human-readable name shown in chat surfaces.
func (m Mode) Label() string {
	switch ParseMode(string(m)) {
	case ModeStudy:
		return "Study Mode"
	case ModeExam:
		return "Exam Prep"
	case ModeCoding:
		return "Coding Help"
	default:
		return "Casual Chat"
	}
}

// PromptRequest carries everything the prompt selector needs for one model call.
type PromptRequest struct {
	Mode     Mode
	Language string
	Class    string
	Subject  string
}

// ResponseQuery is the input of the fallback responder.
type ResponseQuery struct {
	Message string
	Context string
	Mode    Mode
}
