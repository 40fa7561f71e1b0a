package llm

import (
	"context"
	"errors"
	"strings"
	"sync"

	"study-buddy/api/internal/tutor"
)

var ErrNoEngine = errors.New("llm engine is not configured")

type Engine interface {
	Name() string
	GetModel() string
	Chat(ctx context.Context, in tutor.ChatInput) (string, error)
}

type Engines struct {
	OpenAI Engine
	Gemini Engine

	// Preferred names the engine Default returns: "gpt" | "gemini".
	Preferred string
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(llmName)) {
	case "gpt", "openai":
		eng = e.OpenAI
	case "gemini":
		eng = e.Gemini
	default:
		return nil, errors.New("unknown llm_name; use 'gpt' or 'gemini'")
	}
	if eng == nil {
		return nil, ErrNoEngine
	}
	return eng, nil
}

// Default returns the preferred engine, or any configured one.
func (e *Engines) Default() (Engine, error) {
	if eng, err := e.GetEngine(e.Preferred); err == nil {
		return eng, nil
	}
	for _, eng := range []Engine{e.OpenAI, e.Gemini} {
		if eng != nil {
			return eng, nil
		}
	}
	return nil, ErrNoEngine
}

// Manager remembers the engine picked per chat.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

// Get returns the chat's engine or the default one; nil when neither is set.
func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	if e == nil {
		m.m.Delete(chatID)
		return
	}
	m.m.Store(chatID, e)
}
