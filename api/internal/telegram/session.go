package telegram

import (
	"sync"

	"github.com/google/uuid"

	"study-buddy/api/internal/tutor"
)

// SessionState is what the bot remembers about one chat.
type SessionState struct {
	Mode     tutor.Mode
	Language string
	Class    string
	Subject  string
	Board    string
	Context  string    // text of the latest scan
	ScanID   uuid.UUID // latest saved scan, uuid.Nil when not stored
}

type Session struct {
	mu sync.Mutex
	st SessionState
}

func (s *Session) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *Session) Update(fn func(st *SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

type Sessions struct {
	m sync.Map // chatID -> *Session
}

// Get returns the chat's session, creating one in chat mode with the default language.
func (ss *Sessions) Get(chatID int64) *Session {
	if v, ok := ss.m.Load(chatID); ok {
		return v.(*Session)
	}
	v, _ := ss.m.LoadOrStore(chatID, &Session{st: SessionState{
		Mode:     tutor.ModeChat,
		Language: tutor.DefaultLanguage,
	}})
	return v.(*Session)
}

func (ss *Sessions) Reset(chatID int64) {
	ss.m.Delete(chatID)
}
