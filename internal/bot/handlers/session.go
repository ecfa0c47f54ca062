package handlers

import (
	"sync"

	"github.com/telearr/telearr/internal/media"
)

// Stage identifies where a chat is in a media conversation.
type Stage string

// Conversation stages.
const (
	StageAwaitingTerm    Stage = "awaiting_term"
	StageSelecting       Stage = "selecting"
	StageChoosingProfile Stage = "choosing_profile"
	StageChoosingFolder  Stage = "choosing_folder"
	StageConfirmDelete   Stage = "confirm_delete"
)

// Session holds the per-chat state of an in-flight media conversation.
// One chat has at most one active conversation; starting a new one discards
// the previous session.
type Session struct {
	Action    string // "add" or "delete"
	UserID    int64
	Kind      media.Kind
	Stage     Stage
	Results   []media.Item
	Index     int
	Selected  *media.Item
	ProfileID int64
	Folders   []media.RootFolder
}

// Current returns the result the navigation cursor points at, or nil.
func (s *Session) Current() *media.Item {
	if s.Index < 0 || s.Index >= len(s.Results) {
		return nil
	}
	return &s.Results[s.Index]
}

// SessionStore keeps conversation sessions keyed by chat ID.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewSessionStore returns an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

// Get returns the active session for a chat, or nil.
func (st *SessionStore) Get(chatID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[chatID]
}

// Set replaces the active session for a chat.
func (st *SessionStore) Set(chatID int64, s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[chatID] = s
}

// Clear ends the conversation for a chat.
func (st *SessionStore) Clear(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, chatID)
}
