package services

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type exchangeMessage struct {
	role    string
	content string
}

// SessionService keeps per-session conversation history in memory, windowed
// to the most recent maxHistory exchanges.
type SessionService struct {
	mu         sync.Mutex
	maxHistory int
	sessions   map[string][]exchangeMessage
}

func NewSessionService(maxHistory int) *SessionService {
	if maxHistory < 1 {
		maxHistory = 2
	}
	return &SessionService{
		maxHistory: maxHistory,
		sessions:   make(map[string][]exchangeMessage),
	}
}

func (s *SessionService) CreateSession() string {
	sessionID := uuid.NewString()

	s.mu.Lock()
	s.sessions[sessionID] = nil
	s.mu.Unlock()

	log.Printf("[INFO] Created session %s", sessionID)
	return sessionID
}

// AddExchange records one user query and the assistant's answer, trimming
// the window to the last maxHistory exchanges.
func (s *SessionService) AddExchange(sessionID, userMessage, assistantMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[sessionID],
		exchangeMessage{role: "User", content: userMessage},
		exchangeMessage{role: "Assistant", content: assistantMessage},
	)

	if limit := s.maxHistory * 2; len(history) > limit {
		history = history[len(history)-limit:]
	}
	s.sessions[sessionID] = history
}

// FormattedHistory renders the session's window as alternating
// "User: ..." / "Assistant: ..." lines for the generator's system context.
func (s *SessionService) FormattedHistory(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.sessions[sessionID]
	if len(history) == 0 {
		return ""
	}

	lines := make([]string, len(history))
	for i, msg := range history {
		lines[i] = fmt.Sprintf("%s: %s", msg.role, msg.content)
	}
	return strings.Join(lines, "\n")
}

func (s *SessionService) ClearSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	log.Printf("[INFO] Cleared session %s", sessionID)
}
