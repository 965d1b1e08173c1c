package store

// Message is one turn of dialogue kept in session history.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is the mutable per-conversation state.
// CurrentStep == "" means no funnel step is active (free mode).
type Session struct {
	ID          string            `json:"id"`
	Source      string            `json:"source"` // "web" | "telegram"
	CurrentStep string            `json:"current_step"`
	Criteria    map[string]string `json:"criteria"`
	History     []Message         `json:"history"`
}

// NewSession creates an empty session in free mode.
func NewSession(id string) *Session {
	return &Session{
		ID:       id,
		Criteria: make(map[string]string),
	}
}

// AppendHistory records a turn, keeping at most maxLen recent messages.
func (s *Session) AppendHistory(role, content string, maxLen int) {
	s.History = append(s.History, Message{Role: role, Content: content})
	if maxLen > 0 && len(s.History) > maxLen {
		s.History = s.History[len(s.History)-maxLen:]
	}
}

// RecentHistory returns up to n most recent messages.
func (s *Session) RecentHistory(n int) []Message {
	if n <= 0 || len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// ResetFunnel clears funnel position and accumulated criteria.
// History is intentionally preserved.
func (s *Session) ResetFunnel() {
	s.CurrentStep = ""
	s.Criteria = make(map[string]string)
}
