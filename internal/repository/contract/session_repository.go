package contract

import "product-advisor-be/pkg/store"

// SessionRepository is the injectable per-conversation state store.
// GetOrCreate must be atomic: concurrent calls for the same id observe a
// single session, never two.
type SessionRepository interface {
	GetOrCreate(id string) *store.Session
	Get(id string) (*store.Session, bool)
	Save(session *store.Session)
	Delete(id string)
}
