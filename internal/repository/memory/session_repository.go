package memory

import (
	"sync"
	"time"

	"product-advisor-be/internal/repository/contract"
	"product-advisor-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps conversation state in process memory with a TTL,
// so abandoned sessions expire instead of leaking for the process lifetime.
type SessionRepository struct {
	cache *cache.Cache
	mu    sync.Mutex // guards the check-then-set in GetOrCreate
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

// GetOrCreate returns the existing session or atomically installs a fresh
// one. Concurrent callers for the same id always see the same session.
func (r *SessionRepository) GetOrCreate(id string) *store.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(id); found {
		return x.(*store.Session)
	}
	s := store.NewSession(id)
	r.cache.Set(id, s, cache.DefaultExpiration)
	return s
}

func (r *SessionRepository) Get(id string) (*store.Session, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*store.Session), true
	}
	return nil, false
}

// Save refreshes the TTL. The cache holds a pointer, so mutations made
// under the per-session lock are already visible.
func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Delete(id string) {
	r.cache.Delete(id)
}
