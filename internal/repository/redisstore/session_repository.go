package redisstore

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"product-advisor-be/internal/repository/contract"
	"product-advisor-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "advisor:session:"

// SessionRepository persists conversation state in Redis so sessions
// survive a process restart. Per-session serialization is still enforced
// in-process by the chat service; this store assumes a single engine
// instance handles any given session id at a time.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *SessionRepository) GetOrCreate(id string) *store.Session {
	ctx := context.Background()
	fresh := store.NewSession(id)
	payload, _ := json.Marshal(fresh)

	// SetNX gives atomic insert-if-absent across concurrent callers.
	created, err := r.client.SetNX(ctx, keyPrefix+id, payload, r.ttl).Result()
	if err != nil {
		log.Printf("[WARN] redis session create failed for %s: %v", id, err)
		return fresh
	}
	if created {
		return fresh
	}
	if existing, found := r.Get(id); found {
		return existing
	}
	return fresh
}

func (r *SessionRepository) Get(id string) (*store.Session, bool) {
	ctx := context.Background()
	raw, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[WARN] redis session get failed for %s: %v", id, err)
		}
		return nil, false
	}
	var s store.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Printf("[WARN] corrupt session payload for %s: %v", id, err)
		return nil, false
	}
	if s.Criteria == nil {
		s.Criteria = make(map[string]string)
	}
	return &s, true
}

func (r *SessionRepository) Save(session *store.Session) {
	ctx := context.Background()
	payload, err := json.Marshal(session)
	if err != nil {
		log.Printf("[WARN] session marshal failed for %s: %v", session.ID, err)
		return
	}
	if err := r.client.Set(ctx, keyPrefix+session.ID, payload, r.ttl).Err(); err != nil {
		log.Printf("[WARN] redis session save failed for %s: %v", session.ID, err)
	}
}

func (r *SessionRepository) Delete(id string) {
	ctx := context.Background()
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		log.Printf("[WARN] redis session delete failed for %s: %v", id, err)
	}
}
