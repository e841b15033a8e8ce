package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/beatwatch/complaint-server/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionStore keeps the last query filters per chat session so a follow-up
// "email me those" intent can reuse them without the user repeating the
// criteria.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewSessionStore creates a new session store
func NewSessionStore(client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *SessionStore {
	return &SessionStore{client: client, ttl: ttl, logger: logger}
}

func sessionKey(sessionID string) string {
	return "session:filters:" + sessionID
}

// SaveFilters stores the raw filters for a session, refreshing the TTL.
func (s *SessionStore) SaveFilters(ctx context.Context, sessionID string, raw models.RawFilterInput) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal session filters: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session filters: %w", err)
	}
	return nil
}

// LoadFilters returns the filters last saved for a session. A session with
// no saved filters yields an empty filter set, not an error.
func (s *SessionStore) LoadFilters(ctx context.Context, sessionID string) (models.RawFilterInput, error) {
	var raw models.RawFilterInput

	payload, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		s.logger.Infow("No session filters available, using empty filters", "session", sessionID)
		return raw, nil
	}
	if err != nil {
		return raw, fmt.Errorf("load session filters: %w", err)
	}

	if err := json.Unmarshal(payload, &raw); err != nil {
		return models.RawFilterInput{}, fmt.Errorf("decode session filters: %w", err)
	}
	return raw, nil
}
