package activities

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"activityhub-backend/lib/kvstore"
)

// CredentialStore holds the single portal token. The in-process copy is
// authoritative within a run; the kv slot lets a restarted process pick
// up a still-valid token instead of logging in again. Durable reads and
// writes failing is never fatal, the process just logs in more often.
type CredentialStore struct {
	kv kvstore.Store

	mu     sync.Mutex
	cached string
}

func NewCredentialStore(kv kvstore.Store) *CredentialStore {
	return &CredentialStore{kv: kv}
}

// Load returns the current token, or "" when there is none.
func (c *CredentialStore) Load(ctx context.Context) string {
	c.mu.Lock()
	cached := c.cached
	c.mu.Unlock()
	if cached != "" {
		return cached
	}

	value, err := c.kv.Get(ctx, credentialKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ""
	}
	if err != nil {
		slog.WarnContext(ctx, "read durable credential", "err", err)
		return ""
	}

	c.mu.Lock()
	c.cached = value
	c.mu.Unlock()
	return value
}

func (c *CredentialStore) Save(ctx context.Context, token string) {
	c.mu.Lock()
	c.cached = token
	c.mu.Unlock()

	err := c.kv.Set(ctx, credentialKey, token)
	if err != nil {
		slog.WarnContext(ctx, "persist credential", "err", err)
	}
}

func (c *CredentialStore) Clear(ctx context.Context) {
	c.mu.Lock()
	c.cached = ""
	c.mu.Unlock()

	err := c.kv.Delete(ctx, credentialKey)
	if err != nil {
		slog.WarnContext(ctx, "clear durable credential", "err", err)
	}
}
