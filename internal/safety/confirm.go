package safety

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultTokenTTL is how long a confirmation token stays valid when no TTL is
// given to NewConfirmationTracker.
const DefaultTokenTTL = 5 * time.Minute

// pendingConfirmation holds the metadata for an outstanding confirmation token.
type pendingConfirmation struct {
	tool        string
	resource    string
	description string
	createdAt   time.Time
}

// ConfirmationTracker manages single-use, time-limited confirmation tokens
// for tools with side effects on the storefront (such as cart creation). A
// token is bound to the tool and resource it was issued for.
type ConfirmationTracker struct {
	guarded map[string]struct{}
	ttl     time.Duration
	now     func() time.Time

	mu     sync.Mutex
	tokens map[string]*pendingConfirmation
}

// NewConfirmationTracker returns a ConfirmationTracker requiring confirmation
// for the named tools. A nil or empty slice means no tool requires
// confirmation. A ttl of zero or less selects DefaultTokenTTL.
func NewConfirmationTracker(guardedTools []string, ttl time.Duration) *ConfirmationTracker {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	ct := &ConfirmationTracker{
		guarded: make(map[string]struct{}, len(guardedTools)),
		ttl:     ttl,
		now:     time.Now,
		tokens:  make(map[string]*pendingConfirmation),
	}
	for _, tool := range guardedTools {
		ct.guarded[tool] = struct{}{}
	}
	return ct
}

// NeedsConfirmation reports whether tool requires a confirmation token. It is
// safe to call on a nil tracker, which guards nothing.
func (ct *ConfirmationTracker) NeedsConfirmation(tool string) bool {
	if ct == nil {
		return false
	}
	_, ok := ct.guarded[tool]
	return ok
}

// sweepExpired removes all tokens older than the TTL. The caller must hold
// ct.mu.
func (ct *ConfirmationTracker) sweepExpired() {
	now := ct.now()
	for token, pending := range ct.tokens {
		if now.Sub(pending.createdAt) > ct.ttl {
			delete(ct.tokens, token)
		}
	}
}

// RequestConfirmation creates a token for the given tool and resource and
// returns it.
func (ct *ConfirmationTracker) RequestConfirmation(tool, resource, description string) string {
	token := generateToken()

	ct.mu.Lock()
	ct.sweepExpired()
	ct.tokens[token] = &pendingConfirmation{
		tool:        tool,
		resource:    resource,
		description: description,
		createdAt:   ct.now(),
	}
	ct.mu.Unlock()

	return token
}

// Confirm consumes token and reports whether it was issued for the same tool
// and resource and has not expired. A token is consumed even when the check
// fails.
func (ct *ConfirmationTracker) Confirm(token, tool, resource string) bool {
	if token == "" {
		return false
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()

	pending, ok := ct.tokens[token]
	if !ok {
		return false
	}
	delete(ct.tokens, token)

	if ct.now().Sub(pending.createdAt) > ct.ttl {
		return false
	}
	return pending.tool == tool && pending.resource == resource
}

// generateToken returns a cryptographically random hex-encoded token string.
func generateToken() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b[:])
}
