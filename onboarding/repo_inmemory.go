package onboarding

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mailguardhq/onboarding-server/internal/errors"
)

const (
	// DefaultTTL is the absolute session lifetime, measured from creation.
	// Expiry is not sliding: access does not extend it.
	DefaultTTL = 24 * time.Hour

	// DefaultSweepInterval is how often expired sessions are evicted.
	DefaultSweepInterval = time.Minute
)

// InMemoryRepo is a thread-safe in-memory session registry. A background
// sweeper started at construction evicts sessions past their TTL; Close
// stops it. Every accessor returns a snapshot copy, so a handler that got a
// session before an eviction keeps a usable (but orphaned) record.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl  time.Duration
	stop chan struct{}
	done chan struct{}
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates the registry and starts its sweeper. Non-positive
// durations fall back to the defaults.
func NewInMemoryRepo(ttl, sweepInterval time.Duration) *InMemoryRepo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	r := &InMemoryRepo{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.sweepLoop(sweepInterval)
	return r
}

// Create registers a new session with fresh org/mailbox ids. The address
// list is trimmed and de-duplicated; an input with no usable addresses is
// rejected.
func (r *InMemoryRepo) Create(profile Profile, addresses []string) (Session, error) {
	cleaned := cleanAddresses(addresses)
	if len(cleaned) == 0 {
		return Session{}, errors.ErrNoAddresses
	}

	session := &Session{
		OrgID:              uuid.NewString(),
		MailboxID:          uuid.NewString(),
		Profile:            profile,
		MonitoredAddresses: cleaned,
		PendingAddresses:   append([]string(nil), cleaned...),
		CreatedAt:          time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.MailboxID] = session

	return session.snapshot(), nil
}

// Get retrieves a snapshot of a session by mailbox id.
func (r *InMemoryRepo) Get(mailboxID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[mailboxID]
	if !ok {
		return Session{}, false
	}
	return session.snapshot(), true
}

// PopAndRecord removes the front of the pending queue and, when conn is
// non-nil, appends the completed authorization atomically.
func (r *InMemoryRepo) PopAndRecord(mailboxID string, conn *Connection) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[mailboxID]
	if !ok {
		return Session{}, false
	}

	session.popPending()
	if conn != nil {
		session.addConnection(*conn)
	}
	return session.snapshot(), true
}

// MergeConfig overwrites the session's alerting config.
func (r *InMemoryRepo) MergeConfig(mailboxID string, cfg Config) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[mailboxID]
	if !ok {
		return Session{}, false
	}

	session.Config = &cfg
	return session.snapshot(), true
}

// Delete removes a session. Deleting an absent session is a no-op.
func (r *InMemoryRepo) Delete(mailboxID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, mailboxID)
}

// Sweep evicts every session whose age exceeds the TTL and returns the
// number evicted.
func (r *InMemoryRepo) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for mailboxID, session := range r.sessions {
		if now.Sub(session.CreatedAt) > r.ttl {
			delete(r.sessions, mailboxID)
			evicted++
		}
	}

	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Msg("Swept expired onboarding sessions")
	}
	return evicted
}

// Close stops the sweeper and waits for it to exit.
func (r *InMemoryRepo) Close() {
	close(r.stop)
	<-r.done
}

func (r *InMemoryRepo) sweepLoop(interval time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep(time.Now())
		}
	}
}

func cleanAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	cleaned := make([]string, 0, len(addresses))

	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, addr)
	}
	return cleaned
}
