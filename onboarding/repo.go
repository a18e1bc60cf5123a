package onboarding

import "time"

// Repo is the keyed, time-bounded registry of onboarding sessions.
// Implementations are ephemeral caches: nothing survives a process restart,
// and callers must treat a sudden lookup miss as "session expired" rather
// than an error, since the sweeper may evict a session between a handler's
// read and its later mutation.
//
// Sessions cross this interface by value. A returned Session is an isolated
// snapshot, safe to read concurrently with other handlers; mutations happen
// only through the repo's own methods, under its lock.
type Repo interface {
	Create(profile Profile, addresses []string) (Session, error)
	Get(mailboxID string) (Session, bool)

	// PopAndRecord removes the front of the pending queue and, when conn is
	// non-nil, appends the completed authorization in the same critical
	// section. It returns the updated snapshot.
	PopAndRecord(mailboxID string, conn *Connection) (Session, bool)

	// MergeConfig overwrites the session's alerting config and returns the
	// updated snapshot.
	MergeConfig(mailboxID string, cfg Config) (Session, bool)

	Delete(mailboxID string)
	Sweep(now time.Time) int
}
