package config

import "time"

type SessionConfig interface {
	GetSessionTTL() time.Duration
	GetSweepInterval() time.Duration
	GetNotifyPause() time.Duration
	GetOutboundTimeout() time.Duration
}

type Sessions struct{}

var _ SessionConfig = Sessions{}

// GetSessionTTL is the absolute lifetime of an onboarding session.
func (Sessions) GetSessionTTL() time.Duration {
	return 24 * time.Hour
}

// GetSweepInterval is how often expired sessions are evicted.
func (Sessions) GetSweepInterval() time.Duration {
	return 60 * time.Second
}

// GetNotifyPause is the delay between successive completion events, to
// respect downstream rate limits.
func (Sessions) GetNotifyPause() time.Duration {
	return 3 * time.Second
}

// GetOutboundTimeout bounds calls to providers and the downstream hook.
func (Sessions) GetOutboundTimeout() time.Duration {
	return 15 * time.Second
}
