// Package ratelimit provides per-client, per-endpoint request limiting.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// defaultBucket keys requests that match no endpoint config.
const defaultBucket = "*"

type entry struct {
	limiter  *rate.Limiter
	limit    int
	lastSeen time.Time
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	config    *Config
	whitelist map[string]bool
	blacklist map[string]bool

	mu      sync.Mutex
	entries map[string]*entry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
// A nil config enables limiting with the package defaults.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    600,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			IdleTimeout:     time.Hour,
			EndpointConfigs: DefaultEndpointConfigs(),
		}
	}

	l := &Limiter{
		config:    config,
		whitelist: toSet(config.Whitelist),
		blacklist: toSet(config.Blacklist),
		entries:   make(map[string]*entry),
		stop:      make(chan struct{}),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop(config.CleanupInterval)
	}

	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	// Buckets are keyed by the matched pattern, never the raw path, so
	// distinct IDs under one prefix share a limiter and the map stays bounded.
	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Path:   defaultBucket,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if endpointConfig.Limit <= 0 || endpointConfig.Window <= 0 {
		return true, Info{Allowed: true}
	}

	e := l.entry(clientID+":"+method+":"+endpointConfig.Path, endpointConfig)

	now := time.Now()
	allowed := e.limiter.AllowN(now, 1)
	tokens := e.limiter.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     e.limit,
		Remaining: max(int(tokens), 0),
	}
	if !allowed {
		perSecond := float64(e.limiter.Limit())
		if perSecond > 0 {
			info.RetryAfter = time.Duration((1 - tokens) / perSecond * float64(time.Second))
		}
	}
	return allowed, info
}

func (l *Limiter) entry(key string, cfg *EndpointConfig) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		burst := cfg.Burst
		if burst <= 0 {
			burst = cfg.Limit
		}
		every := cfg.Window / time.Duration(cfg.Limit)
		e = &entry{
			limiter: rate.NewLimiter(rate.Every(every), burst),
			limit:   cfg.Limit,
		}
		l.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stop:
			return
		}
	}
}

// cleanup drops limiters that have been idle longer than IdleTimeout.
func (l *Limiter) cleanup(now time.Time) int {
	idle := l.config.IdleTimeout
	if idle <= 0 {
		idle = time.Hour
	}
	cutoff := now.Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if item != "" {
			set[item] = true
		}
	}
	return set
}
