// Package screener rejects registration attempts that look automated or abusive.
package screener

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dtroode/taskhub-auth/internal/model"
)

const (
	ReasonInvalidEmail  = "invalid_email"
	ReasonBlockedDomain = "blocked_domain"
	ReasonRateLimited   = "rate_limited"
)

// Config holds screening rules.
type Config struct {
	BlockedDomains  []string
	RatePerMinute   float64
	Burst           int
	CleanupInterval time.Duration
}

type visitor struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

var _ model.Screener = (*Screener)(nil)

// Screener checks address syntax, a domain blocklist and per-IP attempt rate.
type Screener struct {
	blocked map[string]struct{}
	limit   rate.Limit
	burst   int
	ttl     time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// New creates a Screener. A non-positive rate disables the attempt limit.
func New(cfg Config) *Screener {
	blocked := make(map[string]struct{}, len(cfg.BlockedDomains))
	for _, d := range cfg.BlockedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			blocked[d] = struct{}{}
		}
	}

	ttl := cfg.CleanupInterval
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &Screener{
		blocked:  blocked,
		limit:    rate.Limit(cfg.RatePerMinute / 60),
		burst:    cfg.Burst,
		ttl:      ttl,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (s *Screener) Evaluate(_ context.Context, req model.ScreenRequest) model.Decision {
	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return model.Decision{Reason: ReasonInvalidEmail}
	}

	at := strings.LastIndexByte(addr.Address, '@')
	domain := strings.ToLower(addr.Address[at+1:])
	if _, ok := s.blocked[domain]; ok {
		return model.Decision{Reason: ReasonBlockedDomain}
	}

	if s.limit > 0 && req.IP != "" && !s.allow(req.IP) {
		return model.Decision{Reason: ReasonRateLimited}
	}

	return model.Decision{Allowed: true}
}

func (s *Screener) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	v, ok := s.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[ip] = v
	}
	v.lastAccess = now

	return v.limiter.AllowN(now, 1)
}

func (s *Screener) evictLocked(now time.Time) {
	for ip, v := range s.visitors {
		if now.Sub(v.lastAccess) > s.ttl {
			delete(s.visitors, ip)
		}
	}
}
