package quota

import (
	"context"
	"log/slog"
	"time"

	"github.com/solace-platform/solace/internal/metrics"
)

// Window names the limit that denied a request.
type Window string

const (
	WindowMinute    Window = "minute"
	WindowHour      Window = "hour"
	WindowDay       Window = "day"
	WindowDayTokens Window = "day_tokens"
)

// Denial reason codes, part of the client contract.
const (
	ReasonRateLimited       = "rate_limited"
	ReasonGuestLimitReached = "guest_limit_reached"
)

// Remaining reports headroom after an admitted request.
type Remaining struct {
	RequestsToday    int `json:"requests_today"`
	TokensToday      int `json:"tokens_today"`
	RequestsThisHour int `json:"requests_this_hour"`
	RequestsMinute   int `json:"requests_minute"`
}

// Decision is the outcome of one check-and-consume transaction.
type Decision struct {
	Allowed    bool
	FailedOpen bool

	// Set when Allowed.
	Remaining Remaining

	// Set when denied.
	Reason     string
	Window     Window
	RetryAfter time.Time
}

// Enforcer applies tiered multi-window limits with atomic
// check-and-commit semantics against a Store.
type Enforcer struct {
	store Store
	now   func() time.Time
}

func NewEnforcer(store Store) *Enforcer {
	return &Enforcer{store: store, now: time.Now}
}

// CheckAndConsume admits or denies one request for the identity key. On
// admission all counters are committed in the same transaction, so two
// concurrent requests can never both slip past a limit they would jointly
// violate. If the store itself is unavailable the request is admitted
// with a warning: availability of support outranks strict quota
// correctness during an infrastructure outage.
func (e *Enforcer) CheckAndConsume(ctx context.Context, key string, tier Tier, estimatedTokens int) Decision {
	var d Decision
	err := e.store.Update(ctx, key, func(rec *Record) {
		d = evaluate(rec, tier, estimatedTokens, e.now())
	})
	if err != nil {
		slog.Warn("quota store unavailable, failing open", "key", key, "error", err)
		metrics.QuotaStoreFailOpenTotal.Inc()
		return Decision{Allowed: true, FailedOpen: true}
	}
	if !d.Allowed {
		metrics.QuotaDenialsTotal.WithLabelValues(string(d.Window), string(tier.Name)).Inc()
	}
	return d
}

// evaluate runs inside the store transaction. It mutates rec: bucket
// rollover and window pruning always, counter increments only on
// admission.
func evaluate(rec *Record, tier Tier, estimatedTokens int, now time.Time) Decision {
	rec.rollover(now)
	rec.pruneMinuteWindow(now)

	// Limits are checked most-transient first; the first violation wins.
	if len(rec.MinuteWindow) >= tier.RequestsPerMinute {
		return deny(tier, WindowMinute, rec.MinuteWindow[0].Add(time.Minute))
	}
	if rec.RequestsThisHour >= tier.RequestsPerHour {
		return deny(tier, WindowHour, nextHour(now))
	}
	if rec.RequestsToday >= tier.RequestsPerDay {
		return deny(tier, WindowDay, nextMidnight(now))
	}
	// The token budget denies before it would be exceeded, never after.
	if rec.TokensToday+estimatedTokens > tier.TokensPerDay {
		return deny(tier, WindowDayTokens, nextMidnight(now))
	}

	rec.RequestsToday++
	rec.RequestsThisHour++
	rec.TokensToday += estimatedTokens
	rec.MinuteWindow = append(rec.MinuteWindow, now)

	return Decision{
		Allowed: true,
		Remaining: Remaining{
			RequestsToday:    tier.RequestsPerDay - rec.RequestsToday,
			TokensToday:      tier.TokensPerDay - rec.TokensToday,
			RequestsThisHour: tier.RequestsPerHour - rec.RequestsThisHour,
			RequestsMinute:   tier.RequestsPerMinute - len(rec.MinuteWindow),
		},
	}
}

func deny(tier Tier, window Window, retryAfter time.Time) Decision {
	reason := ReasonRateLimited
	if tier.Name == TierGuest && (window == WindowDay || window == WindowDayTokens) {
		reason = ReasonGuestLimitReached
	}
	return Decision{
		Allowed:    false,
		Reason:     reason,
		Window:     window,
		RetryAfter: retryAfter,
	}
}

func nextHour(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location()).Add(time.Hour)
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

// Status is the caller-visible usage snapshot for the quota endpoint.
type Status struct {
	Tier              TierName `json:"tier"`
	RequestsToday     int      `json:"requests_today"`
	RequestsPerDay    int      `json:"requests_limit_day"`
	TokensToday       int      `json:"tokens_today"`
	TokensPerDay      int      `json:"tokens_limit_day"`
	RequestsThisHour  int      `json:"requests_this_hour"`
	RequestsPerHour   int      `json:"requests_limit_hour"`
	RequestsMinute    int      `json:"requests_minute"`
	RequestsPerMinute int      `json:"requests_limit_minute"`
}

// GetStatus reads current usage without consuming anything. It still runs
// inside the transaction so stale buckets report as zero.
func (e *Enforcer) GetStatus(ctx context.Context, key string, tier Tier) (Status, error) {
	var st Status
	err := e.store.Update(ctx, key, func(rec *Record) {
		now := e.now()
		rec.rollover(now)
		rec.pruneMinuteWindow(now)
		st = Status{
			Tier:              tier.Name,
			RequestsToday:     rec.RequestsToday,
			RequestsPerDay:    tier.RequestsPerDay,
			TokensToday:       rec.TokensToday,
			TokensPerDay:      tier.TokensPerDay,
			RequestsThisHour:  rec.RequestsThisHour,
			RequestsPerHour:   tier.RequestsPerHour,
			RequestsMinute:    len(rec.MinuteWindow),
			RequestsPerMinute: tier.RequestsPerMinute,
		}
	})
	return st, err
}
