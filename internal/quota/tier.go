package quota

import "github.com/solace-platform/solace/internal/config"

// TierName identifies a quota tier, ordered from most to least restrictive.
type TierName string

const (
	TierGuest     TierName = "guest"
	TierFree      TierName = "free"
	TierPremium   TierName = "premium"
	TierUnlimited TierName = "unlimited"
)

// Tier is an immutable per-caller-class limit table.
type Tier struct {
	Name              TierName
	RequestsPerDay    int
	TokensPerDay      int
	RequestsPerMinute int
	RequestsPerHour   int
}

// Tiers holds the configured limit tables keyed by tier name.
type Tiers map[TierName]Tier

// TiersFromConfig builds the tier tables from configuration.
func TiersFromConfig(cfg config.QuotaConfig) Tiers {
	mk := func(name TierName, l config.TierLimits) Tier {
		return Tier{
			Name:              name,
			RequestsPerDay:    l.RequestsPerDay,
			TokensPerDay:      l.TokensPerDay,
			RequestsPerMinute: l.RequestsPerMinute,
			RequestsPerHour:   l.RequestsPerHour,
		}
	}
	return Tiers{
		TierGuest:     mk(TierGuest, cfg.Guest),
		TierFree:      mk(TierFree, cfg.Free),
		TierPremium:   mk(TierPremium, cfg.Premium),
		TierUnlimited: mk(TierUnlimited, cfg.Unlimited),
	}
}

// Resolve maps a stored subscription tier string to a Tier. Unrecognized
// names default to free rather than failing: subscription records are
// written by billing, and an unknown label must not lock a paying user out.
func (t Tiers) Resolve(name string) Tier {
	if tier, ok := t[TierName(name)]; ok {
		return tier
	}
	return t[TierFree]
}
