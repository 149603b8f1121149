package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solace-platform/solace/internal/config"
	"github.com/solace-platform/solace/internal/identity"
)

type fakeSubscriptions struct {
	tier   string
	active bool
	err    error
}

func (f fakeSubscriptions) ActiveTier(ctx context.Context, userID string) (string, bool, error) {
	return f.tier, f.active, f.err
}

func testTiers() Tiers {
	limits := config.TierLimits{RequestsPerDay: 1, TokensPerDay: 1, RequestsPerMinute: 1, RequestsPerHour: 1}
	return TiersFromConfig(config.QuotaConfig{
		Guest: limits, Free: limits, Premium: limits, Unlimited: limits,
	})
}

func TestClassifier_TierFor(t *testing.T) {
	tiers := testTiers()
	ctx := context.Background()

	tests := []struct {
		name string
		id   identity.Identity
		subs fakeSubscriptions
		want TierName
	}{
		{
			name: "guest flag always guest",
			id:   identity.Identity{UserID: "u1", Guest: true, EmailVerified: true},
			subs: fakeSubscriptions{tier: "premium", active: true},
			want: TierGuest,
		},
		{
			name: "guest prefix always guest",
			id:   identity.Identity{UserID: "guest:abc", EmailVerified: true},
			subs: fakeSubscriptions{tier: "premium", active: true},
			want: TierGuest,
		},
		{
			name: "active premium subscription",
			id:   identity.Identity{UserID: "u1", EmailVerified: true},
			subs: fakeSubscriptions{tier: "premium", active: true},
			want: TierPremium,
		},
		{
			name: "active unlimited subscription",
			id:   identity.Identity{UserID: "u1"},
			subs: fakeSubscriptions{tier: "unlimited", active: true},
			want: TierUnlimited,
		},
		{
			name: "unrecognized subscription tier defaults to free",
			id:   identity.Identity{UserID: "u1"},
			subs: fakeSubscriptions{tier: "legacy-gold", active: true},
			want: TierFree,
		},
		{
			name: "verified email non-subscriber is free",
			id:   identity.Identity{UserID: "u1", EmailVerified: true},
			subs: fakeSubscriptions{},
			want: TierFree,
		},
		{
			name: "unverified non-subscriber is guest",
			id:   identity.Identity{UserID: "u1"},
			subs: fakeSubscriptions{},
			want: TierGuest,
		},
		{
			name: "lookup error fails closed to guest",
			id:   identity.Identity{UserID: "u1", EmailVerified: true},
			subs: fakeSubscriptions{err: errors.New("db down")},
			want: TierGuest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.subs, tiers)
			got := c.TierFor(ctx, tt.id)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}
