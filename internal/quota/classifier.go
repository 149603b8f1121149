package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solace-platform/solace/internal/identity"
)

// SubscriptionStore looks up the caller's subscription. The table is owned
// by billing; this gateway only reads it.
type SubscriptionStore interface {
	// ActiveTier returns the tier name of the caller's active subscription,
	// or active=false if there is none.
	ActiveTier(ctx context.Context, userID string) (tierName string, active bool, err error)
}

// PostgresSubscriptions reads subscription status from the subscriptions table.
type PostgresSubscriptions struct {
	pool *pgxpool.Pool
}

func NewPostgresSubscriptions(pool *pgxpool.Pool) *PostgresSubscriptions {
	return &PostgresSubscriptions{pool: pool}
}

func (s *PostgresSubscriptions) ActiveTier(ctx context.Context, userID string) (string, bool, error) {
	var tier string
	err := s.pool.QueryRow(ctx,
		`SELECT tier FROM subscriptions WHERE user_id = $1 AND status = 'active'`, userID,
	).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up subscription for %s: %w", userID, err)
	}
	return tier, true, nil
}

// Classifier maps a verified identity to its quota tier.
type Classifier struct {
	subs  SubscriptionStore
	tiers Tiers
}

func NewClassifier(subs SubscriptionStore, tiers Tiers) *Classifier {
	return &Classifier{subs: subs, tiers: tiers}
}

// TierFor classifies the caller. Guests are always guest-tier; lookup
// errors also degrade to guest — fail closed toward the most restrictive
// tier, never fail open.
func (c *Classifier) TierFor(ctx context.Context, id identity.Identity) Tier {
	if id.IsGuest() {
		return c.tiers[TierGuest]
	}

	tierName, active, err := c.subs.ActiveTier(ctx, id.UserID)
	if err != nil {
		slog.Warn("tier classification failed, degrading to guest", "user", id.UserID, "error", err)
		return c.tiers[TierGuest]
	}
	if active {
		return c.tiers.Resolve(tierName)
	}
	if id.EmailVerified {
		return c.tiers[TierFree]
	}
	return c.tiers[TierGuest]
}
