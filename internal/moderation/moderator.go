package moderation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/solace-platform/solace/internal/metrics"
)

// Moderator screens messages for policy violations, caching classifier
// verdicts and degrading to a local heuristic when the classifier is
// unreachable.
type Moderator struct {
	classifier Classifier
	cache      *Cache
	timeout    time.Duration
}

func NewModerator(classifier Classifier, cache *Cache, timeout time.Duration) *Moderator {
	return &Moderator{
		classifier: classifier,
		cache:      cache,
		timeout:    timeout,
	}
}

// Assess returns the safety verdict for a message. Classifier failures
// never block the request: the caller gets a heuristic verdict instead,
// which is not cached so the real classifier is retried next time.
func (m *Moderator) Assess(ctx context.Context, message string) Verdict {
	key := cacheKey(message)
	if v, ok := m.cache.Get(key); ok {
		metrics.ModerationCacheHitsTotal.WithLabelValues("hit").Inc()
		return v
	}
	metrics.ModerationCacheHitsTotal.WithLabelValues("miss").Inc()

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cls, err := m.classifier.Classify(cctx, message)
	if err != nil {
		slog.Warn("moderation classifier unavailable, using heuristic", "error", err)
		metrics.ModerationFallbacksTotal.Inc()
		return heuristicVerdict(message)
	}

	v := Verdict{Safe: true}
	if cls.Flagged {
		v = Verdict{
			Safe:       false,
			Reason:     "flagged by moderation classifier",
			Categories: cls.Categories,
			Scores:     cls.Scores,
		}
		slog.Warn("message flagged by moderation",
			"categories", strings.Join(cls.Categories, ","),
			"preview", preview(message),
		)
	}

	m.cache.Put(key, v)
	return v
}

// cacheKey is a stable hash of the normalized message.
func cacheKey(message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func preview(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
