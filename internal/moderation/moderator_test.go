package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	calls  int
	result Classification
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	f.calls++
	if f.err != nil {
		return Classification{}, f.err
	}
	return f.result, nil
}

func TestModerator_SafeVerdictCached(t *testing.T) {
	fc := &fakeClassifier{result: Classification{Flagged: false}}
	m := NewModerator(fc, NewCache(5*time.Minute), time.Second)
	ctx := context.Background()

	v1 := m.Assess(ctx, "I had a rough day")
	v2 := m.Assess(ctx, "I had a rough day")

	assert.True(t, v1.Safe)
	assert.True(t, v2.Safe)
	assert.Equal(t, 1, fc.calls, "identical message within TTL must not re-call the classifier")
}

func TestModerator_CacheKeyNormalizes(t *testing.T) {
	fc := &fakeClassifier{result: Classification{Flagged: false}}
	m := NewModerator(fc, NewCache(5*time.Minute), time.Second)
	ctx := context.Background()

	m.Assess(ctx, "Hello There")
	m.Assess(ctx, "  hello there ")

	assert.Equal(t, 1, fc.calls)
}

func TestModerator_CacheExpiresAfterTTL(t *testing.T) {
	fc := &fakeClassifier{result: Classification{Flagged: false}}
	cache := NewCache(5 * time.Minute)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	m := NewModerator(fc, cache, time.Second)
	ctx := context.Background()

	m.Assess(ctx, "same message")
	now = now.Add(5*time.Minute + time.Second)
	m.Assess(ctx, "same message")

	assert.Equal(t, 2, fc.calls, "byte-identical content must re-classify after TTL")
}

func TestModerator_FlaggedVerdict(t *testing.T) {
	fc := &fakeClassifier{result: Classification{
		Flagged:    true,
		Categories: []string{"violence"},
		Scores:     map[string]float64{"violence": 0.97},
	}}
	m := NewModerator(fc, NewCache(5*time.Minute), time.Second)

	v := m.Assess(context.Background(), "threatening message")
	require.False(t, v.Safe)
	assert.Contains(t, v.Categories, "violence")
	assert.InDelta(t, 0.97, v.Scores["violence"], 0.001)
}

func TestModerator_FallbackOnClassifierError(t *testing.T) {
	fc := &fakeClassifier{err: errors.New("classifier down")}
	m := NewModerator(fc, NewCache(5*time.Minute), time.Second)
	ctx := context.Background()

	t.Run("severe phrase unsafe", func(t *testing.T) {
		v := m.Assess(ctx, "you should just kill yourself")
		assert.False(t, v.Safe)
		assert.Contains(t, v.Categories, "heuristic/severe")
	})

	t.Run("ordinary message safe", func(t *testing.T) {
		v := m.Assess(ctx, "I want to talk about my week")
		assert.True(t, v.Safe)
	})

	t.Run("profanity ratio unsafe", func(t *testing.T) {
		v := m.Assess(ctx, "fuck this shit fuck everything")
		assert.False(t, v.Safe)
		assert.Contains(t, v.Categories, "heuristic/profanity")
	})
}

func TestModerator_FallbackVerdictNotCached(t *testing.T) {
	fc := &fakeClassifier{err: errors.New("classifier down")}
	m := NewModerator(fc, NewCache(5*time.Minute), time.Second)
	ctx := context.Background()

	m.Assess(ctx, "hello")
	require.Equal(t, 1, fc.calls)

	// Classifier recovers; the same message must reach it.
	fc.err = nil
	fc.result = Classification{Flagged: false}
	m.Assess(ctx, "hello")
	assert.Equal(t, 2, fc.calls)
}

func TestCache_Sweep(t *testing.T) {
	cache := NewCache(time.Minute)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Put("a", Verdict{Safe: true})
	cache.Put("b", Verdict{Safe: true})
	now = now.Add(30 * time.Second)
	cache.Put("c", Verdict{Safe: true})

	now = now.Add(45 * time.Second) // a, b now 75s old; c 45s old
	removed := cache.Sweep()

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("c")
	assert.True(t, ok)
}

func TestCache_ExpiryOnReadWithoutSweep(t *testing.T) {
	cache := NewCache(time.Minute)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Put("k", Verdict{Safe: true})
	now = now.Add(2 * time.Minute)

	_, ok := cache.Get("k")
	assert.False(t, ok, "stale entry must not be served even before sweep runs")
}
