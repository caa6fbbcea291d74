package pool

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeProvider struct {
	name  string
	out   string
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, _ string) (string, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.out, f.err
}

func passages(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "passage number " + string(rune('a'+i)) + " with enough characters"
	}
	return strings.Join(parts, " "+Delimiter+" ")
}

func TestRequestKeyNormalizes(t *testing.T) {
	assert.Equal(t, "50-general-casual", Request{}.Key())
	assert.Equal(t, "30-space travel-technical", Request{WordCount: 30, Topic: "  Space Travel ", Style: "technical"}.Key())
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(Request{WordCount: 40})
	assert.Contains(t, p, "Generate 5 distinct 40-word typing practice passages.")
	assert.Contains(t, p, "Topic: General Knowledge.")
	assert.Contains(t, p, "Style: casual.")
	assert.Contains(t, p, `"|||"`)
}

func TestParseBatch(t *testing.T) {
	got, err := ParseBatch("  short ||| this part is long enough to keep |||\n another acceptable passage here \n")
	require.NoError(t, err)
	assert.Equal(t, []string{"this part is long enough to keep", "another acceptable passage here"}, got)

	single := strings.Repeat("word ", 12)
	got, err = ParseBatch("tiny|||" + single)
	require.NoError(t, err)
	assert.Equal(t, []string{strings.TrimSpace(single)}, got)

	long := "one passage without any delimiter at all but plenty of characters"
	got, err = ParseBatch(long)
	require.NoError(t, err)
	assert.Equal(t, []string{long}, got)

	_, err = ParseBatch("a ||| b ||| c")
	assert.ErrorIs(t, err, ErrEmptyBatch)
	_, err = ParseBatch("   ")
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestChainFallsBackInOrder(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("boom")}
	fallback := &fakeProvider{name: "fallback", out: passages(3)}
	chain := NewChain(zaptest.NewLogger(t), time.Second, primary, fallback)

	got, err := chain.GenerateBatch(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.EqualValues(t, 1, primary.calls.Load())
	assert.EqualValues(t, 1, fallback.calls.Load())
}

func TestChainUnparseableOutputFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "primary", out: "nope"}
	fallback := &fakeProvider{name: "fallback", out: "also nope"}
	chain := NewChain(zaptest.NewLogger(t), 0, primary, fallback)

	_, err := chain.GenerateBatch(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Contains(t, err.Error(), "fallback")
}

func TestPoolUnavailableWithoutProviders(t *testing.T) {
	p := New(NewMemoryStore(0, 0), nil)
	assert.False(t, p.Available())
	_, _, err := p.Next(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)

	p = New(NewMemoryStore(0, 0), NewChain(nil, 0))
	assert.False(t, p.Available())
}

func TestPoolServesFIFOAndRefills(t *testing.T) {
	prov := &fakeProvider{name: "p", out: passages(BatchSize)}
	p := New(NewMemoryStore(0, 0), NewChain(nil, 0, prov), WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	for i := 0; i < BatchSize; i++ {
		text, remaining, err := p.Next(ctx, Request{WordCount: 30})
		require.NoError(t, err)
		assert.Contains(t, text, "passage number "+string(rune('a'+i)))
		assert.Equal(t, BatchSize-1-i, remaining)
	}
	assert.EqualValues(t, 1, prov.calls.Load())

	_, remaining, err := p.Next(ctx, Request{WordCount: 30})
	require.NoError(t, err)
	assert.Equal(t, BatchSize-1, remaining)
	assert.EqualValues(t, 2, prov.calls.Load())
}

func TestPoolKeysArePartitioned(t *testing.T) {
	prov := &fakeProvider{name: "p", out: passages(2)}
	p := New(NewMemoryStore(0, 0), NewChain(nil, 0, prov))
	ctx := context.Background()

	_, _, err := p.Next(ctx, Request{WordCount: 30, Topic: "cats"})
	require.NoError(t, err)
	_, _, err = p.Next(ctx, Request{WordCount: 30, Topic: "CATS "})
	require.NoError(t, err)
	assert.EqualValues(t, 1, prov.calls.Load())

	_, _, err = p.Next(ctx, Request{WordCount: 31, Topic: "cats"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, prov.calls.Load())
}

func TestPoolSharesConcurrentRefill(t *testing.T) {
	prov := &fakeProvider{name: "p", out: passages(BatchSize), gate: make(chan struct{})}
	p := New(NewMemoryStore(0, 0), NewChain(nil, 0, prov))

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := p.Next(context.Background(), Request{})
			errs <- err
		}()
	}
	require.Eventually(t, func() bool { return prov.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Let the other callers join the in-flight refill.
	time.Sleep(20 * time.Millisecond)
	close(prov.gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, prov.calls.Load())
}

func TestPoolRefillFailure(t *testing.T) {
	prov := &fakeProvider{name: "p", err: errors.New("quota")}
	p := New(NewMemoryStore(0, 0), NewChain(nil, 0, prov))
	_, _, err := p.Next(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestPoolExpireUsesRetention(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(0, 0)
	store.now = func() time.Time { return now }
	p := New(store, NewChain(nil, 0, &fakeProvider{name: "p"}),
		WithRetention(time.Hour),
		WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "k", []string{"old one", "old two"}))

	now = now.Add(30 * time.Minute)
	require.NoError(t, store.Put(ctx, "k", []string{"new"}))

	now = now.Add(45 * time.Minute)
	n, err := p.Expire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	text, ok, err := store.Take(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", text)
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewMemoryStore(2, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a", []string{"1"}))
	require.NoError(t, store.Put(ctx, "b", []string{"2"}))
	require.NoError(t, store.Put(ctx, "c", []string{"3"}))

	n, err := store.Remaining(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = store.Remaining(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestJanitorStopsOnCancel(t *testing.T) {
	p := New(NewMemoryStore(0, 0), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Janitor(ctx, time.Millisecond) }()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
