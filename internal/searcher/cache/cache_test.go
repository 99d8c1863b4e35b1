package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/searcher/result"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memoryStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

func sample() *executor.SearchResult {
	return &executor.SearchResult{
		Query:     "dog",
		Mode:      executor.ModeRanked,
		TotalHits: 2,
		Results:   []result.ScoredDoc{{DocID: 2, Score: 0.9}, {DocID: 1, Score: 0.7}},
	}
}

func TestGetOrCompute(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	ctx := context.Background()
	k := Key{Query: "dog", Mode: executor.ModeRanked, Limit: 10, Fingerprint: "ltc-2-3-4"}

	calls := 0
	compute := func() (*executor.SearchResult, error) {
		calls++
		return sample(), nil
	}
	first, hit, err := c.GetOrCompute(ctx, k, compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	second, hit, err := c.GetOrCompute(ctx, k, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times", calls)
	}
	if second.TotalHits != first.TotalHits || second.Results[0] != first.Results[0] {
		t.Fatalf("cached %+v differs from computed %+v", second, first)
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("stats = %d/%d", hits, misses)
	}
}

func TestKeysSeparateModeLimitAndIndex(t *testing.T) {
	base := Key{Query: "cat  AND dog", Mode: executor.ModeBoolean, Limit: 10, Fingerprint: "a"}
	same := base
	same.Query = " cat AND\tdog "
	if buildKey(base) != buildKey(same) {
		t.Fatal("white space must not change the key")
	}
	for _, k := range []Key{
		{Query: base.Query, Mode: executor.ModeRanked, Limit: 10, Fingerprint: "a"},
		{Query: base.Query, Mode: base.Mode, Limit: 5, Fingerprint: "a"},
		{Query: base.Query, Mode: base.Mode, Limit: 10, Fingerprint: "b"},
		{Query: "cat and dog", Mode: base.Mode, Limit: 10, Fingerprint: "a"},
	} {
		if buildKey(k) == buildKey(base) {
			t.Fatalf("%+v collides with %+v", k, base)
		}
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	k := Key{Query: "cat AND", Mode: executor.ModeBoolean}
	boom := errors.New("syntax")
	if _, _, err := c.GetOrCompute(context.Background(), k, func() (*executor.SearchResult, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if _, ok := c.Get(context.Background(), k); ok {
		t.Fatal("error result was cached")
	}
}

func TestSingleflight(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	k := Key{Query: "dog", Mode: executor.ModeRanked}
	var calls atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCompute(context.Background(), k, func() (*executor.SearchResult, error) {
				calls.Add(1)
				<-release
				return sample(), nil
			})
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := calls.Load(); n < 1 || n > 8 {
		t.Fatalf("unexpected compute count %d", n)
	}
}

func TestInvalidate(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	ctx := context.Background()
	c.Set(ctx, Key{Query: "a"}, sample())
	c.Set(ctx, Key{Query: "b"}, sample())
	store.Set(ctx, "other:1", []byte("x"), 0)

	n, err := c.Invalidate(ctx)
	if err != nil || n != 2 {
		t.Fatalf("invalidate = %d, %v", n, err)
	}
	if _, ok := c.Get(ctx, Key{Query: "a"}); ok {
		t.Fatal("entry survived invalidation")
	}
	if _, err := store.Get(ctx, "other:1"); err != nil {
		t.Fatal("keys outside the cache prefix must survive")
	}
}

type downStore struct {
	gets atomic.Int32
}

func (s *downStore) Get(context.Context, string) ([]byte, error) {
	s.gets.Add(1)
	return nil, errors.New("connection refused")
}

func (s *downStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (s *downStore) FlushByPattern(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestUnreachableStoreOpensBreaker(t *testing.T) {
	store := &downStore{}
	c := New(store, time.Minute, nil)
	ctx := context.Background()
	k := Key{Query: "dog", Mode: executor.ModeRanked}

	for i := 0; i < 10; i++ {
		res, hit, err := c.GetOrCompute(ctx, k, func() (*executor.SearchResult, error) {
			return sample(), nil
		})
		if err != nil || hit || res == nil {
			t.Fatalf("call %d: res=%v hit=%v err=%v", i, res, hit, err)
		}
	}
	if c.BreakerState() != "open" {
		t.Fatalf("breaker = %s", c.BreakerState())
	}
	if n := store.gets.Load(); n >= 10 {
		t.Fatalf("open breaker still reached the store %d times", n)
	}
	if _, misses := c.Stats(); misses != 10 {
		t.Fatalf("misses = %d", misses)
	}
}

func TestMissingKeyDoesNotTripBreaker(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	for i := 0; i < 10; i++ {
		c.Get(context.Background(), Key{Query: "absent"})
	}
	if c.BreakerState() != "closed" {
		t.Fatalf("breaker = %s", c.BreakerState())
	}
}
