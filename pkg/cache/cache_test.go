package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mercator-hq/copycheck/pkg/config"
)

func TestKey(t *testing.T) {
	a := Key("copycheck", "content", "rule/SKILL.md")
	b := Key("copycheck", "content", strings.Repeat("x", 4096))

	if !strings.HasPrefix(a, "copycheck:content:") {
		t.Errorf("Key() = %q, want prefix and namespace", a)
	}
	if len(a) != len(b) {
		t.Errorf("key lengths differ: %d vs %d", len(a), len(b))
	}
	if a == Key("copycheck", "content", "rule/other.md") {
		t.Error("different ids produced the same key")
	}
	if a != Key("copycheck", "content", "rule/SKILL.md") {
		t.Error("Key() is not deterministic")
	}
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("test", 10, time.Hour)

	if _, ok, err := m.Get(ctx, "ns", "a"); ok || err != nil {
		t.Fatalf("Get() on empty = ok %v err %v, want miss", ok, err)
	}
	if err := m.Set(ctx, "ns", "a", "value", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, ok, err := m.Get(ctx, "ns", "a")
	if err != nil || !ok || value != "value" {
		t.Fatalf("Get() = %q, %v, %v; want hit", value, ok, err)
	}
	if _, ok, _ := m.Get(ctx, "other", "a"); ok {
		t.Error("namespaces are not separated")
	}

	stats, _ := m.Stats(ctx)
	if stats.Hits != 1 || stats.Misses != 2 || stats.Keys != 1 {
		t.Errorf("Stats() = %+v", stats)
	}

	deleted, _ := m.Delete(ctx, "ns", "a")
	if !deleted {
		t.Error("Delete() = false, want true")
	}
	_ = m.Set(ctx, "ns", "b", "1", 0)
	_ = m.Set(ctx, "ns", "c", "2", 0)
	if n, _ := m.Flush(ctx); n != 2 {
		t.Errorf("Flush() = %d, want 2", n)
	}
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("test", 10, 20*time.Millisecond)
	_ = m.Set(ctx, "ns", "a", "value", 0)

	time.Sleep(60 * time.Millisecond)

	if _, ok, _ := m.Get(ctx, "ns", "a"); ok {
		t.Error("entry survived its TTL")
	}
}

type failingStore struct {
	gets, sets int
}

func (f *failingStore) Get(context.Context, string, string) (string, bool, error) {
	f.gets++
	return "", false, &BackendError{Backend: "fake", Op: "get", Cause: errors.New("connection refused")}
}

func (f *failingStore) Set(context.Context, string, string, string, time.Duration) error {
	f.sets++
	return errors.New("connection refused")
}

func TestGuard_DisablesOnBackendError(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	tripped := 0
	g := NewGuard(store, "fake", nil, func() { tripped++ })

	value, ok, err := g.Get(ctx, "ns", "a")
	if err != nil || ok || value != "" {
		t.Fatalf("Get() = %q, %v, %v; want silent miss", value, ok, err)
	}
	if !g.Disabled() {
		t.Fatal("guard not disabled after backend error")
	}

	for i := 0; i < 3; i++ {
		_, _, _ = g.Get(ctx, "ns", "a")
		if err := g.Set(ctx, "ns", "a", "v", 0); err != nil {
			t.Errorf("Set() error = %v, want nil when disabled", err)
		}
	}
	if store.gets != 1 || store.sets != 0 {
		t.Errorf("backend called after disable: gets=%d sets=%d", store.gets, store.sets)
	}
	if tripped != 1 {
		t.Errorf("onDisable called %d times, want 1", tripped)
	}
	if err := g.Check(ctx); err == nil {
		t.Error("Check() = nil, want error once disabled")
	}
	stats, _ := g.Stats(ctx)
	if stats.Enabled {
		t.Error("Stats().Enabled = true after disable")
	}
}

// ctxStore fails with the caller's context error, wrapped as a backend error.
type ctxStore struct{}

func (ctxStore) Get(ctx context.Context, _, _ string) (string, bool, error) {
	return "", false, &BackendError{Backend: "fake", Op: "get", Cause: ctx.Err()}
}

func (ctxStore) Set(ctx context.Context, _, _, _ string, _ time.Duration) error {
	return &BackendError{Backend: "fake", Op: "set", Cause: ctx.Err()}
}

func TestGuard_CallerCancellationDoesNotDisable(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"canceled", canceled},
		{"deadline exceeded", expired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tripped := 0
			g := NewGuard(ctxStore{}, "fake", nil, func() { tripped++ })

			value, ok, err := g.Get(tt.ctx, "ns", "a")
			if err != nil || ok || value != "" {
				t.Fatalf("Get() = %q, %v, %v; want silent miss", value, ok, err)
			}
			if err := g.Set(tt.ctx, "ns", "a", "v", 0); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if g.Disabled() || tripped != 0 {
				t.Errorf("guard disabled by caller context: disabled=%v tripped=%d", g.Disabled(), tripped)
			}
		})
	}
}

func TestGuard_MissDoesNotDisable(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(NewMemory("test", 4, time.Hour), "memory", nil, nil)

	if _, ok, _ := g.Get(ctx, "ns", "missing"); ok {
		t.Fatal("Get() hit on empty cache")
	}
	if g.Disabled() {
		t.Fatal("miss disabled the guard")
	}
	if err := g.Check(ctx); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := config.CacheConfig{KeyPrefix: "test", TTL: time.Minute}
	cfg.Memory.Size = 8

	cfg.Backend = "none"
	if g, err := Open(ctx, cfg, nil, nil); err != nil || g != nil {
		t.Errorf("Open(none) = %v, %v; want nil, nil", g, err)
	}

	cfg.Backend = "memory"
	g, err := Open(ctx, cfg, nil, nil)
	if err != nil || g == nil || g.Disabled() {
		t.Fatalf("Open(memory) = %v, %v", g, err)
	}

	cfg.Backend = "bogus"
	if _, err := Open(ctx, cfg, nil, nil); err == nil {
		t.Error("Open(bogus) error = nil, want error")
	}
}

func TestOpen_UnreachableRedis(t *testing.T) {
	cfg := config.CacheConfig{Backend: "redis", KeyPrefix: "test", TTL: time.Minute}
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Redis.DialTimeout = 200 * time.Millisecond
	cfg.Redis.ReadTimeout = 200 * time.Millisecond
	cfg.Redis.WriteTimeout = 200 * time.Millisecond

	disabled := false
	g, err := Open(context.Background(), cfg, nil, func() { disabled = true })
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer g.Close()

	if !g.Disabled() || !disabled {
		t.Fatal("unreachable redis should start disabled")
	}
	if _, ok, err := g.Get(context.Background(), "ns", "a"); ok || err != nil {
		t.Errorf("Get() = ok %v err %v, want silent miss", ok, err)
	}
}

func TestTier(t *testing.T) {
	ctx := context.Background()
	tier := NewTier(NewMemory("test", 4, time.Hour), time.Hour)

	if tier.Name() != "cache" {
		t.Errorf("Name() = %q", tier.Name())
	}
	if err := tier.Set(ctx, "rule/SKILL.md", "body"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	content, ok, err := tier.Get(ctx, "rule/SKILL.md")
	if err != nil || !ok || content != "body" {
		t.Errorf("Get() = %q, %v, %v", content, ok, err)
	}
}

func TestParseKeyspaceStats(t *testing.T) {
	info := "# Stats\r\ntotal_connections_received:5\r\nkeyspace_hits:42\r\nkeyspace_misses:7\r\n"
	hits, misses := parseKeyspaceStats(info)
	if hits != 42 || misses != 7 {
		t.Errorf("parseKeyspaceStats() = %d, %d; want 42, 7", hits, misses)
	}
}
