package validation

import (
	"testing"
	"time"

	"github.com/andyoucreate/rilaykit/model"
)

func TestGenerateKey(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "joe", "signup:email:joe"},
		{"int", 42, "signup:email:42"},
		{"bool", true, "signup:email:true"},
		{"nil", nil, "signup:email:<nil>"},
		{"map", map[string]any{"a": 1}, `signup:email:{"a":1}`},
		{"unserializable", func() {}, "signup:email:[object]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateKey("signup", "email", tt.value)
			if got != tt.want {
				t.Errorf("GenerateKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCache_GetSet(t *testing.T) {
	c := NewCache(CacheConfig{})

	if _, ok := c.Get("k"); ok {
		t.Fatal("Get on empty cache should miss")
	}

	c.Set("k", model.ValidResult())
	res, ok := c.Get("k")
	if !ok {
		t.Fatal("Get after Set should hit")
	}
	if !res.Valid {
		t.Error("cached result should be valid")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %d hits / %d misses, want 1/1", stats.Hits, stats.Misses)
	}
}

func TestCache_HasDoesNotRefreshOrder(t *testing.T) {
	c := NewCache(CacheConfig{MaxSize: 2})

	c.Set("a", model.ValidResult())
	c.Set("b", model.ValidResult())

	// Has must not promote "a"; the next insert should still evict it as
	// the least recently used entry.
	if !c.Has("a") {
		t.Fatal("Has(a) = false, want true")
	}
	c.Set("c", model.ValidResult())

	if c.Has("a") {
		t.Error("a should have been evicted as LRU")
	}
	if !c.Has("b") || !c.Has("c") {
		t.Error("b and c should survive")
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c := NewCache(CacheConfig{MaxSize: 3})

	c.Set("a", model.ValidResult())
	c.Set("b", model.ValidResult())
	c.Set("c", model.ValidResult())

	// Touch "a" so "b" becomes least recently used.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) should hit")
	}

	c.Set("d", model.ValidResult())

	if c.Has("b") {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if !c.Has(k) {
			t.Errorf("%s should still be cached", k)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}
}

func TestCache_EvictionPrefersExpired(t *testing.T) {
	c := NewCache(CacheConfig{MaxSize: 2, TTL: time.Hour, MaxAge: 2 * time.Minute})
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("old", model.ValidResult())
	now = now.Add(time.Minute)
	c.Set("fresh", model.ValidResult())
	c.Get("old") // move "old" to the most recently used position

	// "old" ages past MaxAge while sitting at the MRU end, so plain LRU
	// order would evict "fresh" instead.
	now = now.Add(90 * time.Second)
	c.Set("new", model.ValidResult())

	if c.Has("old") {
		t.Error("expired entry should have been evicted first")
	}
	if !c.Has("fresh") || !c.Has("new") {
		t.Error("unexpired entries should survive")
	}
}

func TestCache_TTLAndMaxAgeAreIndependent(t *testing.T) {
	c := NewCache(CacheConfig{TTL: time.Minute, MaxAge: 5 * time.Minute})
	now := time.Now()
	c.now = func() time.Time { return now }

	// Idle expiry: no access for longer than TTL.
	c.Set("idle", model.ValidResult())
	now = now.Add(61 * time.Second)
	if _, ok := c.Get("idle"); ok {
		t.Error("entry idle past TTL should be expired")
	}

	// Absolute expiry: kept warm by access but older than MaxAge.
	now = time.Now()
	c.Set("aged", model.ValidResult())
	for i := 0; i < 10; i++ {
		now = now.Add(30 * time.Second)
		c.Get("aged")
	}
	now = now.Add(30 * time.Second) // total > 5m since insertion
	if _, ok := c.Get("aged"); ok {
		t.Error("entry older than MaxAge should expire even when accessed")
	}
}

func TestCache_ExpiredEntryDeletedLazily(t *testing.T) {
	c := NewCache(CacheConfig{TTL: time.Minute, MaxAge: time.Hour})
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", model.ValidResult())
	now = now.Add(2 * time.Minute)

	if c.Has("k") {
		t.Fatal("expired entry should read as absent")
	}
	if got := c.Stats().Size; got != 0 {
		t.Errorf("size after lazy delete = %d, want 0", got)
	}
}

func TestCache_Cleanup(t *testing.T) {
	c := NewCache(CacheConfig{TTL: time.Minute, MaxAge: time.Hour})
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", model.ValidResult())
	c.Set("b", model.ValidResult())
	now = now.Add(2 * time.Minute)
	c.Set("c", model.ValidResult())

	if removed := c.Cleanup(); removed != 2 {
		t.Errorf("Cleanup removed %d, want 2", removed)
	}
	if !c.Has("c") {
		t.Error("unexpired entry should survive Cleanup")
	}
}

func TestCache_ClearFormAndField(t *testing.T) {
	c := NewCache(CacheConfig{})

	c.Set(GenerateKey("signup", "email", "a"), model.ValidResult())
	c.Set(GenerateKey("signup", "email", "b"), model.ValidResult())
	c.Set(GenerateKey("signup", "name", "c"), model.ValidResult())
	c.Set(GenerateKey("checkout", "email", "a"), model.ValidResult())

	c.ClearField("signup", "email")
	if c.Has(GenerateKey("signup", "email", "a")) || c.Has(GenerateKey("signup", "email", "b")) {
		t.Error("ClearField should remove all values of the field")
	}
	if !c.Has(GenerateKey("signup", "name", "c")) {
		t.Error("ClearField should leave other fields alone")
	}

	c.ClearForm("signup")
	if c.Has(GenerateKey("signup", "name", "c")) {
		t.Error("ClearForm should remove every entry of the form")
	}
	if !c.Has(GenerateKey("checkout", "email", "a")) {
		t.Error("ClearForm should leave other forms alone")
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := NewCache(CacheConfig{})
	c.Set("k", model.ValidResult())

	if !c.Delete("k") {
		t.Error("Delete of present key should report true")
	}
	if c.Delete("k") {
		t.Error("Delete of absent key should report false")
	}

	c.Set("a", model.ValidResult())
	c.Set("b", model.ValidResult())
	c.Clear()
	if got := c.Stats().Size; got != 0 {
		t.Errorf("size after Clear = %d, want 0", got)
	}
}
