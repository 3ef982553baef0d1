package di

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/propkit/client-go/cache"
	"github.com/propkit/client-go/entity"
	"github.com/propkit/client-go/invalidation"
	"github.com/propkit/client-go/pagelist"
	"github.com/propkit/client-go/querykeys"
)

// TestConcurrentCacheAccess exercises the full container under concurrent
// reads to verify the cache collapses duplicate fetches.
func TestConcurrentCacheAccess(t *testing.T) {
	config := cache.Config{
		Capacity:           1000,
		NumShards:          16,
		TTL:                5 * time.Second,
		EvictionPercentage: 10,
		EvictionInterval:   time.Second,
	}

	container, err := NewContainer(config)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	ctx := context.Background()
	const numGoroutines = 50
	const operationsPerGoroutine = 20
	const distinctUnits = 10

	var fetches atomic.Int32
	fetchUnit := func(id string) cache.FetchFn[entity.Unit] {
		return func(context.Context) (entity.Unit, error) {
			fetches.Add(1)
			return entity.Unit{ID: id, Label: "unit " + id}, nil
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines*operationsPerGoroutine)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				id := fmt.Sprintf("u%d", (worker+j)%distinctUnits)
				got, err := cache.GetOrFetch(ctx, container.QueryCache(), querykeys.UnitDetail(id), fetchUnit(id))
				if err != nil {
					errs <- fmt.Errorf("worker %d op %d: %v", worker, j, err)
					continue
				}
				if got.ID != id {
					errs <- fmt.Errorf("worker %d op %d: got unit %q, want %q", worker, j, got.ID, id)
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	total := int32(numGoroutines * operationsPerGoroutine)
	if fetches.Load() >= total {
		t.Errorf("expected the cache to collapse fetches: %d fetches for %d reads", fetches.Load(), total)
	}
}

func BenchmarkSegmentSerialization(b *testing.B) {
	serializer := cache.NewSegmentSerializer()

	testCases := []struct {
		name  string
		value any
	}{
		{name: "string", value: "vacant"},
		{name: "filter_map", value: map[string]string{"status": "vacant", "city": "Springfield", "beds": "2"}},
		{name: "struct", value: struct {
			Status string
			Beds   int
			Page   int
		}{"vacant", 2, 3}},
		{name: "slice", value: []string{"vacant", "occupied", "turnover"}},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = serializer.Segment(tc.value)
			}
		})
	}
}

func BenchmarkInvalidationFanout(b *testing.B) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		b.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	router := container.Router()

	directives := []struct {
		name string
		d    invalidation.Directive
	}{
		{name: "kind_wide", d: invalidation.Directive{Kind: entity.KindProperty}},
		{name: "unit_with_parents", d: invalidation.Directive{
			Kind:     entity.KindUnit,
			EntityID: "u1",
			Parents:  entity.ParentIDs{PropertyID: "p1"},
		}},
		{name: "job_scoped", d: invalidation.Directive{
			Kind:     entity.KindJob,
			EntityID: "j1",
			Parents:  entity.ParentIDs{UnitID: "u1"},
		}},
	}

	for _, tc := range directives {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = router.Keys(tc.d)
			}
		})
	}
}

func BenchmarkMaterializerReuse(b *testing.B) {
	units := make([]entity.Unit, 200)
	now := time.Now()
	for i := range units {
		units[i] = entity.Unit{
			ID:        fmt.Sprintf("u%d", i),
			Label:     fmt.Sprintf("%dA", i),
			Status:    "occupied",
			UpdatedAt: now,
		}
	}

	b.Run("all_reused", func(b *testing.B) {
		mat := pagelist.UnitMaterializer()
		mat.Materialize(units) // warm the identity cache
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = mat.Materialize(units)
		}
	})

	b.Run("all_rebuilt", func(b *testing.B) {
		mat := pagelist.UnitMaterializer()
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			for j := range units {
				units[j].UpdatedAt = units[j].UpdatedAt.Add(time.Nanosecond)
			}
			_ = mat.Materialize(units)
		}
	})
}

func BenchmarkConcurrentCacheHits(b *testing.B) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		b.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	ctx := context.Background()

	fetch := func(context.Context) (entity.Unit, error) {
		return entity.Unit{ID: "warm"}, nil
	}
	for i := 0; i < 100; i++ {
		key := querykeys.UnitDetail(fmt.Sprintf("u%d", i))
		if _, err := cache.GetOrFetch(ctx, container.QueryCache(), key, fetch); err != nil {
			b.Fatalf("warm-up fetch failed: %v", err)
		}
	}

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := querykeys.UnitDetail(fmt.Sprintf("u%d", i%100))
			_, _ = cache.GetOrFetch(ctx, container.QueryCache(), key, fetch)
			i++
		}
	})
}
