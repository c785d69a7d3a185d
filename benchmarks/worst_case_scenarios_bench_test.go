package shmarena_test

import (
	"fmt"
	"testing"

	"github.com/relaypath/shmarena"
)

// BenchmarkWorstCaseScenarios exercises access patterns known to stress
// the segregated free-list allocator: heavy fragmentation, allocations
// that force segment extension, and high mutex contention.
func BenchmarkWorstCaseScenarios(b *testing.B) {

	// Scenario 1: tiny allocations, every one padded up to MinChunkSize.
	b.Run("TinyAllocations", func(b *testing.B) {
		b.Run("Arena_1B", func(b *testing.B) {
			a := newBenchArena(b)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p, err := a.Allocate(1)
				if err != nil {
					b.Fatal(err)
				}
				a.Deallocate(p)
			}
		})

		b.Run("Builtin_1B", func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = make([]byte, 1)
			}
		})
	})

	// Scenario 2: alternating large/small allocations force repeated
	// splits and immediate coalescing.
	b.Run("AlternatingLargeSmall", func(b *testing.B) {
		b.Run("Arena", func(b *testing.B) {
			a := newBenchArena(b)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				size := 100
				if i%2 == 0 {
					size = 7000
				}
				p, err := a.Allocate(size)
				if err != nil {
					b.Fatal(err)
				}
				a.Deallocate(p)
			}
		})

		b.Run("Builtin", func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if i%2 == 0 {
					_ = make([]byte, 7000)
				} else {
					_ = make([]byte, 100)
				}
			}
		})
	})

	// Scenario 3: allocations that never fit in the initial segment and
	// repeatedly force geometric extension.
	b.Run("ForcedExtension", func(b *testing.B) {
		b.Run("Arena", func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				name := fmt.Sprintf("shmarena-bench-ext-%d.shm", i)
				a, err := shmarena.Open(name, shmarena.ORdwr|shmarena.OCreate|shmarena.OTrunc, 0600)
				if err != nil {
					b.Fatal(err)
				}
				p, err := a.Allocate(1 << 20)
				if err != nil {
					b.Fatal(err)
				}
				_ = p
				a.Unlink()
				a.Close()
			}
		})

		b.Run("Builtin", func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = make([]byte, 1<<20)
			}
		})
	})

	// Scenario 4: single large allocations where the per-open overhead of
	// creating a fresh segment dominates.
	b.Run("SingleLargeAllocations", func(b *testing.B) {
		sizes := []int{64 * 1024, 256 * 1024, 1024 * 1024}

		for _, size := range sizes {
			b.Run(fmt.Sprintf("Arena_%dKB", size/1024), func(b *testing.B) {
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					name := fmt.Sprintf("shmarena-bench-large-%d-%d.shm", size, i)
					a, err := shmarena.Open(name, shmarena.ORdwr|shmarena.OCreate|shmarena.OTrunc, 0600)
					if err != nil {
						b.Fatal(err)
					}
					if _, err := a.Allocate(size); err != nil {
						b.Fatal(err)
					}
					a.Unlink()
					a.Close()
				}
			})

			b.Run(fmt.Sprintf("Builtin_%dKB", size/1024), func(b *testing.B) {
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					_ = make([]byte, size)
				}
			})
		}
	})

	// Scenario 5: sparse allocation pattern, most of each allocation's
	// size class left unused.
	b.Run("SparseAllocations", func(b *testing.B) {
		b.Run("Arena_LowUtilization", func(b *testing.B) {
			a := newBenchArena(b)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p, err := a.Allocate(1024)
				if err != nil {
					b.Fatal(err)
				}
				a.Deallocate(p)
			}
		})

		b.Run("Builtin", func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = make([]byte, 1024)
			}
		})
	})

	// Scenario 6: allocations close to the minimum segment size, wasting
	// most of the segment's geometric headroom.
	b.Run("NearSegmentSizeAllocations", func(b *testing.B) {
		const segSize = 4096

		b.Run("Arena", func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				name := fmt.Sprintf("shmarena-bench-near-%d.shm", i)
				a, err := shmarena.Open(name, shmarena.ORdwr|shmarena.OCreate|shmarena.OTrunc, 0600)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := a.Allocate(int(float64(segSize) * 0.9)); err != nil {
					b.Fatal(err)
				}
				a.Unlink()
				a.Close()
			}
		})

		b.Run("Builtin", func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = make([]byte, int(float64(segSize)*0.9))
			}
		})
	})

	// Scenario 7: high contention on a single arena's mutex, the
	// cross-process-safety cost this allocator pays that a pure
	// in-process arena does not.
	b.Run("HighConcurrentContention", func(b *testing.B) {
		a := newBenchArena(b)
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				p, err := a.Allocate(64)
				if err != nil {
					b.Fatal(err)
				}
				a.Deallocate(p)
			}
		})
	})
}
