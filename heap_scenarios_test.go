package shmarena_test

import (
	"fmt"
	"math/rand"
	"testing"

	. "github.com/relaypath/shmarena"
	"github.com/relaypath/shmarena/container"
)

// scenarioName returns a collision-resistant segment name for a single
// test run without depending on DefaultName()'s pid-derived value,
// which every test in this package would otherwise share.
func scenarioName(t *testing.T) string {
	return fmt.Sprintf("shmarena-test-%s-%d.shm", t.Name(), rand.Int63())
}

// TestSingleProcessChurn is spec.md §8 scenario 1: perform a sequence of
// mixed push/pop operations against a shared-memory-backed Vector of
// Vectors and assert at the end that it matches a plain in-process
// control structure element by element.
func TestSingleProcessChurn(t *testing.T) {
	a, err := Open(scenarioName(t), ORdwr|OCreate|OTrunc, 0600)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()
	defer a.Unlink()

	var control [][]int
	shared := container.NewVector[*container.Vector[int]](a)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if rng.Intn(2) == 0 || len(control) == 0 {
			k := rng.Intn(100)
			vals := make([]int, k)
			sv := container.NewVector[int](a)
			for j := 0; j < k; j++ {
				vals[j] = rng.Int()
				sv.PushBack(vals[j])
			}
			control = append(control, vals)
			shared.PushBack(sv)
		} else {
			r := rng.Intn(len(control))
			control = append(control[:r], control[r+1:]...)
			shared.Erase(r)
		}
	}

	if shared.Len() != len(control) {
		t.Fatalf("length mismatch: shared=%d control=%d", shared.Len(), len(control))
	}
	for i := range control {
		sv := shared.At(i)
		if sv.Len() != len(control[i]) {
			t.Fatalf("element %d length mismatch: shared=%d control=%d", i, sv.Len(), len(control[i]))
		}
		for j, want := range control[i] {
			if sv.At(j) != want {
				t.Fatalf("element [%d][%d]: got %d want %d", i, j, sv.At(j), want)
			}
		}
	}
}

// TestOutOfMemoryLeavesArenaUsable is scenario 6: a request that cannot
// be satisfied within MaxSegmentSize fails cleanly, and subsequent small
// allocations still succeed.
func TestOutOfMemoryLeavesArenaUsable(t *testing.T) {
	a, err := Open(scenarioName(t), ORdwr|OCreate|OTrunc, 0600)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()
	defer a.Unlink()

	if _, err := a.Allocate(int(MaxSegmentSize)); err == nil {
		t.Fatal("expected an out-of-memory error for a MaxSegmentSize request")
	}

	p, err := a.Allocate(64)
	if err != nil {
		t.Fatalf("small allocation failed after a prior out-of-memory: %v", err)
	}
	if p == nil {
		t.Fatal("expected a non-nil payload pointer")
	}
	a.Deallocate(p)
}

// TestNilAndZeroAreNoOps is invariant 8.
func TestNilAndZeroAreNoOps(t *testing.T) {
	a, err := Open(scenarioName(t), ORdwr|OCreate|OTrunc, 0600)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()
	defer a.Unlink()

	p, err := a.Allocate(0)
	if err != nil || p != nil {
		t.Fatalf("Allocate(0) = (%v, %v), want (nil, nil)", p, err)
	}
	a.Deallocate(nil) // must not panic
}
