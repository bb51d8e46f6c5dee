package async

import (
	"testing"
	"time"
)

func TestPromise(t *testing.T) {
	expected := 42
	resultChan := Promise(func() int {
		time.Sleep(100 * time.Millisecond)
		return expected
	})

	select {
	case result := <-resultChan:
		if result != expected {
			t.Fatalf("Expected %d but got %d", expected, result)
		}
	case <-time.After(time.Second):
		t.Fatal("Promise timed out")
	}
}

func TestGatherN(t *testing.T) {
	f1 := Promise(func() int {
		time.Sleep(30 * time.Millisecond)
		return 1
	})
	f2 := Promise(func() int {
		return 2
	})
	f3 := Promise(func() int {
		time.Sleep(10 * time.Millisecond)
		return 3
	})

	r := <-GatherN(f1, f2, f3)

	expected := []int{1, 2, 3}
	for i, result := range r {
		if result != expected[i] {
			t.Errorf("expected %v, got %v", expected[i], result)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
		chunks  int
	}{
		{"even", 100, 4, 4},
		{"uneven", 10, 3, 3},
		{"more workers than items", 3, 8, 3},
		{"single worker", 7, 1, 1},
		{"zero workers", 7, 0, 1},
		{"empty range", 0, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranges := Split(tt.n, tt.workers, func(lo, hi int) [2]int {
				return [2]int{lo, hi}
			})
			if len(ranges) != tt.chunks {
				t.Fatalf("expected %d chunks, got %d: %v", tt.chunks, len(ranges), ranges)
			}
			next := 0
			for _, r := range ranges {
				if r[0] != next {
					t.Errorf("chunk starts at %d, expected %d", r[0], next)
				}
				next = r[1]
			}
			if next != tt.n {
				t.Errorf("chunks end at %d, expected %d", next, tt.n)
			}
		})
	}
}
