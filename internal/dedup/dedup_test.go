package dedup

import (
	"sync"
	"testing"
)

func TestMarkIfNew(t *testing.T) {
	set := NewSet()
	if !set.MarkIfNew("Naruto") {
		t.Fatal("first mark should report new")
	}
	if set.MarkIfNew("Naruto") {
		t.Fatal("second mark should report seen")
	}
	if set.MarkIfNew("  Naruto  ") {
		t.Fatal("whitespace variant should match existing title")
	}
	if set.Len() != 1 {
		t.Fatalf("len = %d, want 1", set.Len())
	}
}

func TestMarkIfNewRejectsEmpty(t *testing.T) {
	set := NewSet()
	if set.MarkIfNew("   ") {
		t.Fatal("blank title should never be treated as new")
	}
	if set.Len() != 0 {
		t.Fatalf("len = %d, want 0", set.Len())
	}
}

func TestSeed(t *testing.T) {
	set := NewSet()
	set.Seed([]string{"One Piece", "", "  Bleach "})
	if !set.Seen("One Piece") {
		t.Fatal("seeded title should be seen")
	}
	if !set.Seen("Bleach") {
		t.Fatal("seeded title should be trimmed before storing")
	}
	if set.Len() != 2 {
		t.Fatalf("len = %d, want 2", set.Len())
	}
}

func TestConcurrentMark(t *testing.T) {
	set := NewSet()
	var wg sync.WaitGroup
	var mu sync.Mutex
	newCount := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if set.MarkIfNew("Frieren") {
				mu.Lock()
				newCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if newCount != 1 {
		t.Fatalf("title reported new %d times, want exactly once", newCount)
	}
}
