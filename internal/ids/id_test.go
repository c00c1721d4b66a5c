package ids

import "testing"

func TestNewIsUniqueAndOrdered(t *testing.T) {
	prev := New()
	seen := map[string]bool{prev: true}
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		if id <= prev {
			t.Fatalf("expected %s > %s", id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestNewLength(t *testing.T) {
	if got := len(New()); got != 26 {
		t.Fatalf("len = %d, want 26", got)
	}
}
