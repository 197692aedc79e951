package ids

import "testing"

func TestProviderMonotonic(t *testing.T) {
	p := NewProvider()
	seen := make(map[uint64]bool)
	var prev uint64
	for i := 0; i < 100; i++ {
		v := p.Next()
		if v == 0 {
			t.Fatalf("Next() returned reserved id 0")
		}
		if v <= prev {
			t.Fatalf("Next() not monotonic: prev=%d v=%d", prev, v)
		}
		if seen[v] {
			t.Fatalf("Next() returned duplicate id %d", v)
		}
		seen[v] = true
		prev = v
	}
}
