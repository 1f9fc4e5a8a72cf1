package dice

import (
	"math/rand"
	"strings"
	"testing"
)

func TestRollStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		roll := Roll(rng)
		if roll < 1 || roll > Sides {
			t.Fatalf("roll %d out of range", roll)
		}
		seen[roll] = true
	}
	if len(seen) != Sides {
		t.Fatalf("1000 rolls should cover all %d faces, saw %d", Sides, len(seen))
	}
}

func TestDescribeBands(t *testing.T) {
	cases := []struct {
		roll int
		want string
	}{
		{1, "CRITICAL FAILURE"},
		{2, "significant failure"},
		{5, "significant failure"},
		{6, "This is a failure"},
		{10, "This is a failure"},
		{11, "modest success"},
		{15, "modest success"},
		{16, "clear success"},
		{19, "clear success"},
		{20, "CRITICAL SUCCESS"},
	}
	for _, c := range cases {
		if got := Describe(c.roll); !strings.Contains(got, c.want) {
			t.Fatalf("Describe(%d) = %q, want it to mention %q", c.roll, got, c.want)
		}
	}
}
