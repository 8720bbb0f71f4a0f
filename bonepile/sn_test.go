package bonepile

import "testing"

func TestNormalizeSN(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"1830126000087", "1830126000087", true},
		{"1830126000087.0", "1830126000087", true},
		{"1.830126000087E12", "1830126000087", true},
		{" 1830126000087 ", "1830126000087", true},
		{"", "", false},
		{"180012300012", "", false},
		{"27301260000871", "", false},
	}

	for _, c := range cases {
		got, ok := normalizeSN(c.raw)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("normalizeSN(%q) = (%q, %v), want (%q, %v)", c.raw, got, ok, c.want, c.ok)
		}
	}
}

func TestCountDispositionSegments(t *testing.T) {
	cases := []struct {
		cell string
		want int
	}{
		{"", 0},
		{"3/14: waiting on parts", 1},
		{"3/14: waiting; 4/2: resolved", 2},
		{"no dates here", 0},
	}

	for _, c := range cases {
		if got := countDispositionSegments(c.cell); got != c.want {
			t.Errorf("countDispositionSegments(%q) = %d, want %d", c.cell, got, c.want)
		}
	}
}
