package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundFloat(t *testing.T) {
	cases := []struct {
		val       float64
		precision uint
		expected  float64
	}{
		{1.23456, 2, 1.23},
		{1.235, 2, 1.24},
		{-0.0004, 3, -0.0},
		{1000.1234567, 6, 1000.123457},
	}

	for _, c := range cases {
		assert.InDelta(t, c.expected, RoundFloat(c.val, c.precision), 1e-12)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[int]string{5: "e", 1: "a", 3: "c"}
	assert.Equal(t, []int{1, 3, 5}, SortedKeys(m))

	type pair struct{ a, b int }
	pm := map[pair]bool{{2, 1}: true, {1, 9}: true, {1, 2}: true}
	keys := SortedKeysFunc(pm, func(x, y pair) int {
		if x.a != y.a {
			return x.a - y.a
		}
		return x.b - y.b
	})
	assert.Equal(t, []pair{{1, 2}, {1, 9}, {2, 1}}, keys)
}
