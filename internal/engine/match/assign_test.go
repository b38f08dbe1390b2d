package match

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptimalAssignment_BeatsGreedyFirstPick(t *testing.T) {
	edges := []edge{
		{left: 0, right: 0, weight: 0.9},
		{left: 0, right: 1, weight: 0.85},
		{left: 1, right: 0, weight: 0.8},
	}
	assert.Equal(t, []int{1, 0}, optimalAssignment(2, 2, edges))
	assert.Equal(t, []int{0, -1}, greedyAssignment(2, 2, edges))
}

func TestOptimalAssignment_MoreLeftThanRight(t *testing.T) {
	edges := []edge{
		{left: 2, right: 0, weight: 0.7},
		{left: 0, right: 0, weight: 0.6},
	}
	assert.Equal(t, []int{-1, -1, 0}, optimalAssignment(3, 1, edges))
}

func TestOptimalAssignment_NoEdges(t *testing.T) {
	assert.Equal(t, []int{-1, -1}, optimalAssignment(2, 5, nil))
	assert.Equal(t, []int{-1}, greedyAssignment(1, 0, nil))
}

func TestOptimalAssignment_ZeroWeightEdgeStillMatches(t *testing.T) {
	assert.Equal(t, []int{0}, optimalAssignment(1, 1, []edge{{left: 0, right: 0}}))
}

func TestGreedyAssignment_TiesBrokenByIndex(t *testing.T) {
	edges := []edge{
		{left: 1, right: 0, weight: 0.7},
		{left: 0, right: 1, weight: 0.7},
		{left: 0, right: 0, weight: 0.7},
	}
	assert.Equal(t, []int{0, -1}, greedyAssignment(2, 2, edges))
}

func TestOptimalAssignment_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		nLeft, nRight := 1+rng.Intn(4), 1+rng.Intn(4)
		var edges []edge
		for i := 0; i < nLeft; i++ {
			for j := 0; j < nRight; j++ {
				if rng.Float64() < 0.6 {
					edges = append(edges, edge{left: i, right: j, weight: rng.Float64()})
				}
			}
		}
		got := optimalAssignment(nLeft, nRight, edges)
		assertValidAssignment(t, got, nRight, edges)
		assert.InDelta(t, bruteForce(nLeft, nRight, edges), total(got, edges), 1e-4, "round %d", round)
	}
}

func assertValidAssignment(t *testing.T, match []int, nRight int, edges []edge) {
	t.Helper()
	used := make([]bool, nRight)
	for i, j := range match {
		if j < 0 {
			continue
		}
		assert.False(t, used[j], "right %d assigned twice", j)
		used[j] = true
		_, ok := weightOf(edges, i, j)
		assert.True(t, ok, "pair (%d,%d) is not an edge", i, j)
	}
}

func weightOf(edges []edge, i, j int) (float64, bool) {
	for _, e := range edges {
		if e.left == i && e.right == j {
			return e.weight, true
		}
	}
	return 0, false
}

func total(match []int, edges []edge) float64 {
	sum := 0.0
	for i, j := range match {
		if j >= 0 {
			w, _ := weightOf(edges, i, j)
			sum += w
		}
	}
	return sum
}

func bruteForce(nLeft, nRight int, edges []edge) float64 {
	used := make([]bool, nRight)
	var best func(i int) float64
	best = func(i int) float64 {
		if i == nLeft {
			return 0
		}
		top := best(i + 1)
		for j := 0; j < nRight; j++ {
			w, ok := weightOf(edges, i, j)
			if !ok || used[j] {
				continue
			}
			used[j] = true
			if v := w + best(i+1); v > top {
				top = v
			}
			used[j] = false
		}
		return top
	}
	return best(0)
}
