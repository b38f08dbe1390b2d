package match

import (
	"math"
	"sort"
)

// edgeFloor keeps every accepted pair strictly preferable to leaving both
// sides unmatched, even when its confidence is zero.
const edgeFloor = 1e-6

type edge struct {
	left, right int
	weight      float64
}

func unmatched(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	return out
}

// optimalAssignment solves maximum-weight bipartite matching over the given
// edges with the Hungarian method. It returns, for each left index, the
// matched right index or -1.
func optimalAssignment(nLeft, nRight int, edges []edge) []int {
	match := unmatched(nLeft)
	if len(edges) == 0 {
		return match
	}

	// Only nodes touched by an edge take part; compact them.
	rows, cols := map[int]int{}, map[int]int{}
	var rowIDs, colIDs []int
	for _, e := range edges {
		if _, ok := rows[e.left]; !ok {
			rows[e.left] = len(rowIDs)
			rowIDs = append(rowIDs, e.left)
		}
		if _, ok := cols[e.right]; !ok {
			cols[e.right] = len(colIDs)
			colIDs = append(colIDs, e.right)
		}
	}

	transpose := len(rowIDs) > len(colIDs)
	n, m := len(rowIDs), len(colIDs)
	if transpose {
		n, m = m, n
	}
	cost := make([][]float64, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
	}
	isEdge := make(map[[2]int]bool, len(edges))
	for _, e := range edges {
		i, j := rows[e.left], cols[e.right]
		isEdge[[2]int{i, j}] = true
		if transpose {
			i, j = j, i
		}
		cost[i+1][j+1] = -(e.weight + edgeFloor)
	}

	p := hungarian(n, m, cost)
	for j := 1; j <= m; j++ {
		if p[j] == 0 {
			continue
		}
		i, jj := p[j]-1, j-1
		if transpose {
			i, jj = jj, i
		}
		if isEdge[[2]int{i, jj}] {
			match[rowIDs[i]] = colIDs[jj]
		}
	}
	return match
}

// hungarian minimizes total cost over an n x m matrix (n <= m, 1-indexed).
// p[j] is the row assigned to column j, 0 when none.
func hungarian(n, m int, cost [][]float64) []int {
	u := make([]float64, n+1)
	v := make([]float64, m+1)
	p := make([]int, m+1)
	way := make([]int, m+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, m+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		used := make([]bool, m+1)
		for {
			used[j0] = true
			i0, delta, j1 := p[j0], math.Inf(1), 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				if cur := cost[i0][j] - u[i0] - v[j]; cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
			if j0 == 0 {
				break
			}
		}
	}
	return p
}

// greedyAssignment takes edges by descending weight, breaking ties by index,
// and skips any edge whose endpoint is already taken.
func greedyAssignment(nLeft, nRight int, edges []edge) []int {
	match := unmatched(nLeft)
	sorted := append([]edge(nil), edges...)
	sort.SliceStable(sorted, func(a, b int) bool {
		ea, eb := sorted[a], sorted[b]
		if ea.weight != eb.weight {
			return ea.weight > eb.weight
		}
		if ea.left != eb.left {
			return ea.left < eb.left
		}
		return ea.right < eb.right
	})
	taken := make([]bool, nRight)
	for _, e := range sorted {
		if match[e.left] >= 0 || taken[e.right] {
			continue
		}
		match[e.left] = e.right
		taken[e.right] = true
	}
	return match
}
