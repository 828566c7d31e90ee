package ldpc

import (
	"context"
	"sync"

	mat "github.com/nathanhack/sparsemat"
	"github.com/nathanhack/threadpool"
)

// Girth calculates the length of the shortest cycle of the tanner graph of H,
// -1 if it has none. A breadth first search is started from every check.
// threads specifies the number of threads to use if <=0 will use runtime.NumCPU()
func Girth(ctx context.Context, H mat.SparseMat, threads int) int {
	return GirthAtMost(ctx, H, -1, threads)
}

// GirthAtMost returns the girth of H if it is at most maxGirth, else -1.
// A maxGirth of -1 searches without limit.
func GirthAtMost(ctx context.Context, H mat.SparseMat, maxGirth, threads int) int {
	g := newTanner(H)

	pool := threadpool.New(ctx, threads)
	girth := -1
	mux := sync.RWMutex{}
	for i := 0; i < g.checks; i++ {
		index := i
		pool.Add(func() {
			mux.RLock()
			limit := maxGirth
			if girth > 0 {
				limit = girth
			}
			mux.RUnlock()

			c := g.shortestCycle(index, limit)

			mux.Lock()
			if c > 0 && (girth < 0 || c < girth) {
				girth = c
			}
			mux.Unlock()
		})
	}
	pool.Wait()
	return girth
}

// tanner is the bipartite graph of H, checks are nodes [0, checks) and bits follow.
type tanner struct {
	checks    int
	neighbors [][]int
}

func newTanner(H mat.SparseMat) *tanner {
	rows, cols := H.Dims()
	g := &tanner{checks: rows, neighbors: make([][]int, rows+cols)}
	for r := 0; r < rows; r++ {
		for _, c := range H.Row(r).NonzeroArray() {
			g.neighbors[r] = append(g.neighbors[r], rows+c)
			g.neighbors[rows+c] = append(g.neighbors[rows+c], r)
		}
	}
	return g
}

// shortestCycle runs a breadth first search from check and returns the length
// of the shortest cycle it closes, or -1 if there is none of length <= limit.
func (g *tanner) shortestCycle(check, limit int) int {
	dist := make([]int, len(g.neighbors))
	parent := make([]int, len(g.neighbors))
	for i := range dist {
		dist[i] = -1
	}
	dist[check] = 0
	parent[check] = -1
	queue := []int{check}
	best := -1
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if (best > 0 && 2*dist[u] >= best) || (limit > 0 && 2*dist[u] > limit) {
			break
		}
		for _, v := range g.neighbors[u] {
			if v == parent[u] {
				continue
			}
			if dist[v] < 0 {
				dist[v] = dist[u] + 1
				parent[v] = u
				queue = append(queue, v)
				continue
			}
			length := dist[u] + dist[v] + 1
			if (limit < 0 || length <= limit) && (best < 0 || length < best) {
				best = length
			}
		}
	}
	return best
}
