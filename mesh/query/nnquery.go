package query

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

type pivotNode struct {
	i      int
	r      r3.Vec
	d1, d2 float64 // distance to pivot 1 and pivot 2
}

/*
NNQuery finds the nearest of a fixed set of points.

Every point stores its distance to two pivots, the corners of the set's bounding box, and the
points are sorted by the first distance. A query seeds its search radius with the point found
last, then only measures candidates whose pivot distances are within that radius of the query's
own (triangle inequality). Ties go to the lowest point index, so repeated queries agree.
*/
type NNQuery struct {
	pts    []r3.Vec
	bk     []pivotNode
	q1, q2 r3.Vec
	last   int // position in bk of the last point found
}

func NewNNQuery(pts []r3.Vec) (q *NNQuery) {
	q = &NNQuery{pts: pts}
	q.Init()
	return
}

// Init rebuilds the search structure, call it after changing the point set
func (q *NNQuery) Init() {
	q.bk = make([]pivotNode, len(q.pts))
	q.last = 0
	if len(q.pts) == 0 {
		return
	}
	lo, hi := q.pts[0], q.pts[0]
	for _, p := range q.pts {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	box := r3.Box{Min: lo, Max: hi}
	q.q1, q.q2 = box.Min, box.Max
	for i, p := range q.pts {
		q.bk[i] = pivotNode{
			i:  i,
			r:  p,
			d1: r3.Norm(r3.Sub(p, q.q1)),
			d2: r3.Norm(r3.Sub(p, q.q2)),
		}
	}
	sort.SliceStable(q.bk, func(a, b int) bool { return q.bk[a].d1 < q.bk[b].d1 })
}

// Find returns the index of the stored point nearest to x, -1 when the set is empty
func (q *NNQuery) Find(x r3.Vec) int {
	if len(q.bk) == 0 {
		return -1
	}
	var (
		r1   = r3.Norm(r3.Sub(x, q.q1))
		r2   = r3.Norm(r3.Sub(x, q.q2))
		best = q.bk[q.last]
		dmin = r3.Norm(r3.Sub(x, best.r))
		pos  = q.last
	)
	slack := func() float64 { return dmin*(1+1e-12) + 1e-300 }
	lo := sort.Search(len(q.bk), func(k int) bool { return q.bk[k].d1 >= r1-slack() })
	for k := lo; k < len(q.bk) && q.bk[k].d1 <= r1+slack(); k++ {
		nd := &q.bk[k]
		if math.Abs(nd.d2-r2) > slack() {
			continue
		}
		d := r3.Norm(r3.Sub(x, nd.r))
		if d < dmin || (d == dmin && nd.i < best.i) {
			best, dmin, pos = *nd, d, k
		}
	}
	q.last = pos
	return best.i
}

// FindBrute is the exhaustive search Find must agree with
func FindBrute(pts []r3.Vec, x r3.Vec) (imin int) {
	imin = -1
	dmin := math.Inf(1)
	for i, p := range pts {
		if d := r3.Norm(r3.Sub(x, p)); d < dmin {
			imin, dmin = i, d
		}
	}
	return
}
