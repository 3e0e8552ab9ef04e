package stroke

import (
	"math"
	"sort"

	"sketchpath.dev/bezier"
)

// filterPositionsWidths is the Douglas-Peucker-like position+width filter
// shared by AssignFromAverage and the sculpt operations (spec §4.E
// "Shared Douglas-Peucker filter"): a segment is kept intact unless either
// its furthest point exceeds the position tolerance, or its
// linearly-interpolated width disagrees with the true width of some inner
// sample by more than widthRelTol of the interpolated value.
func filterPositionsWidths(pos []bezier.Point, width []float64, tol, widthRelTol float64) []int {
	n := len(pos)
	if n < 2 {
		idxs := make([]int, n)
		for i := range idxs {
			idxs[i] = i
		}
		return idxs
	}
	kept := map[int]bool{0: true, n - 1: true}
	splitFilter(pos, width, 0, n-1, tol, widthRelTol, kept)
	idxs := make([]int, 0, len(kept))
	for i := range kept {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	return idxs
}

func splitFilter(pos []bezier.Point, width []float64, iA, iB int, tol, widthRelTol float64, kept map[int]bool) {
	if iB <= iA+1 {
		return
	}
	a, b := pos[iA], pos[iB]
	maxDist := -1.0
	maxIdx := -1
	needSplit := false
	for i := iA + 1; i < iB; i++ {
		d := math.Abs(perpDistance(pos[i], a, b))
		if d > maxDist {
			maxDist, maxIdx = d, i
		}
		t := fractionAlong(a, b, pos[i])
		interpW := (1-t)*width[iA] + t*width[iB]
		if interpW != 0 && math.Abs(width[i]-interpW) > widthRelTol*interpW {
			needSplit = true
		}
	}
	if maxIdx < 0 {
		return
	}
	if maxDist > tol || needSplit {
		kept[maxIdx] = true
		splitFilter(pos, width, iA, maxIdx, tol, widthRelTol, kept)
		splitFilter(pos, width, maxIdx, iB, tol, widthRelTol, kept)
	}
}

func perpDistance(p, a, b bezier.Point) float64 {
	dir := b.Sub(a)
	length := dir.Len()
	if length == 0 {
		return p.Sub(a).Len()
	}
	return p.Sub(a).PerpDot(dir) / length
}

func fractionAlong(a, b, p bezier.Point) float64 {
	dir := b.Sub(a)
	l2 := dir.LenSq()
	if l2 == 0 {
		return 0
	}
	t := p.Sub(a).Dot(dir) / l2
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
