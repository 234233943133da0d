package physics

import (
	"cmp"
	"math"
	"slices"
)

// bodyPair is an unordered pair of body ids stored with a < b, so a pair is
// equal to itself regardless of discovery order.
type bodyPair struct {
	a, b BodyId
}

func makePair(x, y BodyId) bodyPair {
	if x < y {
		return bodyPair{x, y}
	}
	return bodyPair{y, x}
}

func comparePairs(p, q bodyPair) int {
	if c := cmp.Compare(p.a, q.a); c != 0 {
		return c
	}
	return cmp.Compare(p.b, q.b)
}

// candidatePairs finds every pair of live bodies whose AABBs overlap, in
// ascending pair order. The grid and the pairwise scan must return the same
// set; which one runs is purely a performance choice.
func (sc *Scene) candidatePairs() []bodyPair {
	if sc.cfg.BroadPhaseCellSize > 0 {
		return sc.gridPairs()
	}
	return sc.scanPairs()
}

// scanPairs is the O(n²) pairwise AABB test. Fine at the scale this engine
// targets and the reference the grid is checked against.
func (sc *Scene) scanPairs() []bodyPair {
	var pairs []bodyPair
	for i := range sc.bodies {
		a := &sc.bodies[i]
		if !a.alive {
			continue
		}
		bba := a.bb()
		for j := i + 1; j < len(sc.bodies); j++ {
			b := &sc.bodies[j]
			if !b.alive {
				continue
			}
			if bba.Intersects(b.bb()) {
				pairs = append(pairs, bodyPair{BodyId(i), BodyId(j)})
			}
		}
	}
	return pairs
}

type gridCell struct {
	x, y int32
}

// gridPairs buckets bodies into a uniform grid of BroadPhaseCellSize cells and
// only tests bodies sharing a cell. Pairs spanning several cells are seen more
// than once, so results are deduplicated and sorted before returning.
func (sc *Scene) gridPairs() []bodyPair {
	size := sc.cfg.BroadPhaseCellSize
	cells := make(map[gridCell][]BodyId)

	for i := range sc.bodies {
		b := &sc.bodies[i]
		if !b.alive {
			continue
		}
		bb := b.bb()
		x0 := int32(math.Floor(bb.L / size))
		x1 := int32(math.Floor(bb.R / size))
		y0 := int32(math.Floor(bb.B / size))
		y1 := int32(math.Floor(bb.T / size))
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				cell := gridCell{x, y}
				cells[cell] = append(cells[cell], BodyId(i))
			}
		}
	}

	seen := make(map[bodyPair]struct{})
	var pairs []bodyPair
	for _, ids := range cells {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pair := makePair(ids[i], ids[j])
				if _, ok := seen[pair]; ok {
					continue
				}
				seen[pair] = struct{}{}
				if sc.bodies[pair.a].bb().Intersects(sc.bodies[pair.b].bb()) {
					pairs = append(pairs, pair)
				}
			}
		}
	}
	slices.SortFunc(pairs, comparePairs)
	return pairs
}
