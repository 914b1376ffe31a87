package refine

import (
	"math"

	"github.com/matzehuels/growtree/pkg/growth"
)

// Endpoint margins: only the interior of an edge, between these fractions of
// its length, can trap a sitter.
const (
	edgeMarginLo = 0.1
	edgeMarginHi = 0.9
)

// NudgeSitters displaces every movable node lying within SitterDistance of
// an edge it is not part of by NudgeDistance, perpendicular to that edge. It
// is a single pass: each node moves at most once. The push points away from
// the nearest node nudged earlier, or away from the origin for the first one.
// It returns the number of nudged nodes.
func NudgeSitters(in Input) int {
	in = in.withDefaults()
	pos := in.Positions
	edges := in.Graph.Edges()
	threshold := in.Config.SitterDistance
	push := in.Config.NudgeDistance
	if threshold <= 0 || push <= 0 || len(edges) == 0 {
		return 0
	}

	var nudged []string
	for _, id := range pos.IDs() {
		p := pos[id]
		if !movable(p) {
			continue
		}
		for _, e := range edges {
			if e.From == id || e.To == id {
				continue
			}
			a, okA := pos[e.From]
			b, okB := pos[e.To]
			if !okA || !okB {
				continue
			}
			nx, ny, ok := sitting(p.X, p.Y, a.X, a.Y, b.X, b.Y, threshold)
			if !ok {
				continue
			}

			rx, ry := nearestRef(pos, nudged, p.X, p.Y)
			if (p.X-rx)*nx+(p.Y-ry)*ny < 0 {
				nx, ny = -nx, -ny
			}
			x, y := p.X+nx*push, p.Y+ny*push
			angle := unwrap(math.Atan2(y, x)*180/math.Pi, p.Angle)
			p.SetPolar(angle, math.Hypot(x, y), p.Angle, p.Radius)
			pos[id] = p
			nudged = append(nudged, id)
			break
		}
	}
	if len(nudged) > 0 {
		in.Logger.Debug("sitters nudged", "count", len(nudged))
	}
	return len(nudged)
}

// sitting reports whether (px, py) lies within threshold of the interior of
// segment a→b and returns the segment's unit normal.
func sitting(px, py, ax, ay, bx, by, threshold float64) (nx, ny float64, ok bool) {
	dx, dy := bx-ax, by-ay
	l2 := dx*dx + dy*dy
	if l2 < 1e-12 || !finite(l2) {
		return 0, 0, false
	}
	t := ((px-ax)*dx + (py-ay)*dy) / l2
	if t < edgeMarginLo || t > edgeMarginHi {
		return 0, 0, false
	}
	cx, cy := ax+t*dx, ay+t*dy
	if math.Hypot(px-cx, py-cy) >= threshold {
		return 0, 0, false
	}
	l := math.Sqrt(l2)
	return -dy / l, dx / l, true
}

// nearestRef returns the position of the nudged node closest to (x, y), or
// the origin when nothing has been nudged yet.
func nearestRef(pos growth.Positions, nudged []string, x, y float64) (float64, float64) {
	rx, ry := 0.0, 0.0
	best := math.Inf(1)
	for _, id := range nudged {
		q := pos[id]
		if d := math.Hypot(q.X-x, q.Y-y); d < best {
			best, rx, ry = d, q.X, q.Y
		}
	}
	return rx, ry
}

// unwrap returns the representation of angle closest to ref, so angles stay
// continuous across the 0°/360° seam.
func unwrap(angle, ref float64) float64 {
	return angle + 360*math.Round((ref-angle)/360)
}
