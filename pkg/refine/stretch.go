package refine

import (
	"math"

	"github.com/matzehuels/growtree/pkg/shape"
)

// Stretch scales the movable nodes around the root anchor (the sector center
// at the base radius) so the tree moves toward the shape's target extent. The
// factor is min(targetAngular/currentAngular, targetRadial/currentRadial),
// clamped to [1, cap]; shapes with no angular target scale radially only.
// Radii never exceed BaseRadius + MaxTiers·TierSpacing. Tapering shapes have
// their envelope reapplied after scaling. It returns the factor used.
func Stretch(in Input) float64 {
	in = in.withDefaults()
	pos := in.Positions
	f := in.Frame
	cfg := in.Config
	st := in.Shape.Stretch()

	center, base := f.Center(), cfg.BaseRadius
	maxR := cfg.MaxRadius()
	hw := f.HalfWidth()

	curA, curR := 0.0, 0.0
	n := 0
	for _, p := range pos {
		if !movable(p) {
			continue
		}
		n++
		if hw > 0 {
			curA = max(curA, math.Abs(p.Angle-center)/hw)
		}
		if maxR > base {
			curR = max(curR, (p.Radius-base)/(maxR-base))
		}
	}
	if n == 0 {
		return 1
	}

	s := math.Inf(1)
	if st.Angular > 0 && curA > 1e-9 {
		s = min(s, st.Angular/curA)
	}
	if st.Radial > 0 && curR > 1e-9 {
		s = min(s, st.Radial/curR)
	}
	if math.IsInf(s, 1) || !finite(s) {
		s = 1
	}
	s = max(1, min(s, max(1, st.Cap)))

	outer := outerTier(in)
	for _, id := range pos.IDs() {
		p := pos[id]
		if !movable(p) {
			continue
		}
		angle := p.Angle
		if st.Angular > 0 {
			angle = f.Clamp(center + (angle-center)*s)
		}
		if st.Taper {
			env := in.Shape.Envelope(shape.Depth(p.Tier, outer))
			norm := max(-env, min(f.Norm(angle), env))
			angle = f.Denorm(norm)
		}
		radius := base + (p.Radius-base)*s
		if !finite(radius) {
			radius = base
		}
		radius = max(0, min(radius, maxR))
		p.SetPolar(angle, radius, center, base)
		pos[id] = p
	}
	in.Logger.Debug("density stretch", "factor", s, "angular", curA, "radial", curR)
	return s
}
