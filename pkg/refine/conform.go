package refine

import "github.com/matzehuels/growtree/pkg/shape"

// Conform remaps the angle of every movable node to the shape silhouette.
// Depth is [shape.Depth] against the graph's deepest tier; the angle is
// normalized to the usable sector. Radius is untouched.
func Conform(in Input) {
	in = in.withDefaults()
	pos := in.Positions
	f := in.Frame
	outer := outerTier(in)
	for _, id := range pos.IDs() {
		p := pos[id]
		if !movable(p) {
			continue
		}
		d := shape.Depth(p.Tier, outer)
		angle := f.Denorm(in.Shape.Conform(d, f.Norm(p.Angle)))
		p.SetPolar(angle, p.Radius, f.Center(), in.Config.BaseRadius)
		pos[id] = p
	}
}
