package shape

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/growtree/pkg/rng"
)

func sweep(f func(d, a float64)) {
	for d := 0.0; d <= 1.0001; d += 0.05 {
		for a := -1.2; a <= 1.2001; a += 0.05 {
			f(min(d, 1), a)
		}
	}
}

func TestStrategiesWellFormed(t *testing.T) {
	for _, s := range All {
		t.Run(s.Name(), func(t *testing.T) {
			if s.Profile().Key != s.Name() {
				t.Errorf("profile key %q != name %q", s.Profile().Key, s.Name())
			}
			w := s.Weights()
			if w.TopK < 1 || w.TopK > 8 {
				t.Errorf("TopK = %d, want 1..8", w.TopK)
			}
			if w.SkipFactor < 0 || w.SkipFactor > 3 {
				t.Errorf("SkipFactor = %d, want 0..3", w.SkipFactor)
			}
			if w.SearchRange < 0 {
				t.Errorf("SearchRange = %d", w.SearchRange)
			}
			if st := s.Stretch(); st.Cap < 1 {
				t.Errorf("Stretch.Cap = %v, want >= 1", st.Cap)
			}
			if s.Profile().TierSpacingMult <= 0 {
				t.Errorf("TierSpacingMult = %v", s.Profile().TierSpacingMult)
			}
			sweep(func(d, a float64) {
				for name, v := range map[string]float64{
					"Conform":     s.Conform(d, a),
					"TargetAngle": s.TargetAngle(d, a),
				} {
					if math.IsNaN(v) || v < -1 || v > 1 {
						t.Fatalf("%s(%v, %v) = %v, want [-1, 1]", name, d, a, v)
					}
				}
				if e := s.Envelope(d); e <= 0 || e > 1 {
					t.Fatalf("Envelope(%v) = %v", d, e)
				}
				s.Mask(d, a, nil)
			})
		})
	}
}

func TestConformIsDeterministic(t *testing.T) {
	for _, s := range All {
		sweep(func(d, a float64) {
			if x, y := s.Conform(d, a), s.Conform(d, a); x != y {
				t.Fatalf("%s.Conform(%v, %v) not deterministic", s.Name(), d, a)
			}
		})
	}
}

func TestSpikyLocksToRays(t *testing.T) {
	s, _ := Find("spiky")
	sweep(func(d, a float64) {
		got := s.Conform(d, a)
		if !slices.Contains(spikyRays, got) {
			t.Fatalf("Conform(%v, %v) = %v, not a ray", d, a, got)
		}
	})
	if s.Stretch().Angular != 0 {
		t.Error("spiky must not stretch angularly")
	}
}

func TestSwordsNarrowWithDepth(t *testing.T) {
	s, _ := Find("swords")
	for _, a := range []float64{-0.9, -0.3, 0.1, 0.45, 0.8} {
		got := s.Conform(1, a)
		if !slices.Contains(swordBlades, got) {
			t.Errorf("Conform(1, %v) = %v, want a blade center", a, got)
		}
	}
	inner := math.Abs(s.Conform(0, 0.12) - 0)
	outer := math.Abs(s.Conform(0.8, 0.12) - 0)
	if outer >= inner {
		t.Errorf("blade did not narrow: inner %v outer %v", inner, outer)
	}
}

func TestMountainTapers(t *testing.T) {
	s, _ := Find("mountain")
	prev := math.Inf(1)
	for d := 0.0; d <= 1; d += 0.1 {
		e := s.Envelope(d)
		if e > prev {
			t.Errorf("Envelope(%v) = %v grew from %v", d, e, prev)
		}
		prev = e
		if got := math.Abs(s.Conform(d, 1)); math.Abs(got-e) > 1e-12 {
			t.Errorf("Conform(%v, 1) = %v, want envelope %v", d, got, e)
		}
	}
	if !s.Stretch().Taper {
		t.Error("mountain should reapply its taper")
	}
}

func TestExplosionVoid(t *testing.T) {
	s, _ := Find("blast")
	for _, d := range []float64{0, 0.25, 0.5} {
		void := 0.35 * (1 - d)
		for _, a := range []float64{-0.1, 0, 0.05, 0.2} {
			if got := math.Abs(s.Conform(d, a)); got < void-1e-12 {
				t.Errorf("Conform(%v, %v) = %v inside void %v", d, a, got, void)
			}
		}
	}
	if s.Mask(0, 0, nil) {
		t.Error("center of an inner tier should fail the mask")
	}
}

func TestTreeBands(t *testing.T) {
	s, _ := Find("tree")
	tests := []struct {
		depth float64
		want  float64
	}{
		{0, 0.12},
		{0.2, 0.12},
		{0.55, 0.6},
		{0.85, 1},
		{1, 0.7},
	}
	for _, tt := range tests {
		if got := s.Envelope(tt.depth); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Envelope(%v) = %v, want %v", tt.depth, got, tt.want)
		}
	}
}

func TestGridColumns(t *testing.T) {
	s, _ := Find("column")
	want := []float64{-0.75, -0.25, 0.25, 0.75}
	sweep(func(d, a float64) {
		if got := s.Conform(d, a); !slices.Contains(want, got) {
			t.Fatalf("Conform(%v, %v) = %v, not a column", d, a, got)
		}
	})
}

func TestPortalDoorway(t *testing.T) {
	s, _ := Find("portal")
	for _, a := range []float64{-0.2, 0, 0.3} {
		if got := math.Abs(s.Conform(0.3, a)); got < portalHalf {
			t.Errorf("Conform(0.3, %v) = %v inside doorway", a, got)
		}
	}
	if got := s.Conform(0.9, 0.1); got != 0.1 {
		t.Errorf("outer tiers should pass through, got %v", got)
	}
}

func TestRadialSpokes(t *testing.T) {
	if len(radialSpokeAngles) != radialSpokes {
		t.Fatalf("got %d spokes, want %d", len(radialSpokeAngles), radialSpokes)
	}
	step := 2.0 / float64(radialSpokes-1)
	for i := 1; i < len(radialSpokeAngles); i++ {
		if gap := radialSpokeAngles[i] - radialSpokeAngles[i-1]; math.Abs(gap-step) > 1e-9 {
			t.Errorf("gap %d = %v, want %v", i, gap, step)
		}
	}

	s, ok := Find("radial")
	if !ok {
		t.Fatal("radial not registered")
	}
	sweep(func(d, a float64) {
		got := s.Conform(d, a)
		if off := math.Abs(got - nearest(got, radialSpokeAngles)); off > radialWander*d+1e-9 {
			t.Fatalf("Conform(%v, %v) = %v, %v off its spoke", d, a, got, off)
		}
		if !s.Mask(d, got, nil) {
			t.Fatalf("Mask rejects conformed angle %v at depth %v", got, d)
		}
		if tgt := s.TargetAngle(d, a); !slices.Contains(radialSpokeAngles, tgt) {
			t.Fatalf("TargetAngle(%v, %v) = %v, not a spoke", d, a, tgt)
		}
	})

	tests := []struct {
		d, a, want float64
	}{
		{0, 0.3, 0.5},
		{0, -0.9, -1},
		{1, 0.45, 0.45},
		{1, 0.2, 0.1},
	}
	for _, tt := range tests {
		if got := s.Conform(tt.d, tt.a); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Conform(%v, %v) = %v, want %v", tt.d, tt.a, got, tt.want)
		}
	}
}

func TestCloudMaskDrawsOnlyOffLobe(t *testing.T) {
	s, _ := Find("cloud")
	r := rng.NewStream(5)
	s.Mask(0.5, 0, r)
	if r.Draws() != 0 {
		t.Errorf("on-lobe mask drew %d values", r.Draws())
	}
	s.Mask(0.5, 0.95, r)
	if r.Draws() != 1 {
		t.Errorf("off-lobe mask drew %d values, want 1", r.Draws())
	}
}

func TestRegistry(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"", "organic", true},
		{"spiky", "spiky", true},
		{"Ray-Lock", "spiky", true},
		{" explosion ", "explosion", true},
		{"radial", "radial", true},
		{"Star", "radial", true},
		{"dodecahedron", "organic", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Default.Resolve(tt.name)
			if s.Name() != tt.want || ok != tt.wantOK {
				t.Errorf("Resolve(%q) = %s, %v; want %s, %v", tt.name, s.Name(), ok, tt.want, tt.wantOK)
			}
		})
	}
	if got := Default.Profile("nope").Key; got != "organic" {
		t.Errorf("Profile(unknown).Key = %q", got)
	}
	if n := len(Default.Names()); n != len(All) {
		t.Errorf("Names() has %d entries, want %d", n, len(All))
	}
	for alias, canon := range Aliases {
		if _, ok := Default.Lookup(canon); !ok {
			t.Errorf("alias %q points at unknown shape %q", alias, canon)
		}
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry(All...)
	r.Register(newLinear())
	if len(r.Names()) != len(All) {
		t.Errorf("re-registering grew the registry to %d", len(r.Names()))
	}
}

func TestDescribe(t *testing.T) {
	infos := Default.Describe()
	if len(infos) != len(Default.Names()) {
		t.Fatalf("Describe() returned %d shapes, want %d", len(infos), len(Default.Names()))
	}
	for _, info := range infos {
		if info.Name != "spiky" {
			continue
		}
		if !slices.Equal(info.Aliases, []string{"ray-lock", "rays"}) {
			t.Errorf("spiky aliases = %v", info.Aliases)
		}
		if info.Stretch.Angular != 0 {
			t.Errorf("spiky angular stretch = %v, want 0", info.Stretch.Angular)
		}
		return
	}
	t.Error("spiky missing from Describe()")
}

func TestDepth(t *testing.T) {
	tests := []struct {
		tier, outer int
		want        float64
	}{
		{0, 4, 0},
		{2, 4, 0.5},
		{4, 4, 1},
		{6, 4, 1},
		{1, 0, 1},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := Depth(tt.tier, tt.outer); got != tt.want {
			t.Errorf("Depth(%d, %d) = %v, want %v", tt.tier, tt.outer, got, tt.want)
		}
	}
}
