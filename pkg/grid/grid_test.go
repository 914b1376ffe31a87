package grid

import (
	"math"
	"testing"

	"github.com/matzehuels/growtree/pkg/config"
)

func TestPositionsIsPure(t *testing.T) {
	g := NewGenerator(config.Default())
	a := g.Positions(1, 4)
	b := g.Positions(1, 4)
	if len(a) != len(b) {
		t.Fatalf("len differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("slot %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestPositionsGeometry(t *testing.T) {
	cfg := config.Default()
	g := NewGenerator(cfg)
	slots := g.Positions(0, 4)
	f := g.Frame(SectorFor(0, 4))

	prevRadius := -1.0
	prevCount := 0
	for tier := range cfg.MaxTiers {
		var inTier []Slot
		for _, s := range slots {
			if s.Tier == tier {
				inTier = append(inTier, s)
			}
		}
		if len(inTier) < MinSlotsPerTier {
			t.Fatalf("tier %d has %d slots", tier, len(inTier))
		}
		r := inTier[0].Radius
		if r <= prevRadius {
			t.Errorf("tier %d radius %v not above %v", tier, r, prevRadius)
		}
		if len(inTier) < prevCount {
			t.Errorf("tier %d has fewer slots (%d) than the tier inside it (%d)", tier, len(inTier), prevCount)
		}
		prevRadius, prevCount = r, len(inTier)

		for _, s := range inTier {
			if s.Angle < f.Lo()-1e-9 || s.Angle > f.Hi()+1e-9 {
				t.Errorf("slot %+v outside usable window [%v, %v]", s, f.Lo(), f.Hi())
			}
			if s.SlotsInTier != len(inTier) {
				t.Errorf("SlotsInTier = %d, want %d", s.SlotsInTier, len(inTier))
			}
		}
		mid := (inTier[0].Angle + inTier[len(inTier)-1].Angle) / 2
		if math.Abs(mid-f.Center()) > 1e-9 {
			t.Errorf("tier %d centered on %v, want %v", tier, mid, f.Center())
		}
	}
}

func TestSlotCount(t *testing.T) {
	tests := []struct {
		name                      string
		usable, radius, arcSpacer float64
		want                      int
	}{
		{"minimum", 10, 10, 40, 3},
		{"wide", 180, 100, 30, 10},
		{"zero spacing", 90, 100, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlotCount(tt.usable, tt.radius, tt.arcSpacer); got != tt.want {
				t.Errorf("SlotCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFrame(t *testing.T) {
	tests := []struct {
		name       string
		sector     Sector
		padding    float64
		wantPad    float64
		wantUsable float64
		wantCenter float64
	}{
		{"quarter", Sector{0, 90}, 4, 4, 82, 45},
		{"padding capped", Sector{0, 8}, 4, 2, 4, 4},
		{"wraps", Sector{300, 60}, 0, 0, 120, 360},
		{"negative padding", Sector{0, 90}, -3, 0, 90, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(tt.sector, tt.padding)
			if f.Padding != tt.wantPad || f.Usable != tt.wantUsable || f.Center() != tt.wantCenter {
				t.Errorf("frame = pad %v usable %v center %v, want %v %v %v",
					f.Padding, f.Usable, f.Center(), tt.wantPad, tt.wantUsable, tt.wantCenter)
			}
			if got := f.Norm(f.Denorm(0.5)); math.Abs(got-0.5) > 1e-12 {
				t.Errorf("Norm(Denorm(0.5)) = %v", got)
			}
		})
	}
}

func TestGridUsage(t *testing.T) {
	g := New(NewGenerator(config.Default()).Positions(0, 1))
	k := Key{Tier: 1, Index: 0}

	if !g.IsFree(k) {
		t.Fatal("fresh slot not free")
	}
	if !g.Use(k) {
		t.Fatal("Use() on free slot failed")
	}
	if g.Use(k) {
		t.Error("Use() succeeded twice")
	}
	if g.State(k) != Used {
		t.Errorf("State() = %v, want used", g.State(k))
	}

	r := Key{Tier: 0, Index: 1}
	g.Reserve(r)
	if g.IsFree(r) || g.State(r) != Reserved {
		t.Errorf("reserved slot state = %v", g.State(r))
	}
	if g.IsFree(Key{Tier: 99, Index: 0}) {
		t.Error("missing slot reported free")
	}

	for _, s := range g.FreeInRange(0, 1) {
		if s.Key() == k || s.Key() == r {
			t.Errorf("FreeInRange returned taken slot %+v", s)
		}
	}
	n := len(g.InTier(1))
	if got, want := g.Fill(1), 1/float64(n); math.Abs(got-want) > 1e-12 {
		t.Errorf("Fill(1) = %v, want %v", got, want)
	}
}

func TestNearest(t *testing.T) {
	g := New(NewGenerator(config.Default()).ForSector(Sector{0, 90}))
	s, ok := g.Nearest(0, 45)
	if !ok {
		t.Fatal("Nearest() found nothing")
	}
	tier := g.InTier(0)
	for _, o := range tier {
		if math.Abs(o.Angle-45) < math.Abs(s.Angle-45) {
			t.Errorf("slot %+v closer than %+v", o, s)
		}
	}
	if _, ok := g.Nearest(99, 0); ok {
		t.Error("Nearest() on missing tier returned a slot")
	}
}

func TestPolar(t *testing.T) {
	x, y := Polar(90, 10)
	if math.Abs(x) > 1e-9 || math.Abs(y-10) > 1e-9 {
		t.Errorf("Polar(90, 10) = (%v, %v)", x, y)
	}
}
