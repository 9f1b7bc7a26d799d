package groove

import "testing"

func TestApplyNeutralAtZeroAmount(t *testing.T) {
	for _, tpl := range Catalog {
		for step := 0; step < 4; step++ {
			res := Apply(tpl, step, 0)
			if res.TimingOffset != 0 {
				t.Errorf("%s step %d: timing offset at amount=0 = %v, want 0", tpl.Name, step, res.TimingOffset)
			}
			if res.VelocityScale != 1 {
				t.Errorf("%s step %d: velocity scale at amount=0 = %v, want 1", tpl.Name, step, res.VelocityScale)
			}
		}
	}
}

func TestApplyRawAtFullAmount(t *testing.T) {
	for _, tpl := range Catalog {
		for step := 0; step < len(tpl.Offsets)+2; step++ {
			res := Apply(tpl, step, 1)
			want := tpl.Offsets[step%len(tpl.Offsets)]
			if res.TimingOffset != want {
				t.Errorf("%s step %d: timing offset at amount=1 = %v, want %v", tpl.Name, step, res.TimingOffset, want)
			}
		}
	}
}

func TestMPCSwingMonotonic(t *testing.T) {
	names := []string{"mpc-swing-54", "mpc-swing-58", "mpc-swing-62", "mpc-swing-66", "mpc-swing-71"}
	var prev float64 = -1
	for _, name := range names {
		tpl, ok := Get(name)
		if !ok {
			t.Fatalf("missing built-in template %q", name)
		}
		off := Apply(tpl, 1, 1).TimingOffset
		if off <= prev {
			t.Errorf("%s offset %v not greater than previous %v", name, off, prev)
		}
		prev = off
	}
}

func TestCatalogHasThirteenTemplates(t *testing.T) {
	if len(Catalog) != 13 {
		t.Fatalf("Catalog has %d templates, want 13", len(Catalog))
	}
}

func TestGetUnknown(t *testing.T) {
	if _, ok := Get("does-not-exist"); ok {
		t.Fatal("Get(unknown) = ok, want not found")
	}
}

func TestByCategory(t *testing.T) {
	swing := ByCategory(CategorySwing)
	if len(swing) != 5 {
		t.Fatalf("len(ByCategory(swing)) = %d, want 5", len(swing))
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(Catalog) {
		t.Fatalf("len(Names()) = %d, want %d", len(names), len(Catalog))
	}
}

func TestOffsetsAndVelocitiesWithinRange(t *testing.T) {
	for _, tpl := range Catalog {
		for _, o := range tpl.Offsets {
			if o < -0.5 || o > 0.5 {
				t.Errorf("%s: offset %v out of [-0.5,0.5]", tpl.Name, o)
			}
		}
		for _, v := range tpl.Velocities {
			if v < 0 || v > 2 {
				t.Errorf("%s: velocity %v out of [0,2]", tpl.Name, v)
			}
		}
		if tpl.Velocities != nil && len(tpl.Velocities) != len(tpl.Offsets) {
			t.Errorf("%s: velocities length %d != offsets length %d", tpl.Name, len(tpl.Velocities), len(tpl.Offsets))
		}
	}
}
