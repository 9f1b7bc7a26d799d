package groove

// mpcSwingOffsets builds the classic 2-step MPC swing cycle: the downbeat of
// the pair sits on the grid, the upbeat is pushed late by (pct-50)/100 of a
// step. Monotonic in pct, per spec.md §8 invariant 5.
func mpcSwingOffsets(pct float64) []float64 {
	return []float64{0, (pct - 50) / 100}
}

// Catalog is the static, non-user-configurable set of built-in templates.
var Catalog = []Template{
	{
		Name: "mpc-swing-54", Label: "MPC Swing 54%", Category: CategorySwing,
		Offsets: mpcSwingOffsets(54),
	},
	{
		Name: "mpc-swing-58", Label: "MPC Swing 58%", Category: CategorySwing,
		Offsets: mpcSwingOffsets(58),
	},
	{
		Name: "mpc-swing-62", Label: "MPC Swing 62%", Category: CategorySwing,
		Offsets: mpcSwingOffsets(62),
	},
	{
		Name: "mpc-swing-66", Label: "MPC Swing 66%", Category: CategorySwing,
		Offsets: mpcSwingOffsets(66),
	},
	{
		Name: "mpc-swing-71", Label: "MPC Swing 71%", Category: CategorySwing,
		Offsets: mpcSwingOffsets(71),
	},
	{
		// Laid-back bossa feel: the "and" of 2 and the "and" of 4 drag slightly,
		// syncopated steps get a touch more weight.
		Name: "bossa-nova", Label: "Bossa Nova", Category: CategoryLatin,
		Offsets: []float64{
			0, 0, 0.03, 0, 0, 0, 0.02, 0,
			0, 0, 0.03, 0, 0, 0, 0.02, 0,
		},
		Velocities: []float64{
			1.1, 0.8, 0.9, 0.8, 1.0, 0.8, 1.05, 0.8,
			1.1, 0.8, 0.9, 0.8, 1.0, 0.8, 1.05, 0.8,
		},
	},
	{
		// Son clave 3-2 accent positions (16th-note steps, 0-indexed): 0, 3, 6, 10, 12.
		Name: "son-clave-3-2", Label: "Son Clave (3-2)", Category: CategoryLatin,
		Offsets: []float64{
			0, 0, 0, 0.015, 0, 0, 0.015, 0,
			0, 0, 0.02, 0, 0.015, 0, 0, 0,
		},
		Velocities: []float64{
			1.3, 0.7, 0.7, 1.1, 0.7, 0.7, 1.1, 0.7,
			0.7, 0.7, 1.2, 0.7, 1.2, 0.7, 0.7, 0.7,
		},
	},
	{
		// Rumba clave 3-2: the third hit of the 3-side falls a 16th later than son clave.
		Name: "rumba-clave-3-2", Label: "Rumba Clave (3-2)", Category: CategoryLatin,
		Offsets: []float64{
			0, 0, 0, 0.015, 0, 0, 0, 0.02,
			0, 0, 0.02, 0, 0.015, 0, 0, 0,
		},
		Velocities: []float64{
			1.3, 0.7, 0.7, 1.1, 0.7, 0.7, 0.7, 1.1,
			0.7, 0.7, 1.2, 0.7, 1.2, 0.7, 0.7, 0.7,
		},
	},
	{
		// 12/8 feel: a 12-step triplet cycle, every third step laid back.
		Name: "afrobeat-12-8", Label: "Afrobeat 12/8", Category: CategoryAfrican,
		Offsets: []float64{
			0, 0.01, 0.04, 0, 0.01, 0.04, 0, 0.01, 0.04, 0, 0.01, 0.04,
		},
		Velocities: []float64{
			1.2, 0.8, 0.9, 1.1, 0.8, 0.9, 1.15, 0.8, 0.9, 1.1, 0.8, 0.9,
		},
	},
	{
		// One-drop: beat 1 laid empty in the drum pattern itself (a pattern
		// concern, not this template's job); the groove pulls beat 3 (step 8
		// of 16) a touch late and softens the backbeat elsewhere.
		Name: "reggae-one-drop", Label: "Reggae One Drop", Category: CategoryReggae,
		Offsets: []float64{
			0, 0, 0, 0, 0, 0, 0, 0.03,
			0, 0, 0, 0, 0, 0, 0, 0.015,
		},
		Velocities: []float64{
			0.8, 0.8, 0.8, 0.8, 0.8, 0.8, 0.8, 1.3,
			0.8, 0.8, 0.8, 0.8, 0.8, 0.8, 0.8, 1.0,
		},
	},
	{
		// New Orleans second-line: syncopated push on the "e" and "a" 16ths.
		Name: "second-line", Label: "Second Line", Category: CategoryFunk,
		Offsets: []float64{
			0, 0.02, -0.01, 0.03, 0, 0.02, -0.01, 0.03,
			0, 0.02, -0.01, 0.03, 0, 0.02, -0.01, 0.03,
		},
		Velocities: []float64{
			1.2, 0.7, 0.9, 1.0, 1.1, 0.7, 0.9, 1.0,
			1.2, 0.7, 0.9, 1.0, 1.1, 0.7, 0.9, 1.0,
		},
	},
	{
		// Go-go: hard, forward-pushed off-beats driving the cowbell pattern.
		Name: "go-go-swing", Label: "Go-Go Swing", Category: CategoryFunk,
		Offsets: []float64{
			0, -0.02, 0, 0.04, 0, -0.02, 0, 0.04,
			0, -0.02, 0, 0.04, 0, -0.02, 0, 0.04,
		},
		Velocities: []float64{
			1.1, 0.9, 0.9, 1.2, 1.1, 0.9, 0.9, 1.2,
			1.1, 0.9, 0.9, 1.2, 1.1, 0.9, 0.9, 1.2,
		},
	},
	{
		// Dilla feel: drunk, heavily behind-the-beat swing on every upbeat.
		Name: "dilla-feel", Label: "Dilla Feel", Category: CategoryFunk,
		Offsets: []float64{
			0, 0.08, 0.02, 0.1, 0, 0.08, 0.02, 0.1,
			0, 0.08, 0.02, 0.1, 0, 0.08, 0.02, 0.1,
		},
		Velocities: []float64{
			1.0, 0.75, 0.85, 0.9, 1.0, 0.75, 0.85, 0.9,
			1.0, 0.75, 0.85, 0.9, 1.0, 0.75, 0.85, 0.9,
		},
	},
}
