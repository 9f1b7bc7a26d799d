// Package groove supplies named micro-timing templates that the scheduler
// can blend into step times, and the apply function that turns a template,
// a step index, and a blend amount into a timing/velocity adjustment.
package groove

import "fmt"

// Category groups templates for catalog browsing.
type Category string

const (
	CategorySwing   Category = "swing"
	CategoryLatin   Category = "latin"
	CategoryAfrican Category = "african"
	CategoryReggae  Category = "reggae"
	CategoryFunk    Category = "funk"
	CategoryOther   Category = "other"
)

// TempoRange restricts a template to a BPM window. Zero value means unrestricted.
type TempoRange struct {
	Min, Max int
}

// Template is a named timing preset: per-step offsets (as a fraction of one
// step, positive = late) and optional per-step velocity multipliers.
type Template struct {
	Name       string
	Label      string
	Category   Category
	Offsets    []float64
	Velocities []float64 // nil if the template doesn't touch velocity
	TempoRange TempoRange
}

// Result is the output of applying a template at a given blend amount.
type Result struct {
	TimingOffset float64 // fraction of one step; the caller multiplies by its step interval for seconds
	VelocityScale float64
}

// Apply computes the timing offset and velocity scale for stepIndex under
// template t at blend amount (0 = neutral, 1 = raw template values).
func Apply(t Template, stepIndex int, amount float64) Result {
	if len(t.Offsets) == 0 {
		return Result{TimingOffset: 0, VelocityScale: 1}
	}
	i := stepIndex % len(t.Offsets)
	if i < 0 {
		i += len(t.Offsets)
	}

	res := Result{
		TimingOffset:  t.Offsets[i] * amount,
		VelocityScale: 1,
	}
	if t.Velocities != nil {
		res.VelocityScale = 1 + (t.Velocities[i]-1)*amount
	}
	return res
}

// Get looks up a template by name.
func Get(name string) (Template, bool) {
	for _, t := range Catalog {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// MustGet is Get but panics on an unknown name; useful for wiring the
// built-in catalog at package init time where the name is a compile-time
// constant.
func MustGet(name string) Template {
	t, ok := Get(name)
	if !ok {
		panic(fmt.Sprintf("groove: unknown built-in template %q", name))
	}
	return t
}

// Names returns every catalog template name, in catalog order.
func Names() []string {
	names := make([]string, len(Catalog))
	for i, t := range Catalog {
		names[i] = t.Name
	}
	return names
}

// ByCategory returns every template in the given category, in catalog order.
func ByCategory(cat Category) []Template {
	var out []Template
	for _, t := range Catalog {
		if t.Category == cat {
			out = append(out, t)
		}
	}
	return out
}
