package reliability

import (
	"fmt"
	"strings"
)

// Material is a reference entry for common bridge materials. Strengths are in MPa.
type Material struct {
	Name        string  `json:"name"`
	MinStrength float64 `json:"min_strength_mpa"`
	MaxStrength float64 `json:"max_strength_mpa"`
	Basis       string  `json:"basis"`
}

// Midpoint is the centre of the strength range.
func (m Material) Midpoint() float64 {
	return (m.MinStrength + m.MaxStrength) / 2
}

// StrengthParameter treats the published range as ±2σ around its midpoint.
func (m Material) StrengthParameter() DistributionParameter {
	return DistributionParameter{
		Mean:   m.Midpoint(),
		StdDev: (m.MaxStrength - m.MinStrength) / 4,
	}
}

func (m Material) String() string {
	return fmt.Sprintf("%g-%g MPa (%s)", m.MinStrength, m.MaxStrength, m.Basis)
}

var materials = []Material{
	{Name: "Concrete", MinStrength: 20, MaxStrength: 50, Basis: "compressive strength"},
	{Name: "Steel", MinStrength: 300, MaxStrength: 500, Basis: "yield strength"},
	{Name: "Wood", MinStrength: 50, MaxStrength: 100, Basis: "modulus of rupture"},
	{Name: "Stone", MinStrength: 20, MaxStrength: 50, Basis: "compressive strength"},
	{Name: "Fiber-reinforced concrete", MinStrength: 50, MaxStrength: 100, Basis: "compressive strength"},
}

// Materials returns a copy of the reference table in display order.
func Materials() []Material {
	out := make([]Material, len(materials))
	copy(out, materials)
	return out
}

// LookupMaterial finds a material by case-insensitive name.
func LookupMaterial(name string) (Material, bool) {
	needle := strings.TrimSpace(name)
	for _, m := range materials {
		if strings.EqualFold(m.Name, needle) {
			return m, true
		}
	}
	return Material{}, false
}
