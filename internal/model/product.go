package model

// Product is one catalog entry: the cycle times a machine needs to produce a
// given reference.
// The sheet carries two reference columns; orders may use either one.
type Product struct {
	Reference          string  `json:"reference"`
	MachineReference   string  `json:"machine_reference"`
	ProductionMinutes  float64 `json:"production_minutes"`
	AssemblyMinutes    float64 `json:"assembly_minutes"`
	Assembly2x2        bool    `json:"assembly_2x2"`
	Assembly2x2Minutes float64 `json:"assembly_2x2_minutes"`
	Color              string  `json:"color"`
}

// Matches reports whether ref names this product through either reference
// column. Matching is exact, never fuzzy.
func (p Product) Matches(ref string) bool {
	if ref == "" {
		return false
	}
	return ref == p.Reference || ref == p.MachineReference
}
