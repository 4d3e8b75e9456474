package model

// Order is one manufacturing order in a plan. Positions are unique within a
// machine and define the production sequence on it.
type Order struct {
	ID            string `json:"id"`
	Client        string `json:"client"`
	PurchaseOrder string `json:"purchase_order"`
	DeliveryDate  string `json:"delivery_date"` // DD/MM/YYYY
	Machine       string `json:"machine"`
	Heads         int    `json:"heads"` // parallel work-heads ("bocas") the quantity is split across
	Product       string `json:"product"`
	Quantity      int    `json:"quantity"`

	ProductionMinutes  float64 `json:"production_minutes"`
	AssemblyMinutes    float64 `json:"assembly_minutes"`
	Assembly2x2        bool    `json:"assembly_2x2"`
	Assembly2x2Minutes float64 `json:"assembly_2x2_minutes"`

	Position int `json:"position"`

	// Derived fields, recomputed whenever the inputs above change.
	TotalMinutes float64 `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	StartDate    string  `json:"start_date,omitempty"`
	EndDate      string  `json:"end_date,omitempty"`
	WorkdaysUsed int     `json:"workdays_used"`
}

// TotalProductMinutes is the per-order time formula shared by the timeline
// builder and the optimizer: per-unit minutes times quantity, divided across
// the work-heads.
func TotalProductMinutes(productionMin, assemblyMin float64, assembly2x2 bool, assembly2x2Min float64, quantity, heads int) float64 {
	base := productionMin + assemblyMin
	if assembly2x2 {
		base += assembly2x2Min
	}
	if heads < 1 {
		heads = 1
	}
	return base * float64(quantity) / float64(heads)
}

// ComputeTimes refreshes the order's derived totals from its cycle-time
// fields.
func ComputeTimes(o *Order) {
	o.TotalMinutes = TotalProductMinutes(
		o.ProductionMinutes,
		o.AssemblyMinutes,
		o.Assembly2x2,
		o.Assembly2x2Minutes,
		o.Quantity,
		o.Heads,
	)
	o.TotalHours = o.TotalMinutes / 60.0
}
