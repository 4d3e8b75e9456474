package model

const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"
)

type Alert struct {
	Severity     string `json:"severity"`
	OrderID      string `json:"order_id"`
	Client       string `json:"client"`
	Product      string `json:"product"`
	Message      string `json:"message"`
	DeliveryDate string `json:"delivery_date"`
	EndDate      string `json:"end_date"`
}

// MachinePlan is the dated, ordered schedule of a single machine.
type MachinePlan struct {
	Machine           string  `json:"machine"`
	AvailabilityHours float64 `json:"availability_hours"`
	Orders            []Order `json:"orders"`
	TotalOrders       int     `json:"total_orders"`
	TotalHours        float64 `json:"total_hours"`
}

type PlanSummary struct {
	TotalOrders    int     `json:"total_orders"`
	TotalMachines  int     `json:"total_machines"`
	TotalHours     float64 `json:"total_hours"`
	TotalDays      float64 `json:"total_days"`
	CriticalOrders int     `json:"critical_orders"`
	WarningOrders  int     `json:"warning_orders"`
	OKOrders       int     `json:"ok_orders"`
}

// Plan is the immutable snapshot produced by one timeline-builder run.
type Plan struct {
	StartDate    string                 `json:"start_date"`
	MachinePlans map[string]MachinePlan `json:"machine_plans"`
	Summary      PlanSummary            `json:"summary"`
	Alerts       []Alert                `json:"alerts"`
	AllOrders    []Order                `json:"all_orders"`
}

// TimelineEntry is one event in a single machine's timeline view.
type TimelineEntry struct {
	ID        string  `json:"id"`
	Client    string  `json:"client"`
	Product   string  `json:"product"`
	Quantity  int     `json:"quantity"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Workdays  int     `json:"workdays"`
	Hours     float64 `json:"hours"`
}

// PlanInfo is the listing metadata of a saved plan.
type PlanInfo struct {
	Name          string  `json:"name"`
	CreatedAt     string  `json:"created_at"`
	TotalOrders   int     `json:"total_orders"`
	TotalMachines int     `json:"total_machines"`
	TotalHours    float64 `json:"total_hours"`
}
