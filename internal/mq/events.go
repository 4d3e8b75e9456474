package mq

import "time"

// Routing keys published by this service.
const (
	RoutingKeyPlanComputed = "plan.computed"
	RoutingKeyPlanAlert    = "plan.alert"
)

type PlanComputedPayload struct {
	Operation      string    `json:"operation"` // build, reorder, move
	TotalOrders    int       `json:"total_orders"`
	TotalMachines  int       `json:"total_machines"`
	TotalHours     float64   `json:"total_hours"`
	CriticalOrders int       `json:"critical_orders"`
	ComputedAt     time.Time `json:"computed_at"`
}

type PlanAlertPayload struct {
	Severity     string `json:"severity"`
	OrderID      string `json:"order_id"`
	Client       string `json:"client"`
	Product      string `json:"product"`
	Message      string `json:"message"`
	DeliveryDate string `json:"delivery_date"`
	EndDate      string `json:"end_date"`
}
