package model

// Suggestion statuses. "keep" means the current machine already wins, "improve"
// means a strictly better machine exists, "critical" means the current machine
// cannot meet the deadline but another one can, "error" means no compatible
// machine was found at all.
const (
	SuggestionKeep     = "keep"
	SuggestionImprove  = "improve"
	SuggestionCritical = "critical"
	SuggestionError    = "error"
)

// MachineOption is one evaluated candidate machine for an order.
// Priority is the projected load in day-equivalents; lower is better.
type MachineOption struct {
	Machine           string  `json:"machine"`
	TotalHours        float64 `json:"total_hours"`
	AvailabilityHours float64 `json:"availability_hours"`
	Feasible          bool    `json:"feasible"`
	Priority          float64 `json:"priority"`
	IsCurrent         bool    `json:"is_current"`
	IsSuggested       bool    `json:"is_suggested"`
}

type Improvement struct {
	HasImprovement bool    `json:"has_improvement"`
	TimeSavedHours float64 `json:"time_saved_hours"`
	Percentage     float64 `json:"percentage"`
}

type Suggestion struct {
	OrderID          string          `json:"order_id"`
	CurrentMachine   string          `json:"current_machine"`
	SuggestedMachine string          `json:"suggested_machine"`
	Reason           string          `json:"reason"`
	Status           string          `json:"status"`
	Options          []MachineOption `json:"options"`
	Improvement      Improvement     `json:"improvement"`
}

type OptimizationStats struct {
	TotalOrders           int     `json:"total_orders"`
	CriticalChanges       int     `json:"critical_changes"`
	Improvements          int     `json:"improvements"`
	KeepSame              int     `json:"keep_same"`
	TotalChangesSuggested int     `json:"total_changes_suggested"`
	EfficiencyGain        float64 `json:"efficiency_gain"`
}

type OptimizationResult struct {
	Suggestions  []Suggestion       `json:"suggestions"`
	Statistics   OptimizationStats  `json:"statistics"`
	MachineLoads map[string]float64 `json:"machine_loads"`
}
