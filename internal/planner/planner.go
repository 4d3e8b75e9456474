// Package planner builds per-machine production timelines: it walks each
// machine's orders in sequence, stamps start/end dates from the business
// calendar and raises lateness alerts.
package planner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"prodplan/internal/calendar"
	"prodplan/internal/catalog"
	"prodplan/internal/model"
	"prodplan/pkg/dateutil"
)

// InvalidPositionError reports a move with indices outside the machine's
// order count. It is a structured failure result, not a crash.
type InvalidPositionError struct {
	From  int
	To    int
	Count int
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid position: from=%d to=%d with %d orders on machine", e.From, e.To, e.Count)
}

type Planner struct {
	cal    *calendar.Calendar
	source catalog.Source
	logger *zap.Logger
}

func New(cal *calendar.Calendar, source catalog.Source, logger *zap.Logger) *Planner {
	return &Planner{cal: cal, source: source, logger: logger}
}

// BuildPlan computes a full dated schedule for the given orders starting at
// start. Orders are grouped by machine and walked by position; orders on one
// machine never overlap and the day an order finishes is never reused by the
// next one. The input slice is not mutated.
func (p *Planner) BuildPlan(ctx context.Context, orders []model.Order, start time.Time) (*model.Plan, error) {
	cal := p.cal.Snapshot()
	cat := catalog.NewSnapshot(p.source)
	start = dateutil.Truncate(start)

	work := make([]model.Order, len(orders))
	copy(work, orders)
	for i := range work {
		model.ComputeTimes(&work[i])
	}

	// Group by machine, keeping first-appearance order so output is
	// deterministic. An unknown machine name is not an error, it just becomes
	// its own schedule group.
	machineNames := []string{}
	grouped := map[string][]model.Order{}
	for _, o := range work {
		if _, ok := grouped[o.Machine]; !ok {
			machineNames = append(machineNames, o.Machine)
		}
		grouped[o.Machine] = append(grouped[o.Machine], o)
	}

	machinePlans := make(map[string]model.MachinePlan, len(machineNames))
	allOrders := make([]model.Order, 0, len(work))

	for _, machine := range machineNames {
		machineOrders := grouped[machine]
		sort.SliceStable(machineOrders, func(i, j int) bool {
			return machineOrders[i].Position < machineOrders[j].Position
		})

		availability := cat.MachineAvailability(ctx, machine)

		cursor := start
		scheduled := make([]model.Order, 0, len(machineOrders))
		totalHours := 0.0

		for _, o := range machineOrders {
			if !cal.IsWorkday(cursor) {
				cursor = cal.NextWorkday(cursor)
			}

			endDate, details, err := cal.CalculateEndDate(cursor, o.TotalHours, availability)
			if err != nil {
				return nil, fmt.Errorf("machine %s: %w", machine, err)
			}

			o.StartDate = dateutil.Format(cursor)
			o.EndDate = dateutil.Format(endDate)
			o.WorkdaysUsed = details.WorkdaysUsed

			scheduled = append(scheduled, o)
			allOrders = append(allOrders, o)
			totalHours += o.TotalHours

			// The next order starts on the workday after this one ends.
			cursor = cal.NextWorkday(endDate)
		}

		machinePlans[machine] = model.MachinePlan{
			Machine:           machine,
			AvailabilityHours: availability,
			Orders:            scheduled,
			TotalOrders:       len(scheduled),
			TotalHours:        round2(totalHours),
		}
	}

	alerts, critical, warning := p.collectAlerts(allOrders)

	totalHours := 0.0
	for _, o := range allOrders {
		totalHours += o.TotalHours
	}

	plan := &model.Plan{
		StartDate:    dateutil.Format(start),
		MachinePlans: machinePlans,
		Summary: model.PlanSummary{
			TotalOrders:    len(allOrders),
			TotalMachines:  len(machinePlans),
			TotalHours:     round2(totalHours),
			TotalDays:      round1(totalHours / 8),
			CriticalOrders: critical,
			WarningOrders:  warning,
			OKOrders:       len(allOrders) - critical - warning,
		},
		Alerts:    alerts,
		AllOrders: allOrders,
	}

	p.logger.Info("plan computed",
		zap.Int("orders", plan.Summary.TotalOrders),
		zap.Int("machines", plan.Summary.TotalMachines),
		zap.Float64("total_hours", plan.Summary.TotalHours),
		zap.Int("critical", critical),
		zap.Int("warning", warning),
	)

	return plan, nil
}

// collectAlerts compares computed end dates against delivery dates. Orders
// with malformed delivery dates are tolerated: their lateness check is
// skipped, never the whole plan.
func (p *Planner) collectAlerts(orders []model.Order) (alerts []model.Alert, critical, warning int) {
	alerts = []model.Alert{}

	for _, o := range orders {
		endDate, err := dateutil.Parse(o.EndDate)
		if err != nil {
			continue
		}
		delivery, err := dateutil.Parse(o.DeliveryDate)
		if err != nil {
			p.logger.Debug("skipping lateness check for order with unparseable delivery date",
				zap.String("order_id", o.ID),
				zap.String("delivery_date", o.DeliveryDate),
			)
			continue
		}

		if endDate.After(delivery) {
			daysLate := dateutil.DaysBetween(delivery, endDate)
			critical++
			alerts = append(alerts, model.Alert{
				Severity:     model.SeverityCritical,
				OrderID:      o.ID,
				Client:       o.Client,
				Product:      o.Product,
				Message:      fmt.Sprintf("order will finish %d day(s) after the delivery date", daysLate),
				DeliveryDate: o.DeliveryDate,
				EndDate:      o.EndDate,
			})
		} else if dateutil.DaysBetween(endDate, delivery) <= 3 {
			warning++
			alerts = append(alerts, model.Alert{
				Severity:     model.SeverityWarning,
				OrderID:      o.ID,
				Client:       o.Client,
				Product:      o.Product,
				Message:      "safety margin too small (<= 3 days)",
				DeliveryDate: o.DeliveryDate,
				EndDate:      o.EndDate,
			})
		}
	}
	return alerts, critical, warning
}

// ReorderAndRecalculate reassigns positions on one machine to match orderIDs
// and rebuilds the whole plan. Orders of the machine not listed in orderIDs
// are dropped from its schedule; callers must pass a complete list. The
// recompute is always global per machine since one reorder can shift every
// later start date.
func (p *Planner) ReorderAndRecalculate(ctx context.Context, machine string, orderIDs []string, allOrders []model.Order, start time.Time) (*model.Plan, error) {
	var machineOrders, otherOrders []model.Order
	for _, o := range allOrders {
		if o.Machine == machine {
			machineOrders = append(machineOrders, o)
		} else {
			otherOrders = append(otherOrders, o)
		}
	}

	byID := make(map[string]model.Order, len(machineOrders))
	for _, o := range machineOrders {
		byID[o.ID] = o
	}

	reordered := make([]model.Order, 0, len(orderIDs))
	for idx, id := range orderIDs {
		if o, ok := byID[id]; ok {
			o.Position = idx
			reordered = append(reordered, o)
		}
	}

	combined := append(reordered, otherOrders...)
	return p.BuildPlan(ctx, combined, start)
}

// MoveOrder moves one order of a machine from fromPos to toPos and rebuilds
// the plan. Out-of-range positions return InvalidPositionError and leave the
// input untouched.
func (p *Planner) MoveOrder(ctx context.Context, orderID string, fromPos, toPos int, machine string, allOrders []model.Order, start time.Time) (*model.Plan, error) {
	var machineOrders []model.Order
	for _, o := range allOrders {
		if o.Machine == machine {
			machineOrders = append(machineOrders, o)
		}
	}
	sort.SliceStable(machineOrders, func(i, j int) bool {
		return machineOrders[i].Position < machineOrders[j].Position
	})

	n := len(machineOrders)
	if fromPos < 0 || fromPos >= n || toPos < 0 || toPos >= n {
		p.logger.Warn("move rejected, position out of range",
			zap.String("order_id", orderID),
			zap.Int("from", fromPos),
			zap.Int("to", toPos),
			zap.Int("machine_orders", n),
		)
		return nil, &InvalidPositionError{From: fromPos, To: toPos, Count: n}
	}

	moved := machineOrders[fromPos]
	machineOrders = append(machineOrders[:fromPos], machineOrders[fromPos+1:]...)
	machineOrders = append(machineOrders[:toPos], append([]model.Order{moved}, machineOrders[toPos:]...)...)

	orderIDs := make([]string, n)
	for i, o := range machineOrders {
		orderIDs[i] = o.ID
	}

	return p.ReorderAndRecalculate(ctx, machine, orderIDs, allOrders, start)
}

// MachineTimeline extracts one machine's dated sequence from a plan.
func MachineTimeline(plan *model.Plan, machine string) ([]model.TimelineEntry, error) {
	mp, ok := plan.MachinePlans[machine]
	if !ok {
		return nil, fmt.Errorf("machine %q not found in plan", machine)
	}

	timeline := make([]model.TimelineEntry, 0, len(mp.Orders))
	for _, o := range mp.Orders {
		timeline = append(timeline, model.TimelineEntry{
			ID:        o.ID,
			Client:    o.Client,
			Product:   o.Product,
			Quantity:  o.Quantity,
			StartDate: o.StartDate,
			EndDate:   o.EndDate,
			Workdays:  o.WorkdaysUsed,
			Hours:     o.TotalHours,
		})
	}
	return timeline, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
