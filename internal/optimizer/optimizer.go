// Package optimizer assigns orders to machines with a single greedy pass:
// most urgent orders first, each on the machine whose projected load, in
// day-equivalents of its capacity, is lowest.
package optimizer

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
	"prodplan/internal/urgency"
	"prodplan/pkg/dateutil"
	"prodplan/pkg/metrics"
)

type Optimizer struct {
	cal    *calendar.Calendar
	source catalog.Source
	logger *zap.Logger
}

func New(cal *calendar.Calendar, source catalog.Source, logger *zap.Logger) *Optimizer {
	return &Optimizer{cal: cal, source: source, logger: logger}
}

// Suggest evaluates every order against every compatible machine and proposes
// the lowest-priority assignment. Accumulated hypothetical load carries across
// the whole pass: earlier (more urgent) orders commit load that later orders
// see, which is what makes this a bin-packing style heuristic rather than
// independent per-order scoring.
func (o *Optimizer) Suggest(ctx context.Context, orders []model.Order, start time.Time) (*model.OptimizationResult, error) {
	cal := o.cal.Snapshot()
	cat := catalog.NewSnapshot(o.source)
	start = dateutil.Truncate(start)

	metrics.OptimizerPasses.Inc()

	sorted := make([]model.Order, len(orders))
	copy(sorted, orders)
	// Stable sort: ties keep the original relative order.
	sort.SliceStable(sorted, func(i, j int) bool {
		return urgency.Score(sorted[i].DeliveryDate, start) > urgency.Score(sorted[j].DeliveryDate, start)
	})

	machines, err := cat.Machines(ctx)
	if err != nil {
		return nil, fmt.Errorf("optimizer: list machines: %w", err)
	}

	suggestions := make([]model.Suggestion, 0, len(sorted))
	machineLoads := map[string]float64{}

	for _, order := range sorted {
		options := o.evaluateOptions(ctx, cal, cat, machines, order, start, machineLoads)

		if len(options) == 0 {
			o.logger.Warn("no compatible machine for order",
				zap.String("order_id", order.ID),
				zap.String("product", order.Product),
			)
			suggestions = append(suggestions, model.Suggestion{
				OrderID:          order.ID,
				CurrentMachine:   order.Machine,
				SuggestedMachine: order.Machine,
				Reason:           "no compatible machine found",
				Status:           model.SuggestionError,
				Options:          []model.MachineOption{},
			})
			continue
		}

		// Infeasible options sort after all feasible ones; within each group,
		// lowest priority first.
		sort.SliceStable(options, func(i, j int) bool {
			if options[i].Feasible != options[j].Feasible {
				return options[i].Feasible
			}
			return options[i].Priority < options[j].Priority
		})

		best := options[0]
		machineLoads[best.Machine] += best.TotalHours

		status, reason := classify(order.Machine, best, options)

		for i := range options {
			options[i].IsCurrent = options[i].Machine == order.Machine
			options[i].IsSuggested = options[i].Machine == best.Machine
		}
		if len(options) > 5 {
			options = options[:5]
		}

		suggestions = append(suggestions, model.Suggestion{
			OrderID:          order.ID,
			CurrentMachine:   order.Machine,
			SuggestedMachine: best.Machine,
			Reason:           reason,
			Status:           status,
			Options:          options,
			Improvement:      improvement(order.Machine, best.Machine, options),
		})
	}

	stats := computeStats(suggestions)

	rounded := make(map[string]float64, len(machineLoads))
	for m, load := range machineLoads {
		rounded[m] = round2(load)
	}

	o.logger.Info("optimization pass finished",
		zap.Int("orders", stats.TotalOrders),
		zap.Int("critical_changes", stats.CriticalChanges),
		zap.Int("improvements", stats.Improvements),
	)

	return &model.OptimizationResult{
		Suggestions:  suggestions,
		Statistics:   stats,
		MachineLoads: rounded,
	}, nil
}

// evaluateOptions scores every machine whose catalog sheet carries the
// order's product. Compatibility is an exact reference match.
func (o *Optimizer) evaluateOptions(
	ctx context.Context,
	cal *calendar.Snapshot,
	cat *catalog.Snapshot,
	machines []string,
	order model.Order,
	start time.Time,
	machineLoads map[string]float64,
) []model.MachineOption {
	delivery, deliveryErr := dateutil.Parse(order.DeliveryDate)

	options := []model.MachineOption{}
	for _, machine := range machines {
		product, ok := cat.FindProduct(ctx, machine, order.Product)
		if !ok {
			continue
		}

		totalMinutes := model.TotalProductMinutes(
			product.ProductionMinutes,
			product.AssemblyMinutes,
			product.Assembly2x2,
			product.Assembly2x2Minutes,
			order.Quantity,
			order.Heads,
		)
		totalHours := totalMinutes / 60.0

		availability := cat.MachineAvailability(ctx, machine)
		currentLoad := machineLoads[machine]

		// Day-equivalents of this machine's capacity consumed, including the
		// order under evaluation. Lower is better.
		priority := currentLoad/availability + totalHours/availability

		feasible := false
		if deliveryErr == nil {
			daysAvailable := cal.CountWorkdaysBetween(start, delivery)
			feasible = float64(daysAvailable)*availability >= currentLoad+totalHours
		}

		options = append(options, model.MachineOption{
			Machine:           machine,
			TotalHours:        round2(totalHours),
			AvailabilityHours: availability,
			Feasible:          feasible,
			Priority:          round2(priority),
		})
	}
	return options
}

func classify(currentMachine string, best model.MachineOption, options []model.MachineOption) (status, reason string) {
	if best.Machine == currentMachine {
		return model.SuggestionKeep, "current machine is already the best option"
	}

	currentFeasible := false
	currentPriority := math.Inf(1)
	for _, opt := range options {
		if opt.Machine == currentMachine {
			currentPriority = opt.Priority
			if opt.Feasible {
				currentFeasible = true
			}
		}
	}

	if best.Feasible && !currentFeasible {
		return model.SuggestionCritical,
			fmt.Sprintf("switch to %s: current machine cannot meet the deadline", best.Machine)
	}

	if best.Priority < currentPriority {
		gain := int((currentPriority - best.Priority) * 100)
		return model.SuggestionImprove,
			fmt.Sprintf("switch to %s: reduces projected load by %d%%", best.Machine, gain)
	}

	return model.SuggestionKeep, "current machine is adequate"
}

func improvement(currentMachine, suggestedMachine string, options []model.MachineOption) model.Improvement {
	current := findOption(options, currentMachine)
	suggested := findOption(options, suggestedMachine)

	if current == nil || suggested == nil {
		return model.Improvement{}
	}

	saved := current.TotalHours - suggested.TotalHours
	pct := 0.0
	if current.TotalHours > 0 {
		pct = saved / current.TotalHours * 100
	}

	return model.Improvement{
		HasImprovement: saved > 0,
		TimeSavedHours: round2(saved),
		Percentage:     round1(pct),
	}
}

func findOption(options []model.MachineOption, machine string) *model.MachineOption {
	for i := range options {
		if options[i].Machine == machine {
			return &options[i]
		}
	}
	return nil
}

func computeStats(suggestions []model.Suggestion) model.OptimizationStats {
	stats := model.OptimizationStats{TotalOrders: len(suggestions)}
	for _, s := range suggestions {
		switch s.Status {
		case model.SuggestionCritical:
			stats.CriticalChanges++
		case model.SuggestionImprove:
			stats.Improvements++
		case model.SuggestionKeep:
			stats.KeepSame++
		}
	}
	stats.TotalChangesSuggested = stats.CriticalChanges + stats.Improvements
	total := stats.TotalOrders
	if total == 0 {
		total = 1
	}
	stats.EfficiencyGain = round1(float64(stats.TotalChangesSuggested) / float64(total) * 100)
	return stats
}

// ApplySuggestions rewrites each order's machine to the suggested one and
// refreshes its cached cycle-time fields from the new machine's catalog entry.
// Positions are left untouched; a timeline build is still needed for dates.
// Suggestions are matched to orders by ID since the suggestion list is sorted
// by urgency, not input order.
func (o *Optimizer) ApplySuggestions(ctx context.Context, orders []model.Order, suggestions []model.Suggestion) []model.Order {
	cat := catalog.NewSnapshot(o.source)

	byID := make(map[string]model.Suggestion, len(suggestions))
	for _, s := range suggestions {
		byID[s.OrderID] = s
	}

	out := make([]model.Order, len(orders))
	copy(out, orders)

	for i := range out {
		s, ok := byID[out[i].ID]
		if !ok || s.Status == model.SuggestionError || s.SuggestedMachine == "" {
			continue
		}

		out[i].Machine = s.SuggestedMachine

		if product, found := cat.FindProduct(ctx, s.SuggestedMachine, out[i].Product); found {
			out[i].ProductionMinutes = product.ProductionMinutes
			out[i].AssemblyMinutes = product.AssemblyMinutes
			out[i].Assembly2x2 = product.Assembly2x2
			out[i].Assembly2x2Minutes = product.Assembly2x2Minutes
		} else {
			o.logger.Warn("could not refresh cycle times after machine change",
				zap.String("order_id", out[i].ID),
				zap.String("machine", s.SuggestedMachine),
				zap.String("product", out[i].Product),
			)
		}

		model.ComputeTimes(&out[i])
	}

	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
