package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prodplan/internal/calendar"
	"prodplan/internal/model"
)

type stubSource struct {
	machines     []string
	availability map[string]float64
	products     map[string][]model.Product
}

func (s *stubSource) Machines(ctx context.Context) ([]string, error) {
	return s.machines, nil
}

func (s *stubSource) MachineAvailability(ctx context.Context, machine string) float64 {
	if v, ok := s.availability[machine]; ok {
		return v
	}
	return 8.0
}

func (s *stubSource) ProductsForMachine(ctx context.Context, machine string) ([]model.Product, error) {
	return s.products[machine], nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 2026-01-05 is a Monday.
var monday = day(2026, time.January, 5)

// Product P runs twice as fast on M2 as on M1. Product Q is pathological on
// M1 and trivial on M2.
func defaultSource() *stubSource {
	return &stubSource{
		machines:     []string{"M1", "M2"},
		availability: map[string]float64{"M1": 8, "M2": 8},
		products: map[string][]model.Product{
			"M1": {
				{Reference: "P", ProductionMinutes: 60, AssemblyMinutes: 60},
				{Reference: "Q", ProductionMinutes: 60},
			},
			"M2": {
				{Reference: "P", ProductionMinutes: 30, AssemblyMinutes: 30},
				{Reference: "Q", ProductionMinutes: 6},
			},
		},
	}
}

func newTestOptimizer(src *stubSource) *Optimizer {
	return New(calendar.New(nil, zap.NewNop()), src, zap.NewNop())
}

func TestSuggestPrefersFasterMachine(t *testing.T) {
	opt := newTestOptimizer(defaultSource())

	orders := []model.Order{{
		ID: "A", Machine: "M1", Product: "P", Quantity: 8, Heads: 1,
		DeliveryDate: "30/01/2026",
	}}

	res, err := opt.Suggest(context.Background(), orders, monday)
	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1)

	s := res.Suggestions[0]
	assert.Equal(t, "M2", s.SuggestedMachine)
	assert.Equal(t, model.SuggestionImprove, s.Status)
	assert.Equal(t, "switch to M2: reduces projected load by 100%", s.Reason)

	assert.True(t, s.Improvement.HasImprovement)
	assert.InDelta(t, 8.0, s.Improvement.TimeSavedHours, 0.001)
	assert.InDelta(t, 50.0, s.Improvement.Percentage, 0.001)

	require.Len(t, s.Options, 2)
	// Sorted best-first: M2 leads.
	assert.Equal(t, "M2", s.Options[0].Machine)
	assert.True(t, s.Options[0].IsSuggested)
	assert.False(t, s.Options[0].IsCurrent)
	assert.Equal(t, "M1", s.Options[1].Machine)
	assert.True(t, s.Options[1].IsCurrent)
	assert.InDelta(t, 16.0, s.Options[1].TotalHours, 0.001)
}

func TestSuggestKeepsCurrentBestMachine(t *testing.T) {
	opt := newTestOptimizer(defaultSource())

	orders := []model.Order{{
		ID: "A", Machine: "M2", Product: "P", Quantity: 8, Heads: 1,
		DeliveryDate: "30/01/2026",
	}}

	res, err := opt.Suggest(context.Background(), orders, monday)
	require.NoError(t, err)

	s := res.Suggestions[0]
	assert.Equal(t, model.SuggestionKeep, s.Status)
	assert.Equal(t, "M2", s.SuggestedMachine)
	assert.Equal(t, "current machine is already the best option", s.Reason)
}

func TestSuggestCriticalWhenCurrentMachineMissesDeadline(t *testing.T) {
	opt := newTestOptimizer(defaultSource())

	// 50h of Q on M1 against one 40h week: infeasible there, trivial on M2.
	orders := []model.Order{{
		ID: "A", Machine: "M1", Product: "Q", Quantity: 50, Heads: 1,
		DeliveryDate: "09/01/2026",
	}}

	res, err := opt.Suggest(context.Background(), orders, monday)
	require.NoError(t, err)

	s := res.Suggestions[0]
	assert.Equal(t, model.SuggestionCritical, s.Status)
	assert.Equal(t, "M2", s.SuggestedMachine)
	assert.Equal(t, "switch to M2: current machine cannot meet the deadline", s.Reason)
}

func TestSuggestNoCompatibleMachine(t *testing.T) {
	opt := newTestOptimizer(defaultSource())

	orders := []model.Order{{
		ID: "A", Machine: "M1", Product: "UNKNOWN", Quantity: 1, Heads: 1,
		DeliveryDate: "30/01/2026",
	}}

	res, err := opt.Suggest(context.Background(), orders, monday)
	require.NoError(t, err)

	s := res.Suggestions[0]
	assert.Equal(t, model.SuggestionError, s.Status)
	assert.Equal(t, "M1", s.SuggestedMachine)
	assert.Empty(t, s.Options)
}

func TestSuggestUnparseableDeliveryIsNeverFeasible(t *testing.T) {
	opt := newTestOptimizer(defaultSource())

	orders := []model.Order{{
		ID: "A", Machine: "M1", Product: "P", Quantity: 8, Heads: 1,
		DeliveryDate: "soon",
	}}

	res, err := opt.Suggest(context.Background(), orders, monday)
	require.NoError(t, err)

	for _, opt := range res.Suggestions[0].Options {
		assert.False(t, opt.Feasible)
	}
}

func TestSuggestCommitsLoadAcrossThePass(t *testing.T) {
	opt := newTestOptimizer(defaultSource())

	orders := []model.Order{
		{ID: "A", Machine: "M2", Product: "P", Quantity: 8, Heads: 1, DeliveryDate: "30/01/2026"},
		{ID: "B", Machine: "M2", Product: "P", Quantity: 8, Heads: 1, DeliveryDate: "30/01/2026"},
	}

	res, err := opt.Suggest(context.Background(), orders, monday)
	require.NoError(t, err)

	// A takes M2 and commits 8h there. For B both machines then cost the same,
	// so nothing beats staying put, but the load is spread.
	assert.Equal(t, "M2", res.Suggestions[0].SuggestedMachine)
	assert.Equal(t, "M1", res.Suggestions[1].SuggestedMachine)

	assert.InDelta(t, 8.0, res.MachineLoads["M2"], 0.001)
	assert.InDelta(t, 16.0, res.MachineLoads["M1"], 0.001)
}

func TestSuggestOrdersByUrgency(t *testing.T) {
	opt := newTestOptimizer(defaultSource())

	orders := []model.Order{
		{ID: "RELAXED", Machine: "M2", Product: "P", Quantity: 8, Heads: 1, DeliveryDate: "30/01/2026"},
		{ID: "URGENT", Machine: "M2", Product: "P", Quantity: 8, Heads: 1, DeliveryDate: "06/01/2026"},
	}

	res, err := opt.Suggest(context.Background(), orders, monday)
	require.NoError(t, err)

	// The urgent order is evaluated, and therefore placed, first.
	assert.Equal(t, "URGENT", res.Suggestions[0].OrderID)
	assert.Equal(t, "M2", res.Suggestions[0].SuggestedMachine)
	assert.Equal(t, "RELAXED", res.Suggestions[1].OrderID)
}

func TestSuggestStatistics(t *testing.T) {
	opt := newTestOptimizer(defaultSource())

	orders := []model.Order{
		{ID: "A", Machine: "M1", Product: "P", Quantity: 8, Heads: 1, DeliveryDate: "30/01/2026"},
		{ID: "B", Machine: "M2", Product: "P", Quantity: 8, Heads: 1, DeliveryDate: "30/01/2026"},
		{ID: "C", Machine: "M1", Product: "UNKNOWN", Quantity: 1, Heads: 1, DeliveryDate: "30/01/2026"},
	}

	res, err := opt.Suggest(context.Background(), orders, monday)
	require.NoError(t, err)

	stats := res.Statistics
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.Improvements)
	assert.Equal(t, 1, stats.KeepSame)
	assert.Equal(t, 0, stats.CriticalChanges)
	assert.Equal(t, 1, stats.TotalChangesSuggested)
	assert.InDelta(t, 33.3, stats.EfficiencyGain, 0.001)
}

func TestApplySuggestions(t *testing.T) {
	opt := newTestOptimizer(defaultSource())

	orders := []model.Order{
		{ID: "A", Machine: "M1", Product: "P", Quantity: 8, Heads: 1,
			ProductionMinutes: 60, AssemblyMinutes: 60, DeliveryDate: "30/01/2026"},
		{ID: "B", Machine: "M1", Product: "UNKNOWN", Quantity: 1, Heads: 1, DeliveryDate: "30/01/2026"},
	}

	suggestions := []model.Suggestion{
		{OrderID: "A", SuggestedMachine: "M2", Status: model.SuggestionImprove},
		{OrderID: "B", SuggestedMachine: "M2", Status: model.SuggestionError},
	}

	out := opt.ApplySuggestions(context.Background(), orders, suggestions)
	require.Len(t, out, 2)

	// A moved to M2 and picked up that machine's cycle times.
	assert.Equal(t, "M2", out[0].Machine)
	assert.InDelta(t, 30.0, out[0].ProductionMinutes, 0.001)
	assert.InDelta(t, 30.0, out[0].AssemblyMinutes, 0.001)
	assert.InDelta(t, 480.0, out[0].TotalMinutes, 0.001)
	assert.InDelta(t, 8.0, out[0].TotalHours, 0.001)

	// Error suggestions are skipped.
	assert.Equal(t, "M1", out[1].Machine)

	// Input untouched.
	assert.Equal(t, "M1", orders[0].Machine)
	assert.InDelta(t, 60.0, orders[0].ProductionMinutes, 0.001)
}

func TestApplySuggestionsMatchesByID(t *testing.T) {
	opt := newTestOptimizer(defaultSource())

	// Suggestion order deliberately reversed relative to the input slice.
	orders := []model.Order{
		{ID: "A", Machine: "M1", Product: "P", Quantity: 8, Heads: 1},
		{ID: "B", Machine: "M1", Product: "Q", Quantity: 10, Heads: 1},
	}
	suggestions := []model.Suggestion{
		{OrderID: "B", SuggestedMachine: "M2", Status: model.SuggestionImprove},
		{OrderID: "A", SuggestedMachine: "M2", Status: model.SuggestionImprove},
	}

	out := opt.ApplySuggestions(context.Background(), orders, suggestions)

	assert.Equal(t, "A", out[0].ID)
	assert.Equal(t, "M2", out[0].Machine)
	assert.Equal(t, "B", out[1].ID)
	assert.Equal(t, "M2", out[1].Machine)
	assert.InDelta(t, 1.0, out[1].TotalHours, 0.001) // 6 min each, 10 units
}
