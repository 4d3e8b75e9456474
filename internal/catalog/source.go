package catalog

import (
	"context"

	"prodplan/internal/model"
)

// DefaultAvailability is the assumed daily capacity when the catalog has no
// availability entry for a machine.
const DefaultAvailability = 8.0

// Source supplies the read-only machine/product catalog. The production
// implementation is Client; scheduling passes wrap whatever Source they get in
// a Snapshot.
type Source interface {
	Machines(ctx context.Context) ([]string, error)
	MachineAvailability(ctx context.Context, machine string) float64
	ProductsForMachine(ctx context.Context, machine string) ([]model.Product, error)
}

// Snapshot memoizes catalog lookups for the duration of a single scheduling
// pass, so tight loops over orders do not refetch the same sheet. It is not
// safe for concurrent use and must never be shared across passes.
type Snapshot struct {
	src Source

	machines       []string
	machinesErr    error
	machinesLoaded bool

	availability map[string]float64
	products     map[string][]model.Product
	productsErr  map[string]error
}

func NewSnapshot(src Source) *Snapshot {
	return &Snapshot{
		src:          src,
		availability: map[string]float64{},
		products:     map[string][]model.Product{},
		productsErr:  map[string]error{},
	}
}

func (s *Snapshot) Machines(ctx context.Context) ([]string, error) {
	if !s.machinesLoaded {
		s.machines, s.machinesErr = s.src.Machines(ctx)
		s.machinesLoaded = true
	}
	return s.machines, s.machinesErr
}

func (s *Snapshot) MachineAvailability(ctx context.Context, machine string) float64 {
	if v, ok := s.availability[machine]; ok {
		return v
	}
	v := s.src.MachineAvailability(ctx, machine)
	s.availability[machine] = v
	return v
}

func (s *Snapshot) ProductsForMachine(ctx context.Context, machine string) ([]model.Product, error) {
	if p, ok := s.products[machine]; ok {
		return p, s.productsErr[machine]
	}
	p, err := s.src.ProductsForMachine(ctx, machine)
	s.products[machine] = p
	s.productsErr[machine] = err
	return p, err
}

// FindProduct looks ref up on machine; the bool reports whether it exists.
func (s *Snapshot) FindProduct(ctx context.Context, machine, ref string) (model.Product, bool) {
	products, err := s.ProductsForMachine(ctx, machine)
	if err != nil {
		return model.Product{}, false
	}
	for _, p := range products {
		if p.Matches(ref) {
			return p, true
		}
	}
	return model.Product{}, false
}
