package db

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Seed is the reference data loaded by `confirmctl seed`.
type Seed struct {
	Materials        []Material        `yaml:"materials"`
	Buyers           []Buyer           `yaml:"buyers"`
	DeliveryTerms    []DeliveryTerm    `yaml:"delivery_terms"`
	DeliveryPoints   []DeliveryPoint   `yaml:"delivery_points"`
	Packaging        []Packaging       `yaml:"packaging"`
	TransportModes   []TransportMode   `yaml:"transport_modes"`
	PaymentMethods   []PaymentMethod   `yaml:"payment_methods"`
	Currencies       []Currency        `yaml:"currencies"`
	TriggeringEvents []TriggeringEvent `yaml:"triggering_events"`
	Surveyors        []Surveyor        `yaml:"surveyors"`
}

func LoadSeed(r io.Reader) (Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return s, nil
}

// SeedCounts reports how many rows ApplySeed inserted per table.
type SeedCounts map[string]int

// ApplySeed inserts rows whose name (code for currencies) is not present
// yet, so running it twice is harmless.
func (q *Queries) ApplySeed(ctx context.Context, s Seed) (SeedCounts, error) {
	counts := SeedCounts{}
	steps := []func() error{
		func() error { return seedTable(ctx, q, s.Materials, counts) },
		func() error { return seedTable(ctx, q, s.Buyers, counts) },
		func() error { return seedTable(ctx, q, s.DeliveryTerms, counts) },
		func() error { return seedTable(ctx, q, s.DeliveryPoints, counts) },
		func() error { return seedTable(ctx, q, s.Packaging, counts) },
		func() error { return seedTable(ctx, q, s.TransportModes, counts) },
		func() error { return seedTable(ctx, q, s.PaymentMethods, counts) },
		func() error { return seedTable(ctx, q, s.Currencies, counts) },
		func() error { return seedTable(ctx, q, s.TriggeringEvents, counts) },
		func() error { return seedTable(ctx, q, s.Surveyors, counts) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

func seedTable[T any, P interface {
	*T
	Record
}](ctx context.Context, q *Queries, rows []T, counts SeedCounts) error {
	existing, err := List[T, P](ctx, q, nil)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for i := range existing {
		seen[seedKey(P(&existing[i]))] = true
	}
	var zero P = new(T)
	counts[zero.table()] = 0
	for i := range rows {
		row := &rows[i]
		key := seedKey(P(row))
		if seen[key] {
			continue
		}
		if err := Create[T, P](ctx, q, row); err != nil {
			return fmt.Errorf("seed %s %q: %w", zero.table(), key, err)
		}
		seen[key] = true
		counts[zero.table()]++
	}
	return nil
}

// seedKey identifies a reference row by its natural key;
// dest()[1] is the name column, or the code for currencies.
func seedKey(r Record) string {
	return *(r.dest()[1].(*string))
}
