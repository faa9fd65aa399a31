package scanjson

import (
	"math"
	"strings"

	"github.com/ochairo/scangate/internal/domain/entities"
)

// aggregator folds per-module results as they are decoded
type aggregator struct {
	ok         bool
	errors     []string
	unique     int
	dependency int
}

func newAggregator() *aggregator {
	return &aggregator{ok: true}
}

func (a *aggregator) add(m entities.ScanResult) {
	a.ok = a.ok && m.OK
	if m.Error != "" {
		a.errors = append(a.errors, m.Error)
	}
	a.unique = addCount(a.unique, m.UniqueCount)
	a.dependency = addCount(a.dependency, m.DependencyCount)
}

// addCount sums non-negative counts, saturating at math.MaxInt
func addCount(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

func (a *aggregator) result() entities.ScanResult {
	return entities.ScanResult{
		OK:              a.ok,
		Error:           strings.Join(a.errors, moduleSeparator),
		UniqueCount:     a.unique,
		DependencyCount: a.dependency,
	}
}

// Aggregate combines per-module results: ok is the conjunction, errors are
// joined in order with ". ", counts are summed. No modules yields ok=true.
func Aggregate(modules ...entities.ScanResult) entities.ScanResult {
	agg := newAggregator()
	for _, m := range modules {
		agg.add(m)
	}
	return agg.result()
}
