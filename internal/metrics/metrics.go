// Package metrics folds collections into the totals, percentages and
// groupings shown on the dashboards. Every function is pure and safe on
// empty input.
package metrics

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Sum totals a money field. Empty input yields zero.
func Sum[T any](records []T, selector func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(selector(r))
	}
	return total
}

// SumInt totals an integer field.
func SumInt[T any](records []T, selector func(T) int) int {
	total := 0
	for _, r := range records {
		total += selector(r)
	}
	return total
}

// Count returns how many records satisfy pred.
func Count[T any](records []T, pred func(T) bool) int {
	n := 0
	for _, r := range records {
		if pred(r) {
			n++
		}
	}
	return n
}

// Filter returns the records satisfying pred, never nil.
func Filter[T any](records []T, pred func(T) bool) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// PercentageOf returns part/whole*100 rounded to two places. A zero whole yields 0.
func PercentageOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).Round(2).InexactFloat64()
}

// PercentageOfInt is PercentageOf for counts.
func PercentageOfInt(part, whole int) float64 {
	return PercentageOf(decimal.NewFromInt(int64(part)), decimal.NewFromInt(int64(whole)))
}

// Average returns the mean of selector over records, rounded to two places.
// Empty input yields 0.
func Average[T any](records []T, selector func(T) decimal.Decimal) float64 {
	if len(records) == 0 {
		return 0
	}
	return Sum(records, selector).Div(decimal.NewFromInt(int64(len(records)))).Round(2).InexactFloat64()
}

// Group is one bucket produced by GroupBy.
type Group[T any] struct {
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
	Items []T             `json:"items"`
}

// Groups maps keys to buckets and remembers the order keys were first seen.
type Groups[K comparable, T any] struct {
	Keys    []K
	Buckets map[K]*Group[T]
}

// Get returns the bucket for key, or an empty one.
func (g Groups[K, T]) Get(key K) Group[T] {
	if b, ok := g.Buckets[key]; ok {
		return *b
	}
	return Group[T]{Sum: decimal.Zero, Items: []T{}}
}

func (g Groups[K, T]) Len() int { return len(g.Keys) }

// GroupBy buckets records by keyFn, counting them and summing valueFn.
// A nil valueFn only counts.
func GroupBy[T any, K comparable](records []T, keyFn func(T) K, valueFn func(T) decimal.Decimal) Groups[K, T] {
	out := Groups[K, T]{Keys: []K{}, Buckets: map[K]*Group[T]{}}
	for _, r := range records {
		key := keyFn(r)
		b, ok := out.Buckets[key]
		if !ok {
			b = &Group[T]{Sum: decimal.Zero}
			out.Buckets[key] = b
			out.Keys = append(out.Keys, key)
		}
		b.Count++
		b.Items = append(b.Items, r)
		if valueFn != nil {
			b.Sum = b.Sum.Add(valueFn(r))
		}
	}
	return out
}

// TopN returns the n highest-scoring records, highest first. Ties keep their
// input order. n <= 0 returns every record.
func TopN[T any](records []T, score func(T) decimal.Decimal, n int) []T {
	sorted := make([]T, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return score(sorted[i]).GreaterThan(score(sorted[j]))
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
