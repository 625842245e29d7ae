// Package fn holds the small generic helpers the engines are composed from:
// slice combinators, a Result type and traced pipeline stages.
package fn

// Filter returns the elements for which keep reports true, in input order.
// The returned slice is never nil so it encodes as [] rather than null.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Map applies f to each element.
func Map[T, U any](items []T, f func(T) U) []U {
	out := make([]U, len(items))
	for i, v := range items {
		out[i] = f(v)
	}
	return out
}

// FilterMap applies f and keeps the results where ok is true.
func FilterMap[T, U any](items []T, f func(T) (U, bool)) []U {
	out := make([]U, 0, len(items))
	for _, v := range items {
		if u, ok := f(v); ok {
			out = append(out, u)
		}
	}
	return out
}

// Reduce folds items left to right into a single value.
func Reduce[T, Acc any](items []T, init Acc, f func(Acc, T) Acc) Acc {
	acc := init
	for _, v := range items {
		acc = f(acc, v)
	}
	return acc
}

// Unique returns the distinct elements, keeping the first occurrence of each.
func Unique[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, v := range items {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Contains reports whether v is present in items.
func Contains[T comparable](items []T, v T) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}

// Without returns items with every occurrence of v removed.
func Without[T comparable](items []T, v T) []T {
	return Filter(items, func(it T) bool { return it != v })
}

// Extreme returns the largest (highest=true) or smallest value produced by
// value over items. ok is false for empty input.
func Extreme[T any](items []T, value func(T) float64, highest bool) (best float64, ok bool) {
	for i, v := range items {
		x := value(v)
		if i == 0 || (highest && x > best) || (!highest && x < best) {
			best = x
		}
	}
	return best, len(items) > 0
}
