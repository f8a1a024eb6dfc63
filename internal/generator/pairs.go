package generator

import (
	"cmp"
	"slices"
)

// Pair - два операнда, упорядоченные по возрастанию
type Pair [2]int

// UniquePairs строит все сочетания элементов first и second без повторов:
// (a, b) и (b, a) дают одну пару. Результат отсортирован.
func UniquePairs(first, second []int) []Pair {
	pairs := make([]Pair, 0, len(first)*len(second))
	for _, a := range first {
		for _, b := range second {
			pairs = append(pairs, Pair{min(a, b), max(a, b)})
		}
	}

	slices.SortFunc(pairs, comparePairs)
	return slices.Compact(pairs)
}

func comparePairs(a, b Pair) int {
	if c := cmp.Compare(a[0], b[0]); c != 0 {
		return c
	}
	return cmp.Compare(a[1], b[1])
}
