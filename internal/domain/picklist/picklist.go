// Package picklist maintains ordered, capacity-bounded lists of team ids.
// Every operation returns a new slice and never mutates its input.
package picklist

import (
	"fmt"
	"math"
	"slices"
)

// Default capacity policy.
const (
	DefaultMax        = 12
	DefaultMultiplier = 0.35
)

// Limit is min(max, ceil(teamCount*multiplier)), never negative.
func Limit(teamCount, maxAllowed int, multiplier float64) int {
	n := int(math.Ceil(float64(teamCount) * multiplier))
	if n > maxAllowed {
		n = maxAllowed
	}
	if n < 0 {
		return 0
	}
	return n
}

// Append adds id at the end. It fails with ErrAlreadyPresent when id is
// listed and with ErrCapacityExceeded when the list is full.
func Append(list []string, id string, capacity int) ([]string, error) {
	if slices.Contains(list, id) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyPresent, id)
	}
	if len(list) >= capacity {
		return nil, fmt.Errorf("%w: limit %d", ErrCapacityExceeded, capacity)
	}
	out := make([]string, len(list), len(list)+1)
	copy(out, list)
	return append(out, id), nil
}

// Remove drops id. Removing an absent id returns an unchanged copy.
func Remove(list []string, id string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Reorder moves the element at from to index to.
func Reorder(list []string, from, to int) ([]string, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return nil, fmt.Errorf("%w: from %d to %d with length %d", ErrIndexOutOfRange, from, to, len(list))
	}
	out := slices.Clone(list)
	v := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, v), nil
}

// Replace validates a whole new list: no duplicates and within capacity.
func Replace(list []string, capacity int) ([]string, error) {
	seen := make(map[string]bool, len(list))
	for _, id := range list {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyPresent, id)
		}
		seen[id] = true
	}
	if len(list) > capacity {
		return nil, fmt.Errorf("%w: %d entries, limit %d", ErrCapacityExceeded, len(list), capacity)
	}
	return slices.Clone(list), nil
}
