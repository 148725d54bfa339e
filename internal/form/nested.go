package form

import (
	"fmt"
	"slices"

	"casedesk/internal/notify"
)

// MinItems is the floor for nested lists such as sections, questions and options
const MinItems = 1

// AddAt inserts item at index i, appending when i is past the end.
// The input slice is not modified.
func AddAt[E any](list []E, i int, item E) []E {
	if i < 0 || i > len(list) {
		i = len(list)
	}
	return slices.Insert(slices.Clone(list), i, item)
}

// RemoveAt removes the element at i. Removing below MinItems or an index out
// of range is refused: exactly one notification is sent and the list is
// returned unchanged.
func RemoveAt[E any](list []E, i int, n notify.Notifier, what string) ([]E, bool) {
	if i < 0 || i >= len(list) {
		notify.SendError(n, "Nothing to remove", fmt.Sprintf("There is no %s at position %d.", what, i+1))
		return list, false
	}
	if len(list) <= MinItems {
		notify.SendWarning(n, "Cannot remove "+what, fmt.Sprintf("At least %d %s is required.", MinItems, what))
		return list, false
	}
	return slices.Delete(slices.Clone(list), i, i+1), true
}

// UpdateAt replaces the element at i with fn(element)
func UpdateAt[E any](list []E, i int, fn func(E) E, n notify.Notifier, what string) ([]E, bool) {
	if i < 0 || i >= len(list) {
		notify.SendError(n, "Nothing to update", fmt.Sprintf("There is no %s at position %d.", what, i+1))
		return list, false
	}
	out := slices.Clone(list)
	out[i] = fn(out[i])
	return out, true
}
