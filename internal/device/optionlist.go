package device

import "fmt"

// OptionList is a fixed-capacity, insertion-ordered table of named
// options (sources, voicings, focus positions, audio modes). The device
// first announces how many entries exist, then streams one named entry
// per line; once full, further entry events are lookups, not inserts.
//
// A zero OptionList has capacity 0 and is therefore already full, so
// entry events that arrive before any count event act as lookups and
// cannot grow the table. Not safe for concurrent use; the owning Device
// serializes access.
type OptionList struct {
	capacity int
	ids      []int
	values   map[int]string
}

// NewOptionList returns an empty list with capacity 0.
func NewOptionList() *OptionList {
	return &OptionList{values: map[int]string{}}
}

// SetCapacity sets a new capacity and clears all entries. Negative
// capacities are rejected.
func (l *OptionList) SetCapacity(n int) error {
	if n < 0 {
		return fmt.Errorf("option list capacity must be >= 0, got %d", n)
	}
	l.capacity = n
	l.ids = l.ids[:0]
	l.values = map[int]string{}
	return nil
}

// Add inserts a new entry. It fails when the list is full or the id is
// already present.
func (l *OptionList) Add(id int, value string) error {
	if l.Full() {
		return fmt.Errorf("option list full, cannot add more than %d entries", l.capacity)
	}
	if _, exists := l.values[id]; exists {
		return fmt.Errorf("option id %d already present", id)
	}
	l.ids = append(l.ids, id)
	l.values[id] = value
	return nil
}

// Full reports whether the list has reached its capacity.
func (l *OptionList) Full() bool {
	return len(l.ids) >= l.capacity
}

// Len returns the number of entries.
func (l *OptionList) Len() int {
	return len(l.ids)
}

// All returns every value in insertion order.
func (l *OptionList) All() []string {
	out := make([]string, len(l.ids))
	for i, id := range l.ids {
		out[i] = l.values[id]
	}
	return out
}

// ByID looks up a value by its id.
func (l *OptionList) ByID(id int) (string, bool) {
	v, ok := l.values[id]
	return v, ok
}

// ByName looks up the id of the first entry with the given value.
func (l *OptionList) ByName(value string) (int, bool) {
	for _, id := range l.ids {
		if l.values[id] == value {
			return id, true
		}
	}
	return 0, false
}
