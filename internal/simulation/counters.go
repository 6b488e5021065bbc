// internal/simulation/counters.go
package simulation

import (
	"strings"
	"sync"
)

// Category is one of the eight mutually exclusive overlap outcomes of a
// sample: which of up to three targets matched the query window.
type Category int

const (
	QueryOnly Category = iota
	Target1
	Target2
	Target3
	Target1Target2
	Target1Target3
	Target2Target3
	AllTargets

	NumCategories = 8
)

var categoryNames = [NumCategories]string{
	"query_only", "target1", "target2", "target3",
	"target1_target2", "target1_target3", "target2_target3", "target1_target2_target3",
}

func (c Category) String() string {
	if c < 0 || c >= NumCategories {
		return "unknown"
	}
	return categoryNames[c]
}

// members lists the (0-based) targets that matched in c.
func (c Category) members() []int {
	switch c {
	case Target1:
		return []int{0}
	case Target2:
		return []int{1}
	case Target3:
		return []int{2}
	case Target1Target2:
		return []int{0, 1}
	case Target1Target3:
		return []int{0, 2}
	case Target2Target3:
		return []int{1, 2}
	case AllTargets:
		return []int{0, 1, 2}
	}
	return nil
}

// Classify maps per-target match flags to their category.
func Classify(m1, m2, m3 bool) Category {
	switch {
	case m1 && m2 && m3:
		return AllTargets
	case m1 && m2:
		return Target1Target2
	case m1 && m3:
		return Target1Target3
	case m2 && m3:
		return Target2Target3
	case m1:
		return Target1
	case m2:
		return Target2
	case m3:
		return Target3
	default:
		return QueryOnly
	}
}

// State is a copy of the counters at one instant.
type State struct {
	Counts [NumCategories]uint64
	Total  uint64
}

// LabeledCount is one display row of a State.
type LabeledCount struct {
	Category Category
	Label    string
	Count    uint64
}

// Labels names each category after the genomes involved ("Human only",
// "Human-Bonobo-Cow", ...). Categories that involve a target beyond
// len(targets) are omitted.
func (s State) Labels(query string, targets []string) []LabeledCount {
	rows := make([]LabeledCount, 0, NumCategories)
	for c := Category(0); c < NumCategories; c++ {
		parts := []string{query}
		skip := false
		for _, m := range c.members() {
			if m >= len(targets) {
				skip = true
				break
			}
			parts = append(parts, targets[m])
		}
		if skip {
			continue
		}
		label := strings.Join(parts, "-")
		if c == QueryOnly {
			label = query + " only"
		}
		rows = append(rows, LabeledCount{Category: c, Label: label, Count: s.Counts[c]})
	}
	return rows
}

// Counters is the shared tally of sample outcomes. All methods are safe
// for concurrent use; readers only ever see Snapshot copies.
type Counters struct {
	mu    sync.Mutex
	state State
}

func NewCounters() *Counters { return &Counters{} }

// Record increments c and the total together.
func (k *Counters) Record(c Category) {
	k.mu.Lock()
	k.state.Counts[c]++
	k.state.Total++
	k.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (k *Counters) Snapshot() State {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state
}

// Reset zeroes every counter.
func (k *Counters) Reset() {
	k.mu.Lock()
	k.state = State{}
	k.mu.Unlock()
}
