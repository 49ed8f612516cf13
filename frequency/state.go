package frequency

import (
	"fmt"
	"math"
	"slices"
)

// StateFrequency tabulates visits to a fixed set of named states and the
// transitions between consecutively collected states.
type StateFrequency struct {
	name        string
	states      []string
	index       map[string]int
	freq        *IntegerFrequency
	transitions [][]int
	last        int
}

// NewStateFrequency returns a tabulator over states, in the given order.
func NewStateFrequency(name string, states []string) (*StateFrequency, error) {
	if len(states) == 0 {
		return nil, ErrNoStates
	}
	index := make(map[string]int, len(states))
	for i, s := range states {
		if _, dup := index[s]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateState, s)
		}
		index[s] = i
	}
	freq, err := NewIntegerFrequency(WithName(name), WithLimits(0, len(states)-1))
	if err != nil {
		return nil, err
	}
	for i, s := range states {
		freq.SetLabel(i, s)
	}
	sf := &StateFrequency{
		name:   name,
		states: slices.Clone(states),
		index:  index,
		freq:   freq,
		last:   -1,
	}
	sf.transitions = make([][]int, len(states))
	for i := range sf.transitions {
		sf.transitions[i] = make([]int, len(states))
	}
	return sf, nil
}

func (sf *StateFrequency) Name() string { return sf.name }

// States returns the state names in order.
func (sf *StateFrequency) States() []string { return slices.Clone(sf.states) }

// Collect records a visit to state.
func (sf *StateFrequency) Collect(state string) error {
	i, ok := sf.index[state]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	sf.freq.Collect(i)
	if sf.last >= 0 {
		sf.transitions[sf.last][i]++
	}
	sf.last = i
	return nil
}

// LastState returns the most recently collected state.
func (sf *StateFrequency) LastState() (string, bool) {
	if sf.last < 0 {
		return "", false
	}
	return sf.states[sf.last], true
}

func (sf *StateFrequency) TotalCount() int { return sf.freq.TotalCount() }

// Frequency returns the number of visits to state, 0 for unknown states.
func (sf *StateFrequency) Frequency(state string) int {
	i, ok := sf.index[state]
	if !ok {
		return 0
	}
	return sf.freq.Frequency(i)
}

// Proportion returns the share of visits to state, NaN when empty.
func (sf *StateFrequency) Proportion(state string) float64 {
	i, ok := sf.index[state]
	if !ok || sf.freq.TotalCount() == 0 {
		return math.NaN()
	}
	return sf.freq.Proportion(i)
}

// Frequencies returns visit counts in state order, including unvisited states.
func (sf *StateFrequency) Frequencies() []int {
	out := make([]int, len(sf.states))
	for i := range out {
		out[i] = sf.freq.Frequency(i)
	}
	return out
}

// Proportions returns visit shares in state order.
func (sf *StateFrequency) Proportions() []float64 {
	out := make([]float64, len(sf.states))
	for i := range out {
		out[i] = sf.freq.Proportion(i)
	}
	return out
}

// TransitionCounts returns counts[from][to].
func (sf *StateFrequency) TransitionCounts() [][]int {
	out := make([][]int, len(sf.transitions))
	for i, row := range sf.transitions {
		out[i] = slices.Clone(row)
	}
	return out
}

// TransitionProportions normalizes each row of TransitionCounts; rows with no
// outgoing transitions are NaN.
func (sf *StateFrequency) TransitionProportions() [][]float64 {
	out := make([][]float64, len(sf.transitions))
	for i, row := range sf.transitions {
		total := 0
		for _, c := range row {
			total += c
		}
		out[i] = make([]float64, len(row))
		for j, c := range row {
			if total == 0 {
				out[i][j] = math.NaN()
				continue
			}
			out[i][j] = float64(c) / float64(total)
		}
	}
	return out
}

// Reset clears visits, transitions and the last state.
func (sf *StateFrequency) Reset() {
	sf.freq.Reset()
	for _, row := range sf.transitions {
		clear(row)
	}
	sf.last = -1
}
