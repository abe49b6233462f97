package analytics

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Entry is one labelled value of a Ranking.
type Entry struct {
	Label string
	Value int64
}

// Ranking is an ordered label→value list. It encodes as a JSON object whose
// keys keep the slice order.
type Ranking []Entry

// MarshalJSON writes the entries as an ordered JSON object.
func (r Ranking) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Descending returns a copy sorted by value, largest first. Equal values keep
// their original order.
func (r Ranking) Descending() Ranking {
	out := append(Ranking(nil), r...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// Ascending returns a copy sorted by value, smallest first. Equal values keep
// their original order.
func (r Ranking) Ascending() Ranking {
	out := append(Ranking(nil), r...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// Head returns at most n leading entries.
func (r Ranking) Head(n int) Ranking {
	if n < len(r) {
		return r[:n]
	}
	return r
}

// Sum adds all values.
func (r Ranking) Sum() int64 {
	var total int64
	for _, e := range r {
		total += e.Value
	}
	return total
}

// Labels returns the labels in order.
func (r Ranking) Labels() []string {
	out := make([]string, len(r))
	for i, e := range r {
		out[i] = e.Label
	}
	return out
}

// Values returns the values in order.
func (r Ranking) Values() []int64 {
	out := make([]int64, len(r))
	for i, e := range r {
		out[i] = e.Value
	}
	return out
}

// Map returns the entries as a plain map.
func (r Ranking) Map() map[string]int64 {
	out := make(map[string]int64, len(r))
	for _, e := range r {
		out[e.Label] = e.Value
	}
	return out
}

// accumulator groups values by key in first-seen order.
type accumulator struct {
	index map[string]int
	r     Ranking
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[string]int)}
}

func (a *accumulator) add(label string, v int64) {
	if i, ok := a.index[label]; ok {
		a.r[i].Value += v
		return
	}
	a.index[label] = len(a.r)
	a.r = append(a.r, Entry{Label: label, Value: v})
}

func (a *accumulator) ranking() Ranking {
	return a.r
}
