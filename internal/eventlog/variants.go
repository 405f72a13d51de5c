package eventlog

import (
	"math/rand/v2"
	"sort"
	"strings"
)

// Variant is a distinct activity sequence and the cases that follow it.
type Variant struct {
	Activities []string `json:"activities"`
	Count      int      `json:"count"`
	Cases      []string `json:"cases"`
}

// Variants groups traces by activity sequence, most frequent first; ties
// are ordered by the sequence itself.
func Variants(log Log) []Variant {
	index := make(map[string]int)
	var out []Variant
	for _, t := range log.Traces {
		key := strings.Join(t.Activities, "\x00")
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Variant{Activities: t.Activities})
		}
		out[i].Count++
		out[i].Cases = append(out[i].Cases, t.Case)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.Join(out[i].Activities, "\x00") < strings.Join(out[j].Activities, "\x00")
	})
	return out
}

// Shuffle returns a copy of log with the activities inside every trace
// permuted. The permutation depends only on seed, so noisy logs used to
// probe a model are reproducible.
func Shuffle(log Log, seed uint64) Log {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := Log{Name: log.Name, Traces: make([]Trace, len(log.Traces))}
	for i, t := range log.Traces {
		acts := append([]string(nil), t.Activities...)
		rng.Shuffle(len(acts), func(a, b int) { acts[a], acts[b] = acts[b], acts[a] })
		out.Traces[i] = Trace{Case: t.Case, Activities: acts}
	}
	return out
}
