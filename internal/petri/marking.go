package petri

// Marking is a token count per place index. Counts never go below zero:
// Take clamps and reports the shortfall instead.
type Marking []int

// NewMarking returns an empty marking for a net with n places.
func NewMarking(n int) Marking {
	return make(Marking, n)
}

// Clone returns an independent copy.
func (m Marking) Clone() Marking {
	out := make(Marking, len(m))
	copy(out, m)
	return out
}

// Get returns the token count at place p.
func (m Marking) Get(p int) int { return m[p] }

// Add puts n tokens on place p.
func (m Marking) Add(p, n int) { m[p] += n }

// Take removes one token from place p. It returns false, leaving the count
// at zero, when the place was empty.
func (m Marking) Take(p int) bool {
	if m[p] == 0 {
		return false
	}
	m[p]--
	return true
}

// Total returns the number of tokens over all places.
func (m Marking) Total() int {
	total := 0
	for _, c := range m {
		total += c
	}
	return total
}

// Equal reports whether both markings hold the same counts.
func (m Marking) Equal(other Marking) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i] != other[i] {
			return false
		}
	}
	return true
}

// Named returns the non-zero entries keyed by place name.
func (m Marking) Named(net *Net) map[string]int {
	out := make(map[string]int)
	for i, c := range m {
		if c != 0 {
			out[net.places[i].Name] = c
		}
	}
	return out
}
