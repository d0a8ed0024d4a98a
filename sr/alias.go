package sr

// aliasEntry is one slot of Vose's alias table: Split is the probability
// mass of this slot's own value, Alias is which other value fills the rest
// of the slot. Alias == noAlias means the slot is entirely its own value.
type aliasEntry struct {
	split float64
	alias int
}

const noAlias = -1

// Weighted pairs a value with its relative weight in a discrete
// distribution, the common input shape for NewAliasTable.
type Weighted[V any] struct {
	Value  V
	Weight float64
}

// AliasTable is an O(1) weighted categorical sampler over values of type V,
// built once in O(n) from a probability vector (§4.F). Both the
// instruction-probability and feature-probability draws in the Code
// Initializer and Mutation operators go through one of these.
type AliasTable[V any] struct {
	values []V
	table  []aliasEntry
}

// NewAliasTable builds an alias table from a list of (value, weight) pairs.
// Weights need not be normalized; NewAliasTable normalizes them internally.
// Panics if probs is empty or every weight is <= 0, since a Code Initializer
// can never draw from an empty distribution.
func NewAliasTable[V any](probs []Weighted[V]) *AliasTable[V] {
	n := len(probs)
	if n == 0 {
		panic("sr: NewAliasTable requires at least one entry")
	}

	sum := 0.0
	for _, p := range probs {
		sum += p.Weight
	}
	if sum <= 0 {
		panic("sr: NewAliasTable requires a positive total weight")
	}

	values := make([]V, n)
	scaled := make([]float64, n)
	for i, p := range probs {
		values[i] = p.Value
		scaled[i] = float64(n) * (p.Weight / sum)
	}

	table := make([]aliasEntry, n)
	for i := range table {
		table[i].alias = noAlias
	}

	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, s := range scaled {
		if s < 1.0 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		table[s] = aliasEntry{split: scaled[s], alias: l}
		scaled[l] -= 1.0 - scaled[s]

		if scaled[l] < 1.0 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	// Leftover entries (possible only from floating-point rounding) are
	// their own full slot.
	for _, i := range large {
		table[i] = aliasEntry{split: 1.0, alias: noAlias}
	}
	for _, i := range small {
		table[i] = aliasEntry{split: 1.0, alias: noAlias}
	}

	return &AliasTable[V]{values: values, table: table}
}

// Draw returns one sample from the distribution in O(1).
func (a *AliasTable[V]) Draw(r *RandomEngine) V {
	idx := int(r.UintN(uint32(len(a.table))))
	entry := a.table[idx]
	if r.Float64(1.0) >= entry.split && entry.alias != noAlias {
		return a.values[entry.alias]
	}
	return a.values[idx]
}

// NewInstrAliasTable builds an AliasTable[OpCode] from a probability bundle.
func NewInstrAliasTable(bundle []InstrProb) *AliasTable[OpCode] {
	entries := make([]Weighted[OpCode], len(bundle))
	for i, ip := range bundle {
		entries[i] = Weighted[OpCode]{Value: ip.Op, Weight: ip.Weight}
	}
	return NewAliasTable(entries)
}

// NewFeatureAliasTable builds an AliasTable[uint32] over column indices
// [0,len(weights)), used by the Code Initializer/Mutation leaf-source draw.
func NewFeatureAliasTable(weights []float64) *AliasTable[uint32] {
	entries := make([]Weighted[uint32], len(weights))
	for i, w := range weights {
		if w <= 0 {
			w = 1e-4
		}
		entries[i] = Weighted[uint32]{Value: uint32(i), Weight: w}
	}
	return NewAliasTable(entries)
}
