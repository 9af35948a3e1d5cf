package recommend

// path is a non-empty, strictly increasing list of indices into the keyword
// ranking naming the keywords currently in the query.
// Paths are never mutated in place; every move returns a fresh slice so that
// paths handed to observers stay valid.
type path []int

func (p path) last() int {
	return p[len(p)-1]
}

// terms returns the keywords selected by p. Indices past the end of the ranking
// are skipped, so an empty ranking yields an empty query.
func (p path) terms(ranking []string) []string {
	terms := make([]string, 0, len(p))
	for _, i := range p {
		if i < len(ranking) {
			terms = append(terms, ranking[i])
		}
	}
	return terms
}

// advanced replaces the last index with the next keyword.
func (p path) advanced() path {
	q := make(path, len(p))
	copy(q, p)
	q[len(q)-1]++
	return q
}

// narrowed appends the keyword after the last index.
func (p path) narrowed() path {
	q := make(path, len(p), len(p)+1)
	copy(q, p)
	return append(q, p.last()+1)
}

// popped drops the last index.
func (p path) popped() path {
	q := make(path, len(p)-1)
	copy(q, p)
	return q
}

// next picks the path to query after p returned count results from a ranking
// of n keywords. It reports false once the search is over.
func next(p path, count, n int) (path, bool) {
	canAdvance := p.last() < n-1

	switch {
	case count <= 0:
		// Nothing matched: try the next keyword at this depth, or go up a level.
		if canAdvance {
			return p.advanced(), true
		}
		if len(p) > 1 {
			up := p.popped()
			if up.last() < n-1 {
				return up.advanced(), true
			}
		}
		return nil, false
	case count == 1:
		return nil, false
	default:
		// Too many matches: narrow with one more keyword.
		if canAdvance {
			return p.narrowed(), true
		}
		return nil, false
	}
}
