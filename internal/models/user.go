package models

// User represents a microblog account.
type User struct {
	ID         string `json:"id"`
	ScreenName string `json:"screen_name"` // Mastodon acct or Twitter username, without "@"
}

// IDSet is a set of account IDs.
type IDSet map[string]struct{}

// NewIDSet builds a set from the given IDs.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an ID into the set.
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether the set contains id.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Difference returns the IDs in s that are in none of the others, sorted by CompareIDs.
func (s IDSet) Difference(others ...IDSet) []string {
	var out []string
	for id := range s {
		excluded := false
		for _, o := range others {
			if o.Has(id) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, id)
		}
	}
	SortIDs(out)
	return out
}
