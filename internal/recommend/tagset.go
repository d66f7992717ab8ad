package recommend

import "strings"

// TagSet is an insertion-ordered set of tokens. The zero value is an empty set.
type TagSet struct {
	order []string
	index map[string]struct{}
}

// NewTagSet trims every token and drops blanks and duplicates, keeping the
// first occurrence of each.
func NewTagSet(tokens ...string) TagSet {
	s := TagSet{index: make(map[string]struct{}, len(tokens))}
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := s.index[t]; ok {
			continue
		}
		s.index[t] = struct{}{}
		s.order = append(s.order, t)
	}
	return s
}

func (s TagSet) Len() int { return len(s.order) }

func (s TagSet) Has(t string) bool {
	_, ok := s.index[t]
	return ok
}

// Slice returns the tokens in insertion order.
func (s TagSet) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Equal reports set equality, ignoring order.
func (s TagSet) Equal(o TagSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, t := range s.order {
		if !o.Has(t) {
			return false
		}
	}
	return true
}

// HasFold reports whether any token matches t case-insensitively.
func (s TagSet) HasFold(t string) bool {
	t = strings.TrimSpace(t)
	for _, x := range s.order {
		if strings.EqualFold(x, t) {
			return true
		}
	}
	return false
}
