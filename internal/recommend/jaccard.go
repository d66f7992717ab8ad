package recommend

// Jaccard returns |A ∩ B| / |A ∪ B| of the normalized tag sets.
// Two empty sets score 0, not NaN: no evidence is not a match.
func Jaccard(a, b TagValue) float64 {
	return JaccardSets(ToTagSet(a), ToTagSet(b))
}

func JaccardSets(a, b TagSet) float64 {
	if a.Len() == 0 && b.Len() == 0 {
		return 0
	}

	inter := 0
	for _, t := range a.order {
		if b.Has(t) {
			inter++
		}
	}

	union := a.Len() + b.Len() - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Intersection returns the shared tokens in the first operand's order.
func Intersection(a, b TagValue) []string {
	return IntersectionSets(ToTagSet(a), ToTagSet(b))
}

func IntersectionSets(a, b TagSet) []string {
	out := []string{}
	for _, t := range a.order {
		if b.Has(t) {
			out = append(out, t)
		}
	}
	return out
}
