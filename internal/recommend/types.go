package recommend

import "strings"

// DefaultTopK is used when a caller passes k <= 0.
const DefaultTopK = 20

// Post is one recruiting post, reduced to the fields the scorers read.
type Post struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Skills      TagValue `json:"skills"`
	Interests   TagValue `json:"interests"`
	Available   TagValue `json:"available"`
	Personality TagValue `json:"personality"`
	Experience  TagValue `json:"experience"`
}

// Demographics are the profile attributes compared by the feature builder.
// Nil fields are unknown.
type Demographics struct {
	Department *string `json:"department"`
	Year       *int    `json:"year"`
}

// Candidate joins a user to their representative post and profile.
// A nil Post means the user has not published anything and cannot be scored.
type Candidate struct {
	UserID  string       `json:"user_id"`
	Post    *Post        `json:"post"`
	Profile Demographics `json:"profile"`
}

// Filters are optional per-request overrides entered by the requester.
// A non-blank facet field replaces the requester's own post value for that
// facet. Personality has no override. DesiredRole is carried for auditing
// and is not scored.
type Filters struct {
	Skills           string `json:"skills"`
	Interests        string `json:"interests"`
	Availability     string `json:"availability"`
	DesiredRole      string `json:"desired_role"`
	ExperienceLevel  string `json:"experience_level"`
	PreferredYearMin *int   `json:"preferred_year_min"`
	PreferredYearMax *int   `json:"preferred_year_max"`
}

// facets holds the five normalized facet sets of one side of a comparison.
type facets struct {
	skills      TagSet
	interests   TagSet
	available   TagSet
	personality TagSet
	experience  TagSet
}

func postFacets(p *Post) facets {
	if p == nil {
		return facets{}
	}
	return facets{
		skills:      ToTagSet(p.Skills),
		interests:   ToTagSet(p.Interests),
		available:   ToTagSet(p.Available),
		personality: ToTagSet(p.Personality),
		experience:  ToTagSet(p.Experience),
	}
}

// resolveQuery picks the comparison basis for every facet: the override
// when present and non-blank, else the requester's own post value.
func resolveQuery(requester *Post, f *Filters) facets {
	q := postFacets(requester)
	if f == nil {
		return q
	}
	if override(f.Skills) {
		q.skills = ToTagSet(Text(f.Skills))
	}
	if override(f.Interests) {
		q.interests = ToTagSet(Text(f.Interests))
	}
	if override(f.Availability) {
		q.available = ToTagSet(Text(f.Availability))
	}
	if override(f.ExperienceLevel) {
		q.experience = ToTagSet(Text(f.ExperienceLevel))
	}
	return q
}

func override(s string) bool { return strings.TrimSpace(s) != "" }

// facetScores are the five per-facet Jaccard similarities.
type facetScores struct {
	skills, interests, available, personality, experience float64
}

func scoreFacets(q, c facets) facetScores {
	return facetScores{
		skills:      JaccardSets(q.skills, c.skills),
		interests:   JaccardSets(q.interests, c.interests),
		available:   JaccardSets(q.available, c.available),
		personality: JaccardSets(q.personality, c.personality),
		experience:  JaccardSets(q.experience, c.experience),
	}
}
