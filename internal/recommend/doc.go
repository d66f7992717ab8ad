// Package recommend scores teammate candidates for a requester.
//
// Two independent pipelines share the same inputs:
//
//   - RecommendByJaccard ranks candidate posts by a fixed-weight sum of
//     per-facet Jaccard similarities (skills, interests, availability,
//     personality, experience).
//   - RecommendByANN builds a 9-dimensional feature vector per candidate
//     (BuildFeatures) and scores it with a small feed-forward network
//     (Predict) whose weights are supplied by the caller.
//
// Facet fields arrive in whatever shape the store holds them: a JSON array,
// a comma separated string, a string containing a JSON array literal, an
// object whose keys are the tags, a bare scalar, or nothing at all. TagValue
// captures that shape and ToTagSet is the only place it is resolved into a
// canonical TagSet.
//
// Everything here is pure: no I/O, no shared mutable state, no randomness.
// Both pipelines may run concurrently over the same pool and return the
// same results they would sequentially.
package recommend
