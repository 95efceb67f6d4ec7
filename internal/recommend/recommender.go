// Reclens - User-Based Collaborative Filtering over MovieLens-Style Ratings
// Copyright 2026 The Reclens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens-io/reclens

package recommend

import "sort"

// TopN ranks predictions by descending predicted rating and returns the
// first n. Equal ratings break on ascending item title. n <= 0 or an
// empty prediction set returns an empty list.
func TopN(predictions PredictionSet, n int) []Recommendation {
	if n <= 0 || len(predictions) == 0 {
		return []Recommendation{}
	}

	ranked := make([]Recommendation, 0, len(predictions))
	for title, rating := range predictions {
		ranked = append(ranked, Recommendation{ItemTitle: title, PredictedRating: rating})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].PredictedRating != ranked[j].PredictedRating {
			return ranked[i].PredictedRating > ranked[j].PredictedRating
		}
		return ranked[i].ItemTitle < ranked[j].ItemTitle
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	return ranked
}
