package model

import "math"

const (
	MinScore = 0.0
	MaxScore = 5.0
)

// RatingAggregate is the rating state stored on a recipe. Sum is the raw
// total of the per-rater scores; Average is derived from it and rounded to
// two decimals.
type RatingAggregate struct {
	Count       int                `json:"count"`
	Sum         float64            `json:"-"`
	Average     float64            `json:"average"`
	UserRatings map[string]float64 `json:"user_ratings"`
}

func NewRatingAggregate() RatingAggregate {
	return RatingAggregate{UserRatings: map[string]float64{}}
}

// ValidScore reports whether score lies in [MinScore, MaxScore].
func ValidScore(score float64) bool {
	return !math.IsNaN(score) && score >= MinScore && score <= MaxScore
}

// HasRated reports whether raterID already has a score on record.
func (a RatingAggregate) HasRated(raterID string) bool {
	_, ok := a.UserRatings[raterID]
	return ok
}

// Apply returns the aggregate after raterID scores the recipe. A rater's
// new score replaces their previous one; the receiver is left unchanged.
func (a RatingAggregate) Apply(raterID string, score float64) RatingAggregate {
	ratings := make(map[string]float64, len(a.UserRatings)+1)
	for id, s := range a.UserRatings {
		ratings[id] = s
	}

	count, sum := a.Count, a.Sum
	if prev, ok := ratings[raterID]; ok {
		sum += score - prev
	} else {
		count++
		sum += score
	}
	ratings[raterID] = score

	return RatingAggregate{
		Count:       count,
		Sum:         sum,
		Average:     roundAverage(sum, count),
		UserRatings: ratings,
	}
}

func roundAverage(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	avg := math.RoundToEven(sum/float64(count)*100) / 100
	return math.Min(MaxScore, math.Max(MinScore, avg))
}
