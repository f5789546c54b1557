package book

import "math"

// RatingCounts holds the number of ratings a book has received at each
// star level. Counters never go negative; the store clamps decrements
// at zero.
type RatingCounts struct {
	Rating1 int `json:"rating_1"`
	Rating2 int `json:"rating_2"`
	Rating3 int `json:"rating_3"`
	Rating4 int `json:"rating_4"`
	Rating5 int `json:"rating_5"`
}

// Count returns the total number of ratings across all five levels.
func (c RatingCounts) Count() int {
	return c.Rating1 + c.Rating2 + c.Rating3 + c.Rating4 + c.Rating5
}

// Average returns the weighted average rating rounded to two decimal
// places, or 0 when the book has no ratings at all.
func (c RatingCounts) Average() float64 {
	count := c.Count()
	if count == 0 {
		return 0
	}
	weighted := 1*c.Rating1 + 2*c.Rating2 + 3*c.Rating3 + 4*c.Rating4 + 5*c.Rating5
	return math.Round(float64(weighted)/float64(count)*100) / 100
}

// Ratings is the wire form of a book's rating statistics.
type Ratings struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
	RatingCounts
}

// Stats derives the wire form from the raw counters. Every read path and
// every mutation response goes through here so callers always see an
// average consistent with the stored counts.
func (c RatingCounts) Stats() Ratings {
	return Ratings{
		Average:      c.Average(),
		Count:        c.Count(),
		RatingCounts: c,
	}
}
