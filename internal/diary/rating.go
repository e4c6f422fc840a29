package diary

import (
	"errors"
	"strings"
)

var ErrRatingRange = errors.New("rating must be between 1 and 5")

const (
	MinRating = 1
	MaxRating = 5
)

type Rating int

func NewRating(n int) (Rating, error) {
	if n < MinRating || n > MaxRating {
		return 0, ErrRatingRange
	}
	return Rating(n), nil
}

// Label names the ends of the scale only.
func (r Rating) Label() string {
	switch r {
	case MinRating:
		return "Terrible"
	case MaxRating:
		return "Great"
	}
	return ""
}

// String draws the rating as filled and hollow marks, e.g. "●●●○○".
func (r Rating) String() string {
	n := int(r)
	if n < 0 {
		n = 0
	}
	if n > MaxRating {
		n = MaxRating
	}
	return strings.Repeat("●", n) + strings.Repeat("○", MaxRating-n)
}
