// Package diary holds the presentation rules of the meal diary: which
// entries belong to a day, how they are labelled and how notes fold.
package diary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mealdiary/internal/api"
	"mealdiary/pkg/spec"
)

// MealType resolves a select key ("1".."4") or a type name to the name the
// backend stores. ok is false for anything else.
func MealType(keyOrName string) (name string, ok bool) {
	s := strings.TrimSpace(keyOrName)
	for _, t := range spec.MealTypes {
		if s == t.Key || strings.EqualFold(s, t.Value) {
			return t.Value, true
		}
	}
	return "", false
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// MealsOn returns the meals logged on day, oldest first. Meals sharing a
// timestamp keep their input order.
func MealsOn(meals []api.Meal, day time.Time, loc *time.Location) []api.Meal {
	out := make([]api.Meal, 0, len(meals))
	for _, m := range meals {
		if SameDay(m.Datetime, day, loc) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Datetime.Before(out[j].Datetime)
	})
	return out
}

// MealTime formats t like "7:05 pm".
func MealTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("3:04 pm")
}

// MealHeading is the "time - type" line shown above the notes.
func MealHeading(m api.Meal, loc *time.Location) string {
	if m.Type == "" {
		return MealTime(m.Datetime, loc)
	}
	return fmt.Sprintf("%s - %s", MealTime(m.Datetime, loc), m.Type)
}
