/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Meal Diary project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mealdiary/internal/api"
	"mealdiary/internal/codec"
	"mealdiary/internal/diary"
	"mealdiary/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const notesWidth = 72

var (
	dayFlag     string
	refreshFlag bool
	fullFlag    bool

	mealTypeFlag string
	notesFlag    string
	ratingFlag   int
	photoFlags   []string
	whenFlag     string

	updTypeFlag  string
	updNotesFlag string
	updWhenFlag  string
)

var mealsCmd = &cobra.Command{
	Use:   "meals",
	Short: "Show the meals logged on a day",
	Long: `Show the meals logged on a day, oldest first.

Examples:
  mealdiary meals
  mealdiary meals --day yesterday
  mealdiary meals --day 2024-03-15 --full`,
	Args: cobra.NoArgs,
	RunE: runMeals,
}

var logMealCmd = &cobra.Command{
	Use:   "log-meal",
	Short: "Log a meal with notes, rating and photos",
	Long: `Log a meal. Photos are cropped square and scaled before upload.

Examples:
  mealdiary log-meal --type dinner --rating 4 --notes "salmon and rice" --photo plate.jpg`,
	Args: cobra.NoArgs,
	RunE: runLogMeal,
}

var updateMealCmd = &cobra.Command{
	Use:   "update-meal <meal-id>",
	Short: "Change the notes, type or time of a logged meal",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdateMeal,
}

func init() {
	mealsCmd.Flags().StringVar(&dayFlag, "day", "today", "day to show: today, yesterday, tomorrow or YYYY-MM-DD")
	mealsCmd.Flags().BoolVar(&refreshFlag, "refresh", false, "ignore the local cache")
	mealsCmd.Flags().BoolVar(&fullFlag, "full", false, "expand long notes")

	logMealCmd.Flags().StringVar(&mealTypeFlag, "type", "1", "meal type: 1-4 or breakfast, lunch, dinner, snack")
	logMealCmd.Flags().StringVar(&notesFlag, "notes", "", "notes")
	logMealCmd.Flags().IntVar(&ratingFlag, "rating", 3, "rating from 1 (terrible) to 5 (great)")
	logMealCmd.Flags().StringArrayVar(&photoFlags, "photo", nil, "photo to attach, repeatable")
	logMealCmd.Flags().StringVar(&whenFlag, "when", "", "meal time, RFC3339 or \"YYYY-MM-DD HH:MM\" (default now)")

	updateMealCmd.Flags().StringVar(&updTypeFlag, "type", "", "new meal type")
	updateMealCmd.Flags().StringVar(&updNotesFlag, "notes", "", "new notes")
	updateMealCmd.Flags().StringVar(&updWhenFlag, "when", "", "new meal time")
}

// parseDay accepts the relative names the diary header offers or a date.
func parseDay(s string, now time.Time) (time.Time, error) {
	switch s {
	case "", "today":
		return now, nil
	case "yesterday":
		return diary.PrevDay(now), nil
	case "tomorrow":
		return diary.NextDay(now), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("bad day %q: want YYYY-MM-DD", s)
	}
	// noon keeps the day stable across zone conversions
	return d.Add(12 * time.Hour), nil
}

func parseWhen(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: want RFC3339 or YYYY-MM-DD HH:MM", s)
	}
	return t, nil
}

func runMeals(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	now := time.Now()
	day, err := parseDay(dayFlag, now)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	var meals []api.Meal
	if !refreshFlag {
		meals, err = st.Month(ctx, userID, day, cfg.Store.MaxAge)
		if err != nil && !errors.Is(err, store.ErrMiss) {
			log.Warn("cache read failed", zap.Error(err))
		}
	}
	if refreshFlag || err != nil {
		client, err := newClient()
		if err != nil {
			return err
		}
		meals, err = client.AllMeals(ctx, userID, day)
		if err != nil {
			return err
		}
		if err := st.PutMonth(ctx, userID, day, meals); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		}
	}

	out := cmd.OutOrStdout()
	headerColor.Fprintf(out, "%s\n\n", diary.DayLabel(day, now))
	todays := diary.MealsOn(meals, day, time.Local)
	if len(todays) == 0 {
		fmt.Fprintln(out, "No meals logged.")
		return nil
	}
	for _, m := range todays {
		printMeal(out, m, time.Local, notesWidth, fullFlag)
		fmt.Fprintln(out)
	}
	return nil
}

func runLogMeal(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	mealType, ok := diary.MealType(mealTypeFlag)
	if !ok {
		return fmt.Errorf("unknown meal type %q", mealTypeFlag)
	}
	rating, err := diary.NewRating(ratingFlag)
	if err != nil {
		return err
	}
	when, err := parseWhen(whenFlag, time.Now())
	if err != nil {
		return err
	}

	form := api.MealForm{
		UserID: userID,
		Notes:  notesFlag,
		Date:   when,
		Type:   mealType,
		Rating: int(rating),
	}
	for _, p := range photoFlags {
		photo, err := loadPhoto(p)
		if err != nil {
			return err
		}
		form.Images = append(form.Images, photo)
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	if err := client.LogMeal(cmd.Context(), form); err != nil {
		return err
	}
	invalidate(cmd, userID)
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%s) %s\n", mealType, rating, rating.Label())
	return nil
}

func loadPhoto(path string) (api.Photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return api.Photo{}, err
	}
	defer f.Close()
	data, err := codec.ProcessPhoto(f)
	if err != nil {
		return api.Photo{}, fmt.Errorf("%s: %w", path, err)
	}
	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))] + ".png"
	return api.Photo{Name: name, Data: data}, nil
}

func runUpdateMeal(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	u := api.MealUpdate{MealID: args[0], Notes: updNotesFlag}
	if updTypeFlag != "" {
		t, ok := diary.MealType(updTypeFlag)
		if !ok {
			return fmt.Errorf("unknown meal type %q", updTypeFlag)
		}
		u.Type = t
	}
	if updWhenFlag != "" {
		when, err := parseWhen(updWhenFlag, time.Now())
		if err != nil {
			return err
		}
		u.Datetime = when.UTC().Format(time.RFC3339)
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	if err := client.UpdateMeal(cmd.Context(), u); err != nil {
		return err
	}
	invalidate(cmd, userID)
	fmt.Fprintf(cmd.OutOrStdout(), "Updated meal %s\n", u.MealID)
	return nil
}

// invalidate drops cached months after a write so the next read refetches.
func invalidate(cmd *cobra.Command, userID string) {
	st, err := openStore()
	if err != nil {
		log.Warn("cache open failed", zap.Error(err))
		return
	}
	defer st.Close()
	if err := st.Invalidate(cmd.Context(), userID); err != nil {
		log.Warn("cache invalidate failed", zap.Error(err))
	}
}
