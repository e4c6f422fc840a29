/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Meal Diary project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"time"

	"mealdiary/internal/api"
	"mealdiary/internal/diary"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

var workoutDayFlag string

var stravaCmd = &cobra.Command{
	Use:   "strava",
	Short: "Connect Strava and show workouts",
}

var stravaConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Print the Strava authorization link",
	Long: `Print the link that grants the diary read access to your Strava
activities. After approving, pass the returned code to "mealdiary strava token".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		oc, err := stravaConfig()
		if err != nil {
			return err
		}
		url := oc.AuthCodeURL(uuid.NewString(),
			oauth2.SetAuthURLParam("approval_prompt", "auto"))
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

var stravaTokenCmd = &cobra.Command{
	Use:   "token <code>",
	Short: "Exchange a Strava authorization code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		oc, err := stravaConfig()
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.CreateStravaAccessToken(cmd.Context(), api.NewStravaTokenRequest(oc, userID, args[0])); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Strava connected.")
		return nil
	},
}

var stravaActivitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Show the workouts of a day",
	Args:  cobra.NoArgs,
	RunE:  runActivities,
}

func init() {
	stravaActivitiesCmd.Flags().StringVar(&workoutDayFlag, "day", "today", "day to show: today, yesterday or YYYY-MM-DD")
	stravaCmd.AddCommand(stravaConnectCmd, stravaTokenCmd, stravaActivitiesCmd)
}

func stravaConfig() (*oauth2.Config, error) {
	if cfg.Strava.ClientID == "" {
		return nil, fmt.Errorf("strava.client_id is not set")
	}
	return api.StravaOAuthConfig(cfg.Strava.ClientID, cfg.Strava.ClientSecret, cfg.Strava.RedirectURL), nil
}

func runActivities(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	now := time.Now()
	day, err := parseDay(workoutDayFlag, now)
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	data, err := client.StravaActivities(cmd.Context(), userID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !data.UserConnected {
		fmt.Fprintln(out, "Strava is not connected, run `mealdiary strava connect`.")
		return nil
	}
	headerColor.Fprintf(out, "Workouts, %s\n\n", diary.DayLabel(day, now))
	workouts := diary.WorkoutsOn(data.ActivityData, day, time.Local)
	if len(workouts) == 0 {
		fmt.Fprintln(out, "No workouts from today found")
		return nil
	}
	for _, a := range workouts {
		printWorkout(out, a)
		fmt.Fprintln(out)
	}
	return nil
}
