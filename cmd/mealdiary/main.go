/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Meal Diary project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"os"

	"mealdiary/internal/config"
	"mealdiary/internal/logging"
	"mealdiary/pkg/spec"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	userFlag   string

	cfg *config.Config
	log = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   spec.AppName,
	Short: "Meal diary from the terminal",
	Long: `mealdiary logs meals, records quick-add voice notes and chats with the
insights assistant of a meal diary backend.

Settings come from ~/.config/mealdiary/config.yaml and MEALDIARY_* variables.`,
	Version:       spec.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if userFlag != "" {
			cfg.Auth.UserID = userFlag
		}
		log, err = logging.New(cfg.Log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		log = log.Named(cmd.Name())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync(log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/mealdiary/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "user id, overrides auth.user_id")

	rootCmd.AddCommand(mealsCmd, logMealCmd, updateMealCmd)
	rootCmd.AddCommand(quickAddCmd, waveformCmd, playCmd)
	rootCmd.AddCommand(insightsCmd, stravaCmd, loginCmd)
}

func requireUser() (string, error) {
	if cfg.Auth.UserID == "" {
		return "", fmt.Errorf("no user id: set auth.user_id or pass --user")
	}
	return cfg.Auth.UserID, nil
}
