/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Meal Diary project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"strings"

	"mealdiary/internal/security"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var tokenFlag string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the session token, encrypted with a passphrase",
	Long: `Store the backend session token in auth.token_file. The token is
sealed with a key derived from your passphrase; MEALDIARY_PASSPHRASE skips
the prompt.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&tokenFlag, "token", "", "session token (prompted when empty)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	token := strings.TrimSpace(tokenFlag)
	if token == "" {
		rl, err := readline.New("")
		if err != nil {
			return err
		}
		b, err := rl.ReadPassword("Session token: ")
		rl.Close()
		if err != nil {
			return err
		}
		token = strings.TrimSpace(string(b))
	}
	if token == "" {
		return fmt.Errorf("empty session token")
	}

	pass, err := passphrase("New passphrase: ")
	if err != nil {
		return err
	}
	if pass == "" {
		return fmt.Errorf("empty passphrase")
	}
	if err := security.SaveToken(cfg.Auth.TokenFile, token, pass); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", cfg.Auth.TokenFile)
	return nil
}
