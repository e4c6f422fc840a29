/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Meal Diary project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"mealdiary/internal/api"
	"mealdiary/internal/security"
	"mealdiary/internal/store"

	"github.com/chzyer/readline"
	"golang.org/x/oauth2"
)

const passphraseEnv = "MEALDIARY_PASSPHRASE"

// passphrase reads the token passphrase from the environment or the tty.
func passphrase(prompt string) (string, error) {
	if p := os.Getenv(passphraseEnv); p != "" {
		return p, nil
	}
	rl, err := readline.New("")
	if err != nil {
		return "", err
	}
	defer rl.Close()
	b, err := rl.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// lockedToken unlocks the session token lazily, on the first request.
type lockedToken struct {
	path string
}

func (t lockedToken) Token() (*oauth2.Token, error) {
	pass, err := passphrase("Passphrase: ")
	if err != nil {
		return nil, err
	}
	tok, err := security.LoadToken(t.path, pass)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no session token at %s, run `mealdiary login` first", t.path)
	}
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: tok}, nil
}

func newClient() (*api.Client, error) {
	tokens := oauth2.ReuseTokenSource(nil, lockedToken{path: cfg.Auth.TokenFile})
	return api.New(cfg.API.BaseURL, tokens,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithRateLimit(cfg.API.RatePerSec, 1),
		api.WithLogger(log.Named("api")),
	)
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.Store.Path)
}
