/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Meal Diary project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"mealdiary/internal/api"
	"mealdiary/internal/config"
	"mealdiary/internal/diary"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var replyTimeout time.Duration

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Chat with the insights assistant about your meals",
	Long: `Open an interactive chat with the insights assistant.
Type a question and press Enter. Ctrl-D or "exit" leaves the chat.`,
	Args: cobra.NoArgs,
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().DurationVar(&replyTimeout, "reply-timeout", 60*time.Second, "how long to wait for an answer")
}

func runInsights(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	history, err := client.Messages(ctx, userID)
	if err != nil {
		return err
	}
	conv := diary.NewConversation(history)

	cfgDir, _ := config.Dir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "you> ",
		HistoryFile:     filepath.Join(cfgDir, "insights_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	out := rl.Stdout()
	for _, m := range conv.Messages() {
		printMessage(out, m)
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		if err := conv.Ask(line); err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		printMessage(out, api.Message{Role: diary.RoleAssistant})

		reply, err := client.SendMessage(ctx, userID, line)
		if err != nil {
			conv.Abandon()
			fmt.Fprintf(out, "send failed: %v\n", err)
			continue
		}
		if conv.Answer(reply) {
			printMessage(out, reply)
			continue
		}
		// no reply in the response, wait for it to land in the history
		reply, err = awaitReply(ctx, client, userID, conv)
		if err != nil {
			log.Warn("no reply", zap.Error(err))
			fmt.Fprintln(out, "No answer yet, ask again later.")
			conv.Abandon()
			continue
		}
		printMessage(out, reply)
	}
}

// awaitReply refetches the conversation until the placeholder is answered.
func awaitReply(ctx context.Context, client *api.Client, userID string, conv *diary.Conversation) (api.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	wait := 500 * time.Millisecond
	for {
		history, err := client.Messages(ctx, userID)
		if err == nil {
			conv.Sync(history)
			if !conv.Pending() {
				msgs := conv.Messages()
				return msgs[len(msgs)-1], nil
			}
		} else if !api.IsKind(err, api.KindNetwork) && !api.IsKind(err, api.KindServer) {
			return api.Message{}, err
		}

		select {
		case <-ctx.Done():
			return api.Message{}, ctx.Err()
		case <-time.After(wait):
		}
		if wait < 4*time.Second {
			wait *= 2
		}
	}
}
