/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Meal Diary project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
)

// --- RAW KEYS ---

func initTerminal() {
	exec.Command("stty", "-F", "/dev/tty", "cbreak", "min", "1", "-echo").Run()
	fmt.Print("\033[?25l")
}

func cleanupTerminal() {
	exec.Command("stty", "-F", "/dev/tty", "sane").Run()
	fmt.Print("\033[?25h")
}

// readKeys delivers single lowercase keys from stdin until stdin closes.
func readKeys() <-chan string {
	keys := make(chan string, 4)
	go func() {
		defer close(keys)
		b := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(b)
			if err != nil {
				return
			}
			if n > 0 {
				keys <- strings.ToLower(string(b[0]))
			}
		}
	}()
	return keys
}

// restoreOnSignal puts the terminal back before an interrupt kills us.
func restoreOnSignal() func() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sig:
			cleanupTerminal()
			os.Exit(130)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
	}
}

// redraw rewrites the last n lines in place.
func redraw(n int, lines ...string) {
	if n > 0 {
		fmt.Printf("\033[%dA", n)
	}
	for _, l := range lines {
		fmt.Printf("\r\033[K%s\n", l)
	}
}
