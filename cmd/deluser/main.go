// Package main is a terminal rendition of the delete-user form.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/userdesk/userdesk/internal/client"
	"github.com/userdesk/userdesk/internal/config"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		endpoint = flag.String("endpoint", cfg.Endpoint, "Delete-user endpoint URL")
		apiKey   = flag.String("api-key", cfg.APIKey, "API key sent as a bearer token")
		username = flag.String("username", "", "Delete this user and exit instead of prompting")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	form, err := client.NewDeleteUserForm(client.Config{
		Endpoint: *endpoint,
		APIKey:   *apiKey,
		Doer:     &http.Client{Timeout: cfg.Timeout},
		Notifier: client.NotifierFunc(func(msg string) { fmt.Fprintln(os.Stdout, msg) }),
		Logger:   logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *username != "" {
		out, err := form.Submit(ctx, *username)
		if err != nil || !out.OK() {
			os.Exit(1)
		}
		return
	}

	if err := prompt(ctx, form, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// prompt reads usernames line by line and submits each one until EOF.
func prompt(ctx context.Context, form *client.DeleteUserForm, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Username to delete: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		name := strings.TrimRight(scanner.Text(), "\r")
		if name == "" {
			fmt.Fprintln(out, "Please fill in the username.")
			continue
		}

		if _, err := form.Submit(ctx, name); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// Already notified; keep prompting.
			continue
		}
	}
}
