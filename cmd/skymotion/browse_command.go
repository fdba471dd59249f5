package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SLASHOO/SkyMotion-Library/internal/widget"
)

const closeTimeout = 15 * time.Second

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Answer the questionnaire and browse matching moves",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := ctx.newWidget()
			if err != nil {
				return err
			}

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(signals)
			go func() {
				select {
				case <-signals:
					// Leaving the terminal is the page-hide of the CLI.
					w.Hide(context.Background())
					cancel()
				case <-runCtx.Done():
				}
			}()

			w.Init(runCtx)

			b := &browser{
				w:        w,
				out:      cmd.OutOrStdout(),
				colorize: shouldColorize(cmd.OutOrStdout()),
			}
			runErr := runBrowser(runCtx, b, cmd.InOrStdin())

			closeCtx, closeCancel := context.WithTimeout(context.Background(), closeTimeout)
			defer closeCancel()
			if err := w.Close(closeCtx); err != nil {
				slog.Warn("cli: pending session writes not confirmed", "error", err)
			}
			return runErr
		},
	}
}

// runBrowser feeds input lines to b until quit, end of input or ctx ends.
func runBrowser(ctx context.Context, b *browser, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	b.intro()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := b.handle(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				printError(b, err)
			}
		}
	}
}

func printError(b *browser, err error) {
	switch {
	case errors.Is(err, widget.ErrNoVideo):
		b.printf("No video at that position.\n")
	case errors.Is(err, widget.ErrNoMedia):
		b.printf("That video has no playable file.\n")
	default:
		b.printf("%v\n", err)
	}
}

func newSavedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "saved",
		Short: "List saved moves",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := ctx.newWidget()
			if err != nil {
				return err
			}
			w.Init(cmd.Context())
			defer func() { _ = w.Close(context.Background()) }()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSaved(w.SavedItems(), shouldColorize(out)))
			return nil
		},
	}
}

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the synchronized session",
	}
	sessionCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the session summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := ctx.newWidget()
			if err != nil {
				return err
			}
			if !w.Mode().Active() {
				return errors.New("no session: pass --session or a location with mode=session&sess=<id>")
			}
			w.Init(cmd.Context())
			defer func() { _ = w.Close(context.Background()) }()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSummary(w.Summary(cmd.Context()), shouldColorize(out)))
			return nil
		},
	})
	return sessionCmd
}
