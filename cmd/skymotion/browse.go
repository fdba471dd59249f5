package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SLASHOO/SkyMotion-Library/internal/catalog"
	"github.com/SLASHOO/SkyMotion-Library/internal/filter"
	"github.com/SLASHOO/SkyMotion-Library/internal/widget"
)

const browseHelp = `Commands:
  <number> or <label>  answer the current question
  back                 undo the last answer
  reset                start over
  list                 show the current results
  more                 show more results
  open <n>             play result n
  next, prev           play the neighbouring result
  close                stop playing
  save <n>             save or unsave result n
  saved                list saved moves
  summary              show the session summary
  end                  finish the session
  quit                 leave`

var errQuit = errors.New("quit")

// browser is the line-oriented front end over one widget.
type browser struct {
	w        *widget.Widget
	out      io.Writer
	colorize bool
}

func (b *browser) printf(format string, args ...any) {
	fmt.Fprintf(b.out, format, args...)
}

func (b *browser) intro() {
	if err := b.w.CatalogError(); err != nil {
		b.printf("Catalog unavailable: %v\n", err)
	} else {
		b.printf("%d moves in the library\n", b.w.CatalogSize())
	}
	if b.w.Mode().Session {
		b.printf("Session mode (%s)\n", b.w.Mode().ID)
	}
	b.printTranscript()
	b.prompt()
}

func (b *browser) printTranscript() {
	for _, line := range b.w.Transcript() {
		b.printf("%s: %s\n", line.Speaker, line.Text)
	}
}

// prompt shows the open question, or the results once every step is
// answered.
func (b *browser) prompt() {
	step, ok := b.w.Current()
	if !ok {
		b.list()
		return
	}
	for i, label := range step.Labels() {
		b.printf("  %d) %s\n", i+1, label)
	}
	b.printf("%d videos match so far\n", b.w.Count())
}

func (b *browser) list() {
	visible := b.w.Visible()
	if len(visible) == 0 {
		b.printf("No videos match your answers.\n")
		return
	}
	rows := make([][]string, 0, len(visible))
	for i, v := range visible {
		mark := ""
		if b.w.IsSaved(v) {
			mark = "*"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), v.Title, string(v.Duration), mark})
	}
	b.printf("%s\n", renderTable(
		[]string{"#", "Title", "Duration", "Saved"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
		b.colorize,
	))
	b.printf("Showing %d of %d\n", len(visible), b.w.Count())
	if b.w.HasMore() {
		b.printf("Type \"more\" for more results.\n")
	}
}

// handle runs one input line. It returns errQuit when the user is done.
func (b *browser) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	// Labels such as "Open area" would otherwise read as commands.
	if step, ok := b.w.Current(); ok {
		if _, isLabel := step.Option(line); isLabel {
			return b.answer(line)
		}
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		b.printf("%s\n", browseHelp)
	case "back":
		if !b.w.Back() {
			b.printf("Nothing to undo.\n")
			return nil
		}
		b.printTranscript()
		b.prompt()
	case "reset":
		b.w.Reset()
		b.printTranscript()
		b.prompt()
	case "list":
		b.list()
	case "more":
		b.w.More()
		b.list()
	case "open", "play":
		index, err := b.index(arg)
		if err != nil {
			return err
		}
		v, err := b.w.Open(ctx, index)
		if err != nil {
			return err
		}
		b.playing(v)
	case "next":
		v, err := b.w.Next(ctx)
		if err != nil {
			return err
		}
		b.playing(v)
	case "prev":
		v, err := b.w.Prev(ctx)
		if err != nil {
			return err
		}
		b.playing(v)
	case "close":
		b.w.ClosePlayer()
	case "save":
		index, err := b.index(arg)
		if err != nil {
			return err
		}
		saved, err := b.w.ToggleSaved(ctx, index)
		if err != nil {
			return err
		}
		if saved {
			b.printf("Saved.\n")
		} else {
			b.printf("Removed from saved.\n")
		}
	case "saved":
		b.printf("%s\n", renderSaved(b.w.SavedItems(), b.colorize))
	case "summary":
		b.printf("%s\n", renderSummary(b.w.Summary(ctx), b.colorize))
	case "end":
		next := b.w.EndSession(ctx)
		b.printf("Session finished. Continue at %s\n", b.w.URL(next))
		return errQuit
	default:
		return b.answer(line)
	}
	return nil
}

func (b *browser) answer(line string) error {
	step, ok := b.w.Current()
	if !ok {
		return fmt.Errorf("unknown command %q, type help", line)
	}
	label := line
	if n, err := strconv.Atoi(line); err == nil {
		labels := step.Labels()
		if n < 1 || n > len(labels) {
			return fmt.Errorf("choose 1-%d", len(labels))
		}
		label = labels[n-1]
	}
	if err := b.w.Answer(label); err != nil {
		if errors.Is(err, filter.ErrUnknownOption) {
			return fmt.Errorf("%q is not an option, type help", line)
		}
		return err
	}
	b.printf("you: %s\n", label)
	if next, ok := b.w.Current(); ok {
		b.printf("bot: %s\n", next.Prompt)
	} else {
		b.printf("bot: %s\n", filter.Finished)
	}
	b.prompt()
	return nil
}

// index parses a 1-based result number.
func (b *browser) index(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a result number, got %q", arg)
	}
	return n - 1, nil
}

func (b *browser) playing(v catalog.Video) {
	b.printf("Playing %s\n  %s\n", v.Title, v.MediaURL())
}
